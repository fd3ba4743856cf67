package domain

import "strings"

// CountyFeature is a county polygon from the topology, reduced to its keys.
type CountyFeature struct {
	ID         string
	Name       string
	CountyName string // Name, uppercased for matching worship records
}

// NewCountyFeature builds a feature with its uppercased match name.
func NewCountyFeature(id, name string) CountyFeature {
	return CountyFeature{ID: id, Name: name, CountyName: strings.ToUpper(name)}
}

// PopulationRecord is one row of the census county population estimates.
type PopulationRecord struct {
	CountyID string // state code + county code
	Pop      float64
	State    string // full state name
}

// WorshipRecord is one place of worship.
type WorshipRecord struct {
	ID        string
	Subtype   string
	Name      string
	Members   float64
	Longitude float64
	Latitude  float64
	County    string
	State     string // full state name
}

// WorshipKey groups worship records by exact state and county.
type WorshipKey struct {
	State  string
	County string
}

// WorshipTotals maps (state, county) to summed membership.
type WorshipTotals map[WorshipKey]float64

// CountyMetric is the merged per-county record shaded by the choropleth.
type CountyMetric struct {
	CountyID      string  `json:"county_id" yaml:"county_id"`
	Name          string  `json:"name,omitempty" yaml:"name,omitempty"`
	CountyName    string  `json:"county_name,omitempty" yaml:"county_name,omitempty"`
	State         string  `json:"state,omitempty" yaml:"state,omitempty"`
	Pop           float64 `json:"pop" yaml:"pop"`
	Value         float64 `json:"value" yaml:"value"`
	PerCapita     float64 `json:"per_capita" yaml:"per_capita"`
	HasGeometry   bool    `json:"has_geometry" yaml:"has_geometry"`
	HasPopulation bool    `json:"has_population" yaml:"has_population"`
}

// Choropleth is the per-county dataset plus the color scale domain.
type Choropleth struct {
	Counties     []CountyMetric `json:"counties" yaml:"counties"`
	MinPerCapita float64        `json:"min_per_capita" yaml:"min_per_capita"`
	MaxPerCapita float64        `json:"max_per_capita" yaml:"max_per_capita"`
}

// AggregateWorship sums members per exact (state, county). Non-finite member
// counts contribute 0. The result does not depend on input order.
func AggregateWorship(records []WorshipRecord) WorshipTotals {
	totals := make(WorshipTotals)
	for _, r := range records {
		totals[WorshipKey{State: r.State, County: r.County}] += finiteOrZero(r.Members)
	}
	return totals
}

// JoinCounties merges features and population by county id and attaches
// worship totals.
//
// Features seed the key set; population rows overlay it field by field, later
// rows winning. Output follows first-insertion order of each key: features
// first, then ids only known to the population data. A county receives a
// worship total only when both its uppercased name and its state match a
// group exactly.
func JoinCounties(features []CountyFeature, population []PopulationRecord, totals WorshipTotals) []CountyMetric {
	var order []string
	merged := make(map[string]*CountyMetric, len(features)+len(population))

	slot := func(id string) *CountyMetric {
		m, ok := merged[id]
		if !ok {
			m = &CountyMetric{CountyID: id}
			merged[id] = m
			order = append(order, id)
		}
		return m
	}

	for _, f := range features {
		m := slot(f.ID)
		// A repeated feature id replaces the earlier feature.
		m.Name = f.Name
		m.CountyName = f.CountyName
		m.HasGeometry = true
	}
	for _, p := range population {
		m := slot(p.CountyID)
		m.Pop = finiteOrZero(p.Pop)
		m.State = p.State
		m.HasPopulation = true
	}

	out := make([]CountyMetric, 0, len(order))
	for _, id := range order {
		m := *merged[id]
		if m.CountyName != "" && m.State != "" {
			m.Value = totals[WorshipKey{State: m.State, County: m.CountyName}]
		}
		m.PerCapita = PerCapita(m.Value, m.Pop)
		out = append(out, m)
	}
	return out
}

// PerCapita returns value/pop, or 0 when the ratio is not finite.
func PerCapita(value, pop float64) float64 {
	return finiteOrZero(value / pop)
}

// BuildChoropleth aggregates worship records, joins them onto the counties and
// computes the per-capita domain.
func BuildChoropleth(features []CountyFeature, population []PopulationRecord, worship []WorshipRecord) Choropleth {
	counties := JoinCounties(features, population, AggregateWorship(worship))
	c := Choropleth{Counties: counties}
	for i, m := range counties {
		if i == 0 {
			c.MinPerCapita, c.MaxPerCapita = m.PerCapita, m.PerCapita
			continue
		}
		c.MinPerCapita = min(c.MinPerCapita, m.PerCapita)
		c.MaxPerCapita = max(c.MaxPerCapita, m.PerCapita)
	}
	return c
}
