package domain

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCountyFeature(t *testing.T) {
	f := NewCountyFeature("06037", "Los Angeles")
	assert.Equal(t, "06037", f.ID)
	assert.Equal(t, "Los Angeles", f.Name)
	assert.Equal(t, "LOS ANGELES", f.CountyName)
}

func TestAggregateWorship(t *testing.T) {
	records := []WorshipRecord{
		{County: "WASHINGTON", State: "Oregon", Members: 100},
		{County: "WASHINGTON", State: "Utah", Members: 40},
		{County: "WASHINGTON", State: "Oregon", Members: 25},
		{County: "BENTON", State: "Oregon", Members: math.NaN()},
		{County: "BENTON", State: "Oregon", Members: 10},
		{County: "LINN", State: "Oregon", Members: math.Inf(1)},
	}

	totals := AggregateWorship(records)

	want := WorshipTotals{
		{State: "Oregon", County: "WASHINGTON"}: 125,
		{State: "Utah", County: "WASHINGTON"}:   40,
		{State: "Oregon", County: "BENTON"}:     10,
		{State: "Oregon", County: "LINN"}:       0,
	}
	if diff := cmp.Diff(want, totals); diff != "" {
		t.Errorf("AggregateWorship mismatch (-want +got):\n%s", diff)
	}

	t.Run("order independent", func(t *testing.T) {
		rng := rand.New(rand.NewPCG(1, 2))
		for range 20 {
			shuffled := append([]WorshipRecord(nil), records...)
			rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
			assert.Equal(t, totals, AggregateWorship(shuffled))
		}
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, AggregateWorship(nil))
	})
}

func TestJoinCounties(t *testing.T) {
	features := []CountyFeature{
		NewCountyFeature("06037", "Los Angeles"),
		NewCountyFeature("41067", "Washington"),
		NewCountyFeature("49053", "Washington"),
		NewCountyFeature("72001", "Adjuntas"),
	}
	population := []PopulationRecord{
		{CountyID: "06037", Pop: 10000000, State: "California"},
		{CountyID: "41067", Pop: 600000, State: "Oregon"},
		{CountyID: "49053", Pop: 0, State: "Utah"},
		{CountyID: "06000", Pop: 39512223, State: "California"},
	}
	totals := WorshipTotals{
		{State: "California", County: "LOS ANGELES"}: 500,
		{State: "Oregon", County: "WASHINGTON"}:      1200,
		{State: "Utah", County: "WASHINGTON"}:        300,
		{State: "Texas", County: "ADJUNTAS"}:         7,
	}

	got := JoinCounties(features, population, totals)

	want := []CountyMetric{
		{CountyID: "06037", Name: "Los Angeles", CountyName: "LOS ANGELES", State: "California", Pop: 10000000, Value: 500, PerCapita: 0.00005, HasGeometry: true, HasPopulation: true},
		{CountyID: "41067", Name: "Washington", CountyName: "WASHINGTON", State: "Oregon", Pop: 600000, Value: 1200, PerCapita: 0.002, HasGeometry: true, HasPopulation: true},
		{CountyID: "49053", Name: "Washington", CountyName: "WASHINGTON", State: "Utah", Pop: 0, Value: 300, PerCapita: 0, HasGeometry: true, HasPopulation: true},
		{CountyID: "72001", Name: "Adjuntas", CountyName: "ADJUNTAS", HasGeometry: true},
		{CountyID: "06000", State: "California", Pop: 39512223, HasPopulation: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("JoinCounties mismatch (-want +got):\n%s", diff)
	}
}

func TestJoinCounties_PerCapitaExample(t *testing.T) {
	got := JoinCounties(
		[]CountyFeature{NewCountyFeature("06037", "Los Angeles")},
		[]PopulationRecord{{CountyID: "06037", Pop: 10000000, State: "California"}},
		WorshipTotals{{State: "California", County: "LOS ANGELES"}: 500},
	)

	require.Len(t, got, 1)
	assert.Equal(t, 500.0, got[0].Value)
	assert.InDelta(t, 0.00005, got[0].PerCapita, 1e-15)
}

func TestJoinCounties_RequiresStateAndCountyMatch(t *testing.T) {
	features := []CountyFeature{NewCountyFeature("41067", "Washington")}
	population := []PopulationRecord{{CountyID: "41067", Pop: 1000, State: "Oregon"}}

	t.Run("county only", func(t *testing.T) {
		got := JoinCounties(features, population, WorshipTotals{{State: "Utah", County: "WASHINGTON"}: 50})
		assert.Zero(t, got[0].Value)
		assert.Zero(t, got[0].PerCapita)
	})

	t.Run("case differs", func(t *testing.T) {
		got := JoinCounties(features, population, WorshipTotals{{State: "Oregon", County: "Washington"}: 50})
		assert.Zero(t, got[0].Value)
	})

	t.Run("both match", func(t *testing.T) {
		got := JoinCounties(features, population, WorshipTotals{{State: "Oregon", County: "WASHINGTON"}: 50})
		assert.Equal(t, 50.0, got[0].Value)
		assert.Equal(t, 0.05, got[0].PerCapita)
	})

	t.Run("empty keys never match", func(t *testing.T) {
		got := JoinCounties(nil, []PopulationRecord{{CountyID: "99999", Pop: 10}}, WorshipTotals{{}: 5})
		assert.Zero(t, got[0].Value)
	})
}

func TestJoinCounties_OverlayPrecedence(t *testing.T) {
	features := []CountyFeature{
		NewCountyFeature("01001", "Autauga"),
		NewCountyFeature("01003", "Baldwin"),
		NewCountyFeature("01001", "Autauga Revised"),
	}
	population := []PopulationRecord{
		{CountyID: "01003", Pop: 100, State: "Alabama"},
		{CountyID: "01003", Pop: 200, State: "Alabama"},
	}

	got := JoinCounties(features, population, nil)

	require.Len(t, got, 2)
	assert.Equal(t, "01001", got[0].CountyID)
	assert.Equal(t, "AUTAUGA REVISED", got[0].CountyName)
	assert.False(t, got[0].HasPopulation)
	assert.Equal(t, "01003", got[1].CountyID)
	assert.Equal(t, 200.0, got[1].Pop)
	assert.True(t, got[1].HasGeometry)
	assert.True(t, got[1].HasPopulation)
}

func TestJoinCounties_UniqueIDsAndUnionSize(t *testing.T) {
	features := []CountyFeature{NewCountyFeature("a", "A"), NewCountyFeature("b", "B"), NewCountyFeature("c", "C")}
	population := []PopulationRecord{{CountyID: "b"}, {CountyID: "c"}, {CountyID: "d"}, {CountyID: "e"}}

	got := JoinCounties(features, population, nil)

	ids := make(map[string]bool)
	for _, m := range got {
		assert.False(t, ids[m.CountyID], "duplicate id %s", m.CountyID)
		ids[m.CountyID] = true
	}
	assert.Len(t, got, 5)
}

func TestPerCapita(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		pop      float64
		expected float64
	}{
		{"normal", 50, 1000, 0.05},
		{"zero population", 50, 0, 0},
		{"zero over zero", 0, 0, 0},
		{"no members", 0, 1000, 0},
		{"nan population", 10, math.NaN(), 0},
		{"infinite population", 10, math.Inf(1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PerCapita(tt.value, tt.pop)
			assert.False(t, math.IsNaN(got) || math.IsInf(got, 0))
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestBuildChoropleth(t *testing.T) {
	features := []CountyFeature{
		NewCountyFeature("41067", "Washington"),
		NewCountyFeature("41003", "Benton"),
		NewCountyFeature("41043", "Linn"),
	}
	population := []PopulationRecord{
		{CountyID: "41067", Pop: 1000, State: "Oregon"},
		{CountyID: "41003", Pop: 100, State: "Oregon"},
	}
	worship := []WorshipRecord{
		{County: "WASHINGTON", State: "Oregon", Members: 20},
		{County: "WASHINGTON", State: "Oregon", Members: 30},
		{County: "BENTON", State: "Oregon", Members: 25},
		{County: "LINN", State: "Oregon", Members: 99},
	}

	c := BuildChoropleth(features, population, worship)

	require.Len(t, c.Counties, 3)
	assert.Equal(t, 0.05, c.Counties[0].PerCapita)
	assert.Equal(t, 0.25, c.Counties[1].PerCapita)
	assert.Zero(t, c.Counties[2].PerCapita, "no population row for Linn")
	assert.Zero(t, c.MinPerCapita)
	assert.Equal(t, 0.25, c.MaxPerCapita)

	t.Run("empty", func(t *testing.T) {
		c := BuildChoropleth(nil, nil, nil)
		assert.Empty(t, c.Counties)
		assert.Zero(t, c.MinPerCapita)
		assert.Zero(t, c.MaxPerCapita)
	})
}
