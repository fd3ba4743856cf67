// Package topojson reads the keys of a US Atlas topology: the county and
// state geometries' ids and names. Arcs and transforms are left to the
// renderer, which draws from the same file.
package topojson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/couchcryptid/vizdata-etl-service/internal/domain"
)

const (
	countiesObject = "counties"
	statesObject   = "states"

	// FIPS code widths used to zero-pad numeric ids.
	countyIDWidth = 5
	stateIDWidth  = 2
)

// Topology is the subset of a TopoJSON document this service reads.
type Topology struct {
	Type    string                        `json:"type"`
	Objects map[string]GeometryCollection `json:"objects"`
}

// GeometryCollection is a named object of the topology.
type GeometryCollection struct {
	Type       string     `json:"type"`
	Geometries []Geometry `json:"geometries"`
}

// Geometry is a single polygon feature, without its arcs.
type Geometry struct {
	Type       string          `json:"type"`
	ID         json.RawMessage `json:"id"`
	Properties struct {
		Name string `json:"name"`
	} `json:"properties"`
}

// Feature is a decoded geometry key.
type Feature struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Decode reads a topology and checks that it carries counties and states.
func Decode(r io.Reader) (*Topology, error) {
	var t Topology
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("decode topology: %w: %v", domain.ErrMalformedRecord, err)
	}
	if t.Type != "Topology" {
		return nil, fmt.Errorf("topology type %q: %w", t.Type, domain.ErrMalformedRecord)
	}
	for _, name := range []string{countiesObject, statesObject} {
		if _, ok := t.Objects[name]; !ok {
			return nil, fmt.Errorf("topology has no %q object: %w", name, domain.ErrMalformedRecord)
		}
	}
	return &t, nil
}

// Counties returns one feature per county geometry, in file order.
func (t *Topology) Counties() ([]domain.CountyFeature, error) {
	features, err := t.features(countiesObject, countyIDWidth)
	if err != nil {
		return nil, err
	}
	out := make([]domain.CountyFeature, len(features))
	for i, f := range features {
		out[i] = domain.NewCountyFeature(f.ID, f.Name)
	}
	return out, nil
}

// States returns one feature per state geometry, in file order.
func (t *Topology) States() ([]Feature, error) {
	return t.features(statesObject, stateIDWidth)
}

func (t *Topology) features(object string, width int) ([]Feature, error) {
	geoms := t.Objects[object].Geometries
	out := make([]Feature, 0, len(geoms))
	for i, g := range geoms {
		id, err := parseID(g.ID, width)
		if err != nil {
			return nil, fmt.Errorf("%s geometry %d: %w", object, i, err)
		}
		out = append(out, Feature{ID: id, Name: g.Properties.Name})
	}
	return out, nil
}

// parseID accepts a string id as-is and zero-pads an integer id to width.
func parseID(raw json.RawMessage, width int) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", fmt.Errorf("missing id: %w", domain.ErrMalformedRecord)
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("id %s: %w: %v", raw, domain.ErrMalformedRecord, err)
		}
		if s == "" {
			return "", fmt.Errorf("empty id: %w", domain.ErrMalformedRecord)
		}
		return s, nil
	}

	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil || n < 0 {
		return "", fmt.Errorf("id %s is not a FIPS code: %w", raw, domain.ErrMalformedRecord)
	}
	return fmt.Sprintf("%0*d", width, n), nil
}
