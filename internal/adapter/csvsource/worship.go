package csvsource

import (
	"errors"
	"io"

	"github.com/couchcryptid/vizdata-etl-service/internal/domain"
)

// WorshipResult holds the parsed places of worship and the rows dropped
// because their state abbreviation has no region table entry.
type WorshipResult struct {
	Records    []domain.WorshipRecord
	Unresolved []UnresolvedRow
}

// UnresolvedRow identifies a dropped worship row.
type UnresolvedRow struct {
	Line  int
	ID    string
	State string
}

// ReadWorship parses places-of-worship rows with columns ID, SUBTYPE, NAME,
// MEMBERS, X, Y, COUNTY and STATE. STATE is a postal abbreviation and is
// converted to the full state name used by the population data.
func ReadWorship(r io.Reader) (WorshipResult, error) {
	t, err := newTable(r, "ID", "SUBTYPE", "NAME", "MEMBERS", "X", "Y", "COUNTY", "STATE")
	if err != nil {
		return WorshipResult{}, err
	}

	var res WorshipResult
	for {
		row, err := t.next()
		if errors.Is(err, io.EOF) {
			return res, nil
		}
		if err != nil {
			return WorshipResult{}, err
		}

		state, err := domain.LookupRegionName(row.get("STATE"))
		if err != nil {
			res.Unresolved = append(res.Unresolved, UnresolvedRow{Line: row.line, ID: row.get("ID"), State: row.get("STATE")})
			continue
		}

		res.Records = append(res.Records, domain.WorshipRecord{
			ID:        row.get("ID"),
			Subtype:   row.get("SUBTYPE"),
			Name:      row.get("NAME"),
			Members:   row.number("MEMBERS"),
			Longitude: row.number("X"),
			Latitude:  row.number("Y"),
			County:    row.get("COUNTY"),
			State:     state,
		})
	}
}
