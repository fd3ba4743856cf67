package csvsource

import (
	"errors"
	"io"

	"github.com/couchcryptid/vizdata-etl-service/internal/domain"
)

// ReadPopulation parses census estimate rows with columns STATE, COUNTY,
// POPESTIMATE2019 and STNAME. The county id is the state code followed by
// the county code, matching the topology feature ids.
func ReadPopulation(r io.Reader) ([]domain.PopulationRecord, error) {
	t, err := newTable(r, "STATE", "COUNTY", "POPESTIMATE2019", "STNAME")
	if err != nil {
		return nil, err
	}

	var records []domain.PopulationRecord
	for {
		row, err := t.next()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, err
		}

		state, county := row.get("STATE"), row.get("COUNTY")
		if state == "" || county == "" {
			return nil, row.malformed("empty state or county code")
		}

		records = append(records, domain.PopulationRecord{
			CountyID: state + county,
			Pop:      row.number("POPESTIMATE2019"),
			State:    row.get("STNAME"),
		})
	}
}
