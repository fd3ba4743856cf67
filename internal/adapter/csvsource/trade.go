package csvsource

import (
	"errors"
	"io"

	"github.com/couchcryptid/vizdata-etl-service/internal/domain"
)

// ReadTrade parses the US textile fiber trade CSV.
func ReadTrade(r io.Reader) ([]domain.TradeRecord, error) {
	t, err := newTable(r, "fiber_type", "import_export", "category", "sub_category", "year", "month", "value")
	if err != nil {
		return nil, err
	}

	var records []domain.TradeRecord
	for {
		row, err := t.next()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, err
		}

		records = append(records, domain.TradeRecord{
			FiberType:    row.get("fiber_type"),
			ImportExport: row.get("import_export"),
			Category:     row.get("category"),
			SubCategory:  row.get("sub_category"),
			Year:         int(row.number("year")),
			Month:        int(row.number("month")),
			Value:        row.number("value"),
		})
	}
}
