// Package csvsource parses the visualization input CSVs into fixed-shape
// domain records. Columns are located by header name; a missing required
// column or a ragged row rejects the whole file with domain.ErrMalformedRecord.
package csvsource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/couchcryptid/vizdata-etl-service/internal/domain"
)

// table iterates the rows of a headed CSV file.
type table struct {
	r       *csv.Reader
	columns map[string]int
}

func newTable(r io.Reader, required ...string) (*table, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty file, no header: %w", domain.ErrMalformedRecord)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w: %v", domain.ErrMalformedRecord, err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		columns[strings.TrimSpace(name)] = i
	}
	for _, name := range required {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("missing column %q: %w", name, domain.ErrMalformedRecord)
		}
	}
	return &table{r: cr, columns: columns}, nil
}

// next returns the next row, or io.EOF when the file is exhausted.
func (t *table) next() (row, error) {
	rec, err := t.r.Read()
	if errors.Is(err, io.EOF) {
		return row{}, io.EOF
	}
	if err != nil {
		return row{}, fmt.Errorf("%w: %v", domain.ErrMalformedRecord, err)
	}
	line, _ := t.r.FieldPos(0)
	return row{t: t, values: rec, line: line}, nil
}

type row struct {
	t      *table
	values []string
	line   int
}

func (r row) get(column string) string {
	i, ok := r.t.columns[column]
	if !ok || i >= len(r.values) {
		return ""
	}
	return strings.TrimSpace(r.values[i])
}

func (r row) number(column string) float64 {
	return domain.CoerceNumericOrDefault(r.get(column), 0)
}

func (r row) malformed(format string, args ...any) error {
	return fmt.Errorf("line %d: %s: %w", r.line, fmt.Sprintf(format, args...), domain.ErrMalformedRecord)
}

// splitList splits a comma-joined cell, trimming entries and dropping empties.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
