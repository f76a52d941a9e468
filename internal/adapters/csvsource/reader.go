// Package csvsource streams restaurant rows from a delimited file with the
// columns restaurant_id, name, borough, cuisine, building, street, zipcode,
// longitude, latitude, phone, website, price_range. Columns are matched by
// header name, so order does not matter and unknown columns are ignored.
package csvsource

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"tatler/internal/domain"
)

type Reader struct {
	r       *csv.Reader
	closer  io.Closer
	columns map[string]int
}

// Open opens path and reads its header row.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	rd, err := New(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	rd.closer = f
	return rd, nil
}

// New wraps an already-open stream whose first record is the header.
func New(src io.Reader) (*Reader, error) {
	cr := csv.NewReader(src)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv: empty source, no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	// Later records may have ragged widths; cell() tolerates short rows.
	cr.FieldsPerRecord = -1
	return &Reader{r: cr, columns: cols}, nil
}

// Next returns one row, io.EOF at the end, or the parse failure. Any
// non-EOF error should abort the whole import.
func (rd *Reader) Next() (domain.RowRecord, error) {
	rec, err := rd.r.Read()
	if err != nil {
		return domain.RowRecord{}, err
	}
	cell := func(name string) string {
		i, ok := rd.columns[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}
	return domain.RowRecord{
		RestaurantID: cell("restaurant_id"),
		Name:         cell("name"),
		Borough:      cell("borough"),
		Cuisine:      cell("cuisine"),
		Building:     cell("building"),
		Street:       cell("street"),
		Zipcode:      cell("zipcode"),
		Longitude:    cell("longitude"),
		Latitude:     cell("latitude"),
		Phone:        cell("phone"),
		Website:      cell("website"),
		PriceRange:   cell("price_range"),
	}, nil
}

func (rd *Reader) Close() error {
	if rd.closer != nil {
		return rd.closer.Close()
	}
	return nil
}
