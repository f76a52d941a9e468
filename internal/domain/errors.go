package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound    = errors.New("restaurant not found")
	ErrDuplicateID = errors.New("restaurant_id already exists")
)

// ValidationError reports required fields that were missing or empty.
// Row is the zero-based source row index when the record came from a
// tabular import, -1 otherwise.
type ValidationError struct {
	Row    int
	Fields []string
}

func (e *ValidationError) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("row %d: missing required fields: %s", e.Row, strings.Join(e.Fields, ", "))
	}
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// RangeError reports a numeric value outside its allowed interval.
type RangeError struct {
	Field    string
	Min, Max int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s must be between %d and %d", e.Field, e.Min, e.Max)
}
