package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrRangeNotSatisfiable reports that the requested page lies beyond the available rows.
	// It is a recoverable condition, not a failure.
	ErrRangeNotSatisfiable = errors.New("catalog: requested range not satisfiable")

	// ErrNotFound is returned when a record, or any record for a random pick, does not exist.
	ErrNotFound = errors.New("catalog: not found")
)

// UnknownTotal marks a RangeError that carries no authoritative total count.
const UnknownTotal = -1

// RangeError is the typed form of ErrRangeNotSatisfiable.
type RangeError struct {
	Page       int
	TotalCount int
}

// NewRangeError builds a RangeError. Pass UnknownTotal if the backend did not report a count.
func NewRangeError(page, total int) *RangeError {
	return &RangeError{Page: page, TotalCount: total}
}

func (e *RangeError) Error() string {
	if e.TotalCount == UnknownTotal {
		return fmt.Sprintf("%s: page %d", ErrRangeNotSatisfiable.Error(), e.Page)
	}
	return fmt.Sprintf("%s: page %d of %d records", ErrRangeNotSatisfiable.Error(), e.Page, e.TotalCount)
}

// Is makes errors.Is(err, ErrRangeNotSatisfiable) match.
func (e *RangeError) Is(target error) bool {
	return target == ErrRangeNotSatisfiable
}

// RangeTotal reports whether err is range-exhausted and, if the backend supplied one,
// the authoritative total count.
func RangeTotal(err error) (total int, known bool, ok bool) {
	if !errors.Is(err, ErrRangeNotSatisfiable) {
		return 0, false, false
	}
	var re *RangeError
	if errors.As(err, &re) && re.TotalCount >= 0 {
		return re.TotalCount, true, true
	}
	return 0, false, true
}
