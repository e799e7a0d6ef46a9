package seating

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSeats is returned when removing a seat from a table that has none.
	ErrNoSeats = errors.New("table has no seats to remove")
	// ErrEmptyCandidates is returned when a randomization is requested without names.
	ErrEmptyCandidates = errors.New("no student names to place")
	// ErrTableNotFound is returned when a table handle does not match any table.
	ErrTableNotFound = errors.New("table not found")
	// ErrSeatIndex is returned for a seat index outside the table.
	ErrSeatIndex = errors.New("seat index out of range")
	// ErrSeatLocked is returned when editing the occupant of a locked seat.
	ErrSeatLocked = errors.New("seat is locked")
)

// ValidationError reports bad user input for a single field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err carries a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
