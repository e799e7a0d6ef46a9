package models

import "fmt"

// Seat is one slot of a table
type Seat struct {
	Occupant *string `json:"occupant"` // nil when the seat is empty
	Locked   bool    `json:"locked"`   // locked seats are skipped by randomization
}

// Table represents a named group of seats
type Table struct {
	ID    string `json:"id"`    // Stable handle used by the API
	Name  string `json:"name"`  // Display label, not required to be unique
	Seats []Seat `json:"seats"` // Ordered seats, index 0 is "Seat 1"
}

// RosterEntry is a student row read from an imported roster
type RosterEntry struct {
	ID   string `json:"id"`   // Student number (column A)
	Name string `json:"name"` // Student name (column B)
}

// SeatCount reports the number of seats of the table.
func (t Table) SeatCount() int {
	return len(t.Seats)
}

// Label is the heading shown above a table.
func (t Table) Label() string {
	return fmt.Sprintf("%s (Seats: %d)", t.Name, len(t.Seats))
}

// IsEmpty reports whether nobody sits on the seat.
func (s Seat) IsEmpty() bool {
	return s.Occupant == nil
}

// Name returns the occupant or "" for an empty seat.
func (s Seat) Name() string {
	if s.Occupant == nil {
		return ""
	}
	return *s.Occupant
}

// Clone returns a deep copy so callers can't reach into the chart through shared pointers.
func (t Table) Clone() Table {
	seats := make([]Seat, len(t.Seats))
	for i, s := range t.Seats {
		seats[i] = Seat{Locked: s.Locked}
		if s.Occupant != nil {
			name := *s.Occupant
			seats[i].Occupant = &name
		}
	}
	return Table{ID: t.ID, Name: t.Name, Seats: seats}
}

// CloneTables deep copies a whole table collection.
func CloneTables(tables []Table) []Table {
	out := make([]Table, len(tables))
	for i, t := range tables {
		out[i] = t.Clone()
	}
	return out
}
