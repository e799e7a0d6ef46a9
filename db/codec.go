package db

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"

	"seating-chart-go/models"
)

// ErrSaveNotFound is returned by Load when nothing has been saved yet.
var ErrSaveNotFound = errors.New("no saved setup found")

// Stored records keep "empty seat" explicit so nil and "" never collapse
// into each other through gob's zero-value elision.
type storedSeat struct {
	Occupant    string
	HasOccupant bool
	Locked      bool
}

type storedTable struct {
	ID    string
	Name  string
	Seats []storedSeat
}

type storedChart struct {
	Tables []storedTable
}

// EncodeTables serializes the table collection into a binary blob.
func EncodeTables(tables []models.Table) ([]byte, error) {
	chart := storedChart{Tables: make([]storedTable, len(tables))}
	for i, t := range tables {
		st := storedTable{ID: t.ID, Name: t.Name, Seats: make([]storedSeat, len(t.Seats))}
		for j, s := range t.Seats {
			st.Seats[j] = storedSeat{Locked: s.Locked}
			if s.Occupant != nil {
				st.Seats[j].Occupant = *s.Occupant
				st.Seats[j].HasOccupant = true
			}
		}
		chart.Tables[i] = st
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(chart); err != nil {
		return nil, fmt.Errorf("failed to encode seating chart: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeTables is the inverse of EncodeTables.
func DecodeTables(blob []byte) ([]models.Table, error) {
	var chart storedChart
	if err := gob.NewDecoder(bytes.NewReader(blob)).Decode(&chart); err != nil {
		return nil, fmt.Errorf("failed to decode seating chart: %w", err)
	}

	tables := make([]models.Table, len(chart.Tables))
	for i, st := range chart.Tables {
		t := models.Table{ID: st.ID, Name: st.Name, Seats: make([]models.Seat, len(st.Seats))}
		for j, ss := range st.Seats {
			t.Seats[j] = models.Seat{Locked: ss.Locked}
			if ss.HasOccupant {
				name := ss.Occupant
				t.Seats[j].Occupant = &name
			}
		}
		tables[i] = t
	}
	return tables, nil
}
