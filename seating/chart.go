// Package seating holds the seating chart model and the seat randomizer.
//
// A Chart is not safe for concurrent use; the owner serializes calls.
package seating

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"seating-chart-go/models"
)

// MaxSeats caps the seats of a single table.
const MaxSeats = 1000

// Chart owns the ordered table collection of one classroom.
type Chart struct {
	tables []models.Table
}

// NewChart creates a chart from existing tables (nil for an empty room).
func NewChart(tables []models.Table) *Chart {
	return &Chart{tables: normalize(models.CloneTables(tables))}
}

// Tables returns a deep copy of the current tables.
func (c *Chart) Tables() []models.Table {
	return models.CloneTables(c.tables)
}

// Table returns a copy of a single table.
func (c *Chart) Table(id string) (models.Table, error) {
	i, err := c.indexOf(id)
	if err != nil {
		return models.Table{}, err
	}
	return c.tables[i].Clone(), nil
}

// Replace swaps the whole collection, used after a successful load.
func (c *Chart) Replace(tables []models.Table) {
	c.tables = normalize(models.CloneTables(tables))
}

// AddTable appends a table with seatCount unlocked, empty seats.
func (c *Chart) AddTable(name string, seatCount int) (models.Table, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Table{}, &ValidationError{Field: "table name", Reason: "cannot be empty"}
	}
	if seatCount < 0 {
		return models.Table{}, &ValidationError{Field: "seat count", Reason: fmt.Sprintf("must not be negative, got %d", seatCount)}
	}
	if seatCount > MaxSeats {
		return models.Table{}, &ValidationError{Field: "seat count", Reason: fmt.Sprintf("must be at most %d, got %d", MaxSeats, seatCount)}
	}

	table := models.Table{
		ID:    uuid.NewString(),
		Name:  name,
		Seats: make([]models.Seat, seatCount),
	}
	c.tables = append(c.tables, table)
	log.Debug().Str("table", table.ID).Msgf("Added table %q with %d seats", name, seatCount)
	return table.Clone(), nil
}

// AddTableRaw is AddTable for a seat count typed as text.
func (c *Chart) AddTableRaw(name, rawSeatCount string) (models.Table, error) {
	n, err := ParseSeatCount(rawSeatCount)
	if err != nil {
		return models.Table{}, err
	}
	return c.AddTable(name, n)
}

// ParseSeatCount converts user text into a seat count.
func ParseSeatCount(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, &ValidationError{Field: "seat count", Reason: fmt.Sprintf("%q is not a number", raw)}
	}
	return n, nil
}

// DeleteTable removes a table. Deleting an unknown table does nothing.
func (c *Chart) DeleteTable(id string) {
	before := len(c.tables)
	c.tables = lo.Reject(c.tables, func(t models.Table, _ int) bool {
		return t.ID == id
	})
	if len(c.tables) != before {
		log.Debug().Str("table", id).Msg("Deleted table")
	}
}

// RenameTable changes the display name. A blank name is treated as cancelled.
func (c *Chart) RenameTable(id, newName string) error {
	i, err := c.indexOf(id)
	if err != nil {
		return err
	}
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil
	}
	c.tables[i].Name = newName
	return nil
}

// AddSeat appends one unlocked, empty seat.
func (c *Chart) AddSeat(id string) error {
	i, err := c.indexOf(id)
	if err != nil {
		return err
	}
	if len(c.tables[i].Seats) >= MaxSeats {
		return &ValidationError{Field: "seat count", Reason: fmt.Sprintf("%s already has %d seats", c.tables[i].Name, MaxSeats)}
	}
	c.tables[i].Seats = append(c.tables[i].Seats, models.Seat{})
	return nil
}

// RemoveSeat drops the last seat of the table.
func (c *Chart) RemoveSeat(id string) error {
	i, err := c.indexOf(id)
	if err != nil {
		return err
	}
	seats := c.tables[i].Seats
	if len(seats) == 0 {
		return fmt.Errorf("%s: %w", c.tables[i].Name, ErrNoSeats)
	}
	c.tables[i].Seats = seats[:len(seats)-1]
	return nil
}

// SetSeatOccupant edits the name on an unlocked seat. A blank name empties the seat.
func (c *Chart) SetSeatOccupant(id string, index int, name string) error {
	seat, err := c.seat(id, index)
	if err != nil {
		return err
	}
	if seat.Locked {
		return fmt.Errorf("seat %d: %w", index+1, ErrSeatLocked)
	}
	seat.Occupant = occupant(name)
	return nil
}

// ToggleLock flips the lock of a seat and returns the new state.
//
// Locking stores staged as the occupant; a nil staged keeps the current
// occupant and a blank one leaves the seat locked-empty. Unlocking keeps
// the occupant so the seat becomes editable again.
func (c *Chart) ToggleLock(id string, index int, staged *string) (bool, error) {
	seat, err := c.seat(id, index)
	if err != nil {
		return false, err
	}
	if seat.Locked {
		seat.Locked = false
		return false, nil
	}
	if staged != nil {
		seat.Occupant = occupant(*staged)
	}
	seat.Locked = true
	return true, nil
}

func (c *Chart) seat(id string, index int) (*models.Seat, error) {
	i, err := c.indexOf(id)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(c.tables[i].Seats) {
		return nil, fmt.Errorf("%s seat %d: %w", c.tables[i].Name, index+1, ErrSeatIndex)
	}
	return &c.tables[i].Seats[index], nil
}

func (c *Chart) indexOf(id string) (int, error) {
	_, i, ok := lo.FindIndexOf(c.tables, func(t models.Table) bool {
		return t.ID == id
	})
	if !ok {
		return -1, fmt.Errorf("%q: %w", id, ErrTableNotFound)
	}
	return i, nil
}

func occupant(name string) *string {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	return &name
}

// normalize keeps JSON output stable: a chart or table with nothing in it is [] not null.
func normalize(tables []models.Table) []models.Table {
	if tables == nil {
		tables = []models.Table{}
	}
	for i := range tables {
		if tables[i].Seats == nil {
			tables[i].Seats = []models.Seat{}
		}
	}
	return tables
}
