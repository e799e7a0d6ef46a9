package db

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"seating-chart-go/models"
)

const chartSheet = "Seating"

// ReadRosterFromExcel reads students from the first sheet of an Excel stream.
// Row 1 is a header; column A is the student number and column B the name.
func ReadRosterFromExcel(file io.Reader) ([]models.RosterEntry, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		log.Error().Err(err).Msg("Error opening Excel reader")
		return nil, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing excel file")
		}
	}()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, errors.New("excel file does not contain any sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows from sheet %s: %w", sheetName, err)
	}

	roster := []models.RosterEntry{}
	for i, row := range rows {
		if i == 0 {
			continue // header
		}

		var entry models.RosterEntry
		if len(row) > 0 {
			entry.ID = strings.TrimSpace(row[0])
		}
		if len(row) > 1 {
			entry.Name = strings.TrimSpace(row[1])
		}
		if entry.Name == "" {
			log.Warn().Msgf("Skipping row %d due to missing name (ID: '%s')", i+1, entry.ID)
			continue
		}
		roster = append(roster, entry)
	}

	log.Info().Msgf("Read %d students from sheet %s", len(roster), sheetName)
	return roster, nil
}

// RosterNames returns the names of a roster in file order.
func RosterNames(roster []models.RosterEntry) []string {
	names := make([]string, len(roster))
	for i, r := range roster {
		names[i] = r.Name
	}
	return names
}

// WriteChartToExcel writes one row per seat: table, seat number, occupant, locked.
func WriteChartToExcel(w io.Writer, tables []models.Table) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing excel file")
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), chartSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(chartSheet, "A1", &[]interface{}{"Table", "Seat", "Student", "Locked"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	row := 2
	for _, t := range tables {
		for i, s := range t.Seats {
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return err
			}
			values := []interface{}{t.Name, fmt.Sprintf("Seat %d", i+1), s.Name(), s.Locked}
			if err := f.SetSheetRow(chartSheet, cell, &values); err != nil {
				return fmt.Errorf("failed to write row %d: %w", row, err)
			}
			row++
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write excel file: %w", err)
	}
	return nil
}
