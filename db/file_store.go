package db

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"seating-chart-go/models"
)

// DefaultSavePath is where the chart is written when nothing else is configured.
const DefaultSavePath = "seating_chart.bin"

const saveFileMode fs.FileMode = 0o644

// FileStore keeps the chart in one file on local disk
type FileStore struct {
	Path string
}

// NewFileStore creates a FileStore for path (DefaultSavePath when empty).
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultSavePath
	}
	return &FileStore{Path: path}
}

// Save overwrites the file with the encoded tables. The blob is written to a
// sibling temp file first so a failed write never truncates the last save.
func (s *FileStore) Save(_ context.Context, tables []models.Table) error {
	blob, err := EncodeTables(tables)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.Path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write seating chart: %w", err)
	}
	if err := tmp.Chmod(saveFileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set mode on %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write seating chart: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.Path, err)
	}
	log.Info().Msgf("Saved %d tables to %s", len(tables), s.Path)
	return nil
}

// Load reads the file back. A missing file yields ErrSaveNotFound.
func (s *FileStore) Load(_ context.Context) ([]models.Table, error) {
	blob, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", ErrSaveNotFound, err)
		}
		return nil, fmt.Errorf("failed to read %s: %w", s.Path, err)
	}
	tables, err := DecodeTables(blob)
	if err != nil {
		return nil, err
	}
	log.Info().Msgf("Loaded %d tables from %s", len(tables), s.Path)
	return tables, nil
}
