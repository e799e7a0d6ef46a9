package db

import (
	"context"

	"seating-chart-go/models"
)

// Store persists the full table collection as a single unit.
type Store interface {
	Save(ctx context.Context, tables []models.Table) error
	Load(ctx context.Context) ([]models.Table, error)
}
