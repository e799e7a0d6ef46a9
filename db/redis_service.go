package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"

	"seating-chart-go/models"
)

const (
	// DefaultChartKey holds the encoded chart blob
	DefaultChartKey = "seating:chart"
	chartMetaSuffix = ":meta" // Hash: tables, seats, savedAt of the last save
)

// RedisService persists the seating chart in Redis
type RedisService struct {
	Client *redis.Client
	Key    string
}

// NewRedisService creates a RedisService storing the chart under key.
func NewRedisService(client *redis.Client, key string) *RedisService {
	if key == "" {
		key = DefaultChartKey
	}
	return &RedisService{
		Client: client,
		Key:    key,
	}
}

func (s *RedisService) metaKey() string {
	return s.Key + chartMetaSuffix
}

// Save overwrites the stored chart and its summary hash in one transaction.
func (s *RedisService) Save(ctx context.Context, tables []models.Table) error {
	blob, err := EncodeTables(tables)
	if err != nil {
		return err
	}

	seats := 0
	for _, t := range tables {
		seats += t.SeatCount()
	}

	pipe := s.Client.TxPipeline()
	pipe.Set(ctx, s.Key, blob, 0)
	pipe.HSet(ctx, s.metaKey(), map[string]interface{}{
		"tables":  len(tables),
		"seats":   seats,
		"savedAt": time.Now().UTC().Format(time.RFC3339),
	})

	if _, err := pipe.Exec(ctx); err != nil {
		log.Error().Err(err).Msgf("Error saving seating chart to %s", s.Key)
		return fmt.Errorf("failed to save seating chart to Redis: %w", err)
	}
	log.Info().Msgf("Saved %d tables to Redis key %s", len(tables), s.Key)
	return nil
}

// Load fetches the stored chart. A missing key yields ErrSaveNotFound.
func (s *RedisService) Load(ctx context.Context) ([]models.Table, error) {
	blob, err := s.Client.Get(ctx, s.Key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%s: %w", s.Key, ErrSaveNotFound)
		}
		log.Error().Err(err).Msgf("Error loading seating chart from %s", s.Key)
		return nil, fmt.Errorf("failed to load seating chart from Redis: %w", err)
	}
	tables, err := DecodeTables(blob)
	if err != nil {
		return nil, err
	}
	log.Info().Msgf("Loaded %d tables from Redis key %s", len(tables), s.Key)
	return tables, nil
}

// SavedAt reports when the chart was last saved, zero time if never.
func (s *RedisService) SavedAt(ctx context.Context) (time.Time, error) {
	raw, err := s.Client.HGet(ctx, s.metaKey(), "savedAt").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("failed to read save metadata: %w", err)
	}
	return time.Parse(time.RFC3339, raw)
}

// InitializeRedisClient creates and tests a Redis client connection
func InitializeRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Ping Redis to check connection
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("could not connect to Redis at %s: %w", addr, err)
	}

	log.Info().Msgf("Successfully connected to Redis %s DB %d", addr, db)
	return rdb, nil
}
