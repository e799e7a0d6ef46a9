package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"seating-chart-go/config"
	"seating-chart-go/db"
	"seating-chart-go/handlers"
	"seating-chart-go/logger"
	"seating-chart-go/seating"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.LogLevel); err != nil {
		return err
	}

	ctx := context.Background()
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	randomizer := seating.NewRandomizer(nil)
	if cfg.Seed != 0 {
		randomizer = seating.NewSeededRandomizer(cfg.Seed)
	}

	// The handler owns the chart; nothing else touches it.
	apiHandler := handlers.NewAPIHandler(seating.NewChart(nil), randomizer, store)
	if err := apiHandler.Restore(ctx); err != nil {
		log.Warn().Err(err).Msg("Could not restore the saved setup, starting with an empty chart")
	}

	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())
	apiHandler.RegisterRoutes(router)

	addr := ":" + cfg.Port
	log.Info().Msgf("Starting server on port %s (store=%s)", addr, cfg.Store)
	if err := router.Run(addr); err != nil {
		return fmt.Errorf("failed to run server: %w", err)
	}
	return nil
}

func openStore(ctx context.Context, cfg config.Config) (db.Store, func(), error) {
	if cfg.Store == config.StoreRedis {
		client, err := db.InitializeRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return db.NewRedisService(client, cfg.RedisKey), func() { _ = client.Close() }, nil
	}
	return db.NewFileStore(cfg.SavePath), func() {}, nil
}
