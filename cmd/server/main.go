package main

import (
	"context"

	"github.com/commune-app/backend/internal/router"
	"github.com/commune-app/backend/pkg/config"
	"github.com/commune-app/backend/pkg/fcm"
	"github.com/commune-app/backend/pkg/logger"
	"github.com/commune-app/backend/validators"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()
	log := logger.New(cfg.Env)

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize databases")
	}
	defer func() {
		if err := db.CloseDB(); err != nil {
			log.Error().Err(err).Msg("error closing database connections")
		}
	}()

	// Push delivery is optional; the dispatcher treats a nil client as
	// push disabled.
	push, err := fcm.NewClient(context.Background(), cfg.FCMCredentialsPath)
	if err != nil {
		log.Warn().Err(err).Msg("push notifications disabled")
		push = nil
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	if err := router.SetupRoutes(e, cfg, db.Postgres, db.Mongo, push, log); err != nil {
		log.Fatal().Err(err).Msg("failed to set up routes")
	}

	log.Info().Str("port", cfg.Port).Msg("starting server")
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
