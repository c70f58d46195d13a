package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/patter-chat/patter/internal/auth"
	"github.com/patter-chat/patter/internal/chat"
	"github.com/patter-chat/patter/internal/config"
	"github.com/patter-chat/patter/internal/handlers"
	"github.com/patter-chat/patter/internal/messaging"
	"github.com/patter-chat/patter/internal/store"
)

func main() {
	cfg := config.Load()

	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("database open failed")
	}

	users := store.NewSQLiteUserStore(db)
	groups := store.NewSQLiteGroupStore(db)
	messages := store.NewSQLiteMessageStore(db)

	authSvc := auth.NewService(users, cfg.JWTSecret, cfg.TokenTTL)
	svc := messaging.NewService(users, groups, messages)
	hub := chat.NewHub(logger, svc, users, groups)

	app := fiber.New(fiber.Config{DisableStartupMessage: !cfg.IsDevelopment()})
	handlers.New(logger, authSvc, svc, users, hub).Mount(app)

	go func() {
		logger.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")
	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
	}
	logger.Info().Msg("server stopped")
}
