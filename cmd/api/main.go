package main

import (
	"log/slog"
	"os"

	"github.com/katemdaly/newspulse/backend/internal/auth"
	"github.com/katemdaly/newspulse/backend/internal/config"
	"github.com/katemdaly/newspulse/backend/internal/database"
	"github.com/katemdaly/newspulse/backend/internal/server"
)

func main() {
	cfg := config.Load()

	level := slog.LevelDebug
	if cfg.IsProduction() {
		level = slog.LevelInfo
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	db, err := database.New(cfg.DB)
	if err != nil {
		log.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected", "name", cfg.DB.Name)

	verifier := auth.NewGoogleVerifier(cfg.GoogleClientID)

	srv, err := server.New(cfg, db, verifier, log)
	if err != nil {
		log.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
