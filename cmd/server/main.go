package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/splitr-app/splitr/internal/api"
	"github.com/splitr-app/splitr/internal/auth"
	"github.com/splitr-app/splitr/internal/config"
	"github.com/splitr-app/splitr/internal/storage/sqlite"
	"github.com/splitr-app/splitr/pkg/logging"
)

func main() {
	// A missing .env is fine, the environment wins anyway.
	_ = godotenv.Load()

	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	server := api.NewServer(store, jwtManager, cfg.StoreTimeout)

	// h2c allows HTTP/2 without TLS for clients behind a terminating proxy.
	handler := h2c.NewHandler(server.Handler(), &http2.Server{})

	addr := ":" + cfg.Port
	slog.Info("Server starting", "address", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
