package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/greenwatch/greenwatch/internal/wol"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := wol.LoadConfigFromEnv()
	if err != nil {
		logger.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	waker := wol.NewWaker(cfg, logger)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", waker.Handler())
	r.Post("/wake", waker.Handler())

	logger.Info("Starting wake-on-LAN server", "addr", cfg.ListenAddr, "mac", cfg.MAC, "broadcast", cfg.Broadcast)
	if err := http.ListenAndServe(cfg.ListenAddr, r); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
