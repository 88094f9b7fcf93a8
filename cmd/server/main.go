package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/mpaterson/trackml/config"
	"github.com/mpaterson/trackml/internal/app"
	"github.com/mpaterson/trackml/internal/server"
)

func main() {
	configPath := flag.String("config", "./config/config.yaml", "Config file path")
	port := flag.String("port", "", "Server port (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.Level(cfg.LogLevel)}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(cfg.Download.Dir, 0755); err != nil {
		slog.Error("Failed to create download directory", "dir", cfg.Download.Dir, "error", err)
		os.Exit(1)
	}

	processor, err := app.BuildProcessor(context.Background(), cfg)
	if err != nil {
		slog.Error("Failed to build processor", "error", err)
		os.Exit(1)
	}

	srv := server.New(cfg, processor)

	listenPort := cfg.Server.Port
	if *port != "" {
		listenPort = *port
	}

	slog.Info("Starting track feature prediction server", "port", listenPort)
	if err := srv.Start(listenPort); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
