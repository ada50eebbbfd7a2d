package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/afroash/plant-monitor/internal/config"
	"github.com/afroash/plant-monitor/internal/fetcher"
	"github.com/afroash/plant-monitor/internal/mock"
	"github.com/afroash/plant-monitor/internal/monitor"
	"github.com/afroash/plant-monitor/internal/server"
)

const version = "v0.1.0"

func main() {
	configPath := flag.String("config", "configs/dashboard.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := newLogger(cfg.Logging)
	logger.Info().
		Str("version", version).
		Str("mode", cfg.Source.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Plant Monitor Dashboard")

	registry := prometheus.NewRegistry()
	metrics := monitor.NewMetrics(registry)

	generator := mock.NewGenerator(cfg.Mock)
	esp32 := fetcher.NewESP32Fetcher(cfg.Backend, logger)
	mon := monitor.New(cfg, esp32, generator, metrics, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mon.Start(ctx)

	apiHandler := server.NewAPIHandler(mon, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/current", apiHandler.HandleCurrent)
	mux.HandleFunc("/api/history", apiHandler.HandleHistory)
	mux.HandleFunc("/api/status", apiHandler.HandleStatus)
	mux.HandleFunc("/api/dashboard-data", apiHandler.HandleDashboardData)
	mux.HandleFunc("/api/refresh", apiHandler.HandleRefresh)
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok","version":"%s"}`, version)
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", httpServer.Addr).Msg("Server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("Shutting down...")

	mon.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown error")
	}

	logger.Info().Msg("Server stopped")
}

func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout})
	} else {
		logger = zerolog.New(os.Stdout)
	}
	return logger.Level(level).With().Timestamp().Logger()
}
