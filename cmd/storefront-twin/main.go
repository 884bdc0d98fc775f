// Storefront Twin - in-memory stand-in for the storefront backend, used for
// local development, demos and end-to-end tests of the client.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storefront-client/internal/twin"
)

// Config is read from STOREFRONT_TWIN_* variables.
type Config struct {
	Port           string        `envconfig:"PORT" default:"8081"`
	SeedFile       string        `envconfig:"SEED_FILE"`
	Latency        time.Duration `envconfig:"LATENCY" default:"0s"`
	AllowedOrigins []string      `envconfig:"ALLOWED_ORIGINS"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
	Environment    string        `envconfig:"ENVIRONMENT" default:"development"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("STOREFRONT_TWIN", &cfg); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := initLogger(cfg)

	store := twin.NewStore()
	if cfg.SeedFile != "" {
		data, err := os.ReadFile(cfg.SeedFile)
		if err != nil {
			return fmt.Errorf("reading seed file: %w", err)
		}
		if err := store.LoadState(data); err != nil {
			return fmt.Errorf("loading seed file: %w", err)
		}
		logger.Info("seed loaded", slog.String("path", cfg.SeedFile))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv := twin.New(store, twin.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		Latency:        cfg.Latency,
		Registerer:     registry,
		Logger:         logger,
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.Handle("/", srv.Handler())

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("twin starting",
			slog.String("addr", server.Addr),
			slog.Duration("latency", cfg.Latency),
		)
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-shutdown:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			server.Close()
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	logger.Info("twin stopped")
	return nil
}

func initLogger(cfg Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.LogLevel == "debug" {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Environment == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
