// Command server runs the vendormail HTTP service: batch ingestion,
// comparison reads, and the health probe.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aoi-dev/vendormail/internal/analysis"
	"github.com/aoi-dev/vendormail/internal/config"
	"github.com/aoi-dev/vendormail/internal/llm"
	"github.com/aoi-dev/vendormail/internal/pipeline"
	"github.com/aoi-dev/vendormail/internal/server"
	"github.com/aoi-dev/vendormail/internal/store/sqlite"
)

func main() {
	configPath := flag.String("config", "vendormail.yaml", "path to config file")
	initConfig := flag.Bool("init-config", false, "write the default config file and exit")
	flag.Parse()

	if *initConfig {
		if err := config.DefaultConfig().Save(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		fmt.Println("wrote", *configPath)
		return
	}

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	if dir := filepath.Dir(cfg.Store.Path); dir != "." && cfg.Store.Path != ":memory:" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
	}

	st, err := sqlite.New(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	provider, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		return err
	}

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	err = provider.Ping(pingCtx)
	cancelPing()
	if err != nil {
		return fmt.Errorf("llm provider %s unreachable: %w", provider.Name(), err)
	}

	analyzer := analysis.NewEmailAnalyzer(provider, cfg.LLM.Model, logger)
	synth := analysis.NewComparisonSynthesizer(provider, cfg.LLM.Model, logger)
	pipe := pipeline.New(analyzer, synth, st, logger, cfg.Location())

	srv := server.New(pipe, st, st, provider, logger)
	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			"addr", cfg.Server.Addr,
			"provider", provider.Name(),
			"model", cfg.LLM.Model,
		)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
