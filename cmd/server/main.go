package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Simplici0/scanquote/internal/config"
	"github.com/Simplici0/scanquote/internal/db"
	"github.com/Simplici0/scanquote/internal/logging"
	"github.com/Simplici0/scanquote/internal/migrations"
	"github.com/Simplici0/scanquote/internal/quotes"
	"github.com/Simplici0/scanquote/internal/ratecard"
	"github.com/Simplici0/scanquote/internal/seed"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "scanquote: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Output:      "stderr",
		Development: cfg.IsDev(),
	})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	for _, w := range cfg.Warnings() {
		logger.Warn(w)
	}

	card, err := ratecard.Load(cfg.RateCardPath)
	if err != nil {
		return fmt.Errorf("load rate card: %w", err)
	}
	logger.Info("rate card loaded", zap.String("source", card.Source), zap.String("fingerprint", card.Fingerprint))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	openCtx, cancel := context.WithTimeout(ctx, cfg.DBOpenTimeout)
	database, err := db.Open(openCtx, cfg.DBPath, logger)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	if err := migrations.Up(ctx, database, logger); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	stats, err := seed.Run(ctx, database, seed.Config{
		AdminEmail:          cfg.AdminEmail,
		AdminPassword:       cfg.AdminPassword,
		RateCardFingerprint: card.Fingerprint,
		RateCardSource:      card.Source,
	})
	if err != nil {
		return fmt.Errorf("failed to seed database: %w", err)
	}
	logger.Info("seed complete", zap.Int("inserts", stats.Inserts), zap.Int("updates", stats.Updates))

	secret := cfg.SessionSecret
	if secret == "" {
		if secret, err = randomSessionSecret(); err != nil {
			return err
		}
	}

	srv := &server{
		auth:   newAuthService(database, secret, !cfg.IsDev()),
		quotes: quotes.NewService(quotes.NewStore(database, logger), card, logger),
		logger: logger,
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", httpServer.Addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
