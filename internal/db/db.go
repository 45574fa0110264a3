package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

// pragmas are applied by the driver to every pooled connection.
var pragmas = []string{
	"journal_mode(WAL)",
	"foreign_keys(ON)",
	"busy_timeout(5000)",
}

// DSN builds a modernc sqlite connection string for dbPath with the recommended pragmas.
func DSN(dbPath string) string {
	q := url.Values{}
	for _, p := range pragmas {
		q.Add("_pragma", p)
	}
	return "file:" + dbPath + "?" + q.Encode()
}

// Open opens a SQLite database and validates connectivity, retrying the ping
// until ctx is done.
func Open(ctx context.Context, dbPath string, logger *zap.Logger) (*sql.DB, error) {
	const op = "db.Open"

	db, err := sql.Open("sqlite", DSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("%s: open sqlite database: %w", op, err)
	}

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.InitialInterval = 100 * time.Millisecond
	retryPolicy.MaxInterval = 2 * time.Second

	err = backoff.RetryNotify(
		func() error {
			if err := db.PingContext(ctx); err != nil {
				return fmt.Errorf("ping: %w", err)
			}
			return nil
		},
		backoff.WithContext(retryPolicy, ctx),
		func(err error, next time.Duration) {
			logger.Warn("sqlite not ready, retrying",
				zap.String("path", dbPath),
				zap.Error(err),
				zap.Duration("next_attempt_in", next))
		},
	)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: ping sqlite database: %w", op, err)
	}

	logger.Debug("sqlite database ready", zap.String("path", dbPath))
	return db, nil
}
