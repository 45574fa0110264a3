package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Config contains the values required by startup seed.
type Config struct {
	AdminEmail    string
	AdminPassword string

	// RateCardFingerprint and RateCardSource record the card the process prices with.
	RateCardFingerprint string
	RateCardSource      string
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// Run executes the startup seed in an idempotent way.
func Run(ctx context.Context, db *sql.DB, cfg Config) (Stats, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := seedAdmin(ctx, tx, cfg.AdminEmail, cfg.AdminPassword, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureRateCard(ctx, tx, cfg.RateCardFingerprint, cfg.RateCardSource, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func seedAdmin(ctx context.Context, tx *sql.Tx, email, password string, stats *Stats) error {
	if email == "" || password == "" {
		return nil
	}

	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = ? LIMIT 1)`, email).Scan(&exists); err != nil {
		return fmt.Errorf("check admin user existence: %w", err)
	}
	if exists {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO users (email, password_hash) VALUES (?, ?)`, email, string(hash)); err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureRateCard(ctx context.Context, tx *sql.Tx, fingerprint, source string, stats *Stats) error {
	if fingerprint == "" {
		return nil
	}

	var current string
	err := tx.QueryRowContext(ctx, `SELECT source FROM rate_cards WHERE fingerprint = ?`, fingerprint).Scan(&current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.ExecContext(ctx, `INSERT INTO rate_cards (fingerprint, source) VALUES (?, ?)`, fingerprint, source); err != nil {
			return fmt.Errorf("insert rate card: %w", err)
		}
		stats.Inserts++
		return nil
	case err != nil:
		return fmt.Errorf("check rate card existence: %w", err)
	}

	if current == source {
		return nil
	}
	if _, err := tx.ExecContext(ctx, `UPDATE rate_cards SET source = ? WHERE fingerprint = ?`, source, fingerprint); err != nil {
		return fmt.Errorf("update rate card source: %w", err)
	}
	stats.Updates++
	return nil
}
