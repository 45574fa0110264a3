package quotes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Simplici0/scanquote/internal/pricing"
)

const timeLayout = "2006-01-02 15:04:05.000000"

// Store reads and writes quotes in SQLite.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewStore returns a Store on db.
func NewStore(db *sql.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger.Named("quotes.store"), now: time.Now}
}

// Create inserts a new quote with d as version 1.
func (s *Store) Create(ctx context.Context, h Header, createdBy string, d Draft) (Quote, Version, error) {
	const op = "quotes.Store.Create"

	if strings.TrimSpace(h.Title) == "" {
		return Quote{}, Version{}, fmt.Errorf("%s: %w: title is required", op, ErrInvalidSubmission)
	}

	now := s.now().UTC()
	q := Quote{
		ID:        uuid.NewString(),
		Header:    h,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Quote{}, Version{}, fmt.Errorf("%s: begin: %w", op, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO quotes (id, title, client_name, notes, created_by, latest_version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 0, ?, ?)
	`, q.ID, q.Title, q.ClientName, q.Notes, q.CreatedBy, now.Format(timeLayout), now.Format(timeLayout)); err != nil {
		return Quote{}, Version{}, fmt.Errorf("%s: insert quote: %w", op, err)
	}

	v, err := s.insertVersion(ctx, tx, q.ID, d, now)
	if err != nil {
		return Quote{}, Version{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := tx.Commit(); err != nil {
		return Quote{}, Version{}, fmt.Errorf("%s: commit: %w", op, err)
	}

	q.LatestVersion = v.Version
	q.TotalClientPrice = v.TotalClientPrice
	q.MarginPercent = v.MarginPercent
	q.GateStatus = v.GateStatus
	s.logger.Info("quote created", zap.String("quote_id", q.ID), zap.String("total", v.TotalClientPrice.StringFixed(2)))
	return q, v, nil
}

// AddVersion appends d as the next version of quoteID. Earlier versions are
// never modified.
func (s *Store) AddVersion(ctx context.Context, quoteID string, d Draft) (Version, error) {
	const op = "quotes.Store.AddVersion"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Version{}, fmt.Errorf("%s: begin: %w", op, err)
	}
	defer tx.Rollback()

	v, err := s.insertVersion(ctx, tx, quoteID, d, s.now().UTC())
	if err != nil {
		return Version{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := tx.Commit(); err != nil {
		return Version{}, fmt.Errorf("%s: commit: %w", op, err)
	}

	s.logger.Info("quote version added",
		zap.String("quote_id", quoteID),
		zap.Int("version", v.Version),
		zap.String("total", v.TotalClientPrice.StringFixed(2)))
	return v, nil
}

func (s *Store) insertVersion(ctx context.Context, tx *sql.Tx, quoteID string, d Draft, now time.Time) (Version, error) {
	var latest int
	err := tx.QueryRowContext(ctx, `SELECT latest_version FROM quotes WHERE id = ?`, quoteID).Scan(&latest)
	if errors.Is(err, sql.ErrNoRows) {
		return Version{}, ErrNotFound
	}
	if err != nil {
		return Version{}, fmt.Errorf("read latest version: %w", err)
	}

	mode := d.Submission.Mode
	if mode == "" {
		mode = ModeStandard
	}
	v := Version{
		QuoteID:             quoteID,
		Version:             latest + 1,
		Mode:                mode,
		Submission:          d.Submission,
		Result:              d.Result,
		TotalClientPrice:    d.Result.TotalClientPrice,
		MarginPercent:       d.Gate.MarginPercent,
		GateStatus:          d.Gate.Status,
		AdjustmentPercent:   decimal.NewFromFloat(d.Submission.AdjustmentPercent),
		RateCardFingerprint: d.RateCardFingerprint,
		CreatedAt:           now,
	}
	v.Submission.Mode = mode
	v.Submission.ClientTotal = nil

	requestJSON, err := json.Marshal(v.Submission)
	if err != nil {
		return Version{}, fmt.Errorf("encode request: %w", err)
	}
	resultJSON, err := json.Marshal(v.Result)
	if err != nil {
		return Version{}, fmt.Errorf("encode result: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO quote_versions (
			quote_id, version, mode, request_json, result_json, total_client_price,
			margin_percent, gate_status, adjustment_percent, rate_card_fingerprint, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		v.QuoteID, v.Version, string(v.Mode), string(requestJSON), string(resultJSON),
		v.TotalClientPrice.StringFixed(2), v.MarginPercent.String(), string(v.GateStatus),
		v.AdjustmentPercent.String(), v.RateCardFingerprint, now.Format(timeLayout),
	); err != nil {
		return Version{}, fmt.Errorf("insert version: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE quotes SET latest_version = ?, updated_at = ? WHERE id = ?
	`, v.Version, now.Format(timeLayout), quoteID); err != nil {
		return Version{}, fmt.Errorf("update quote: %w", err)
	}
	return v, nil
}

// Get returns a quote with the summary of every version, oldest first.
func (s *Store) Get(ctx context.Context, id string) (Quote, error) {
	const op = "quotes.Store.Get"

	row := s.db.QueryRowContext(ctx, listSelect+` WHERE q.id = ?`, id)
	q, err := scanQuote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Quote{}, fmt.Errorf("%s: quote %s: %w", op, id, ErrNotFound)
	}
	if err != nil {
		return Quote{}, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT version, mode, total_client_price, margin_percent, gate_status, created_at
		FROM quote_versions
		WHERE quote_id = ?
		ORDER BY version
	`, id)
	if err != nil {
		return Quote{}, fmt.Errorf("%s: query versions: %w", op, err)
	}
	defer rows.Close()

	q.Versions = make([]VersionSummary, 0, q.LatestVersion)
	for rows.Next() {
		var (
			vs        VersionSummary
			mode      string
			status    string
			createdAt string
		)
		if err := rows.Scan(&vs.Version, &mode, &vs.TotalClientPrice, &vs.MarginPercent, &status, &createdAt); err != nil {
			return Quote{}, fmt.Errorf("%s: scan version: %w", op, err)
		}
		vs.Mode = Mode(mode)
		vs.GateStatus = pricing.GateStatus(status)
		if vs.CreatedAt, err = parseTime(createdAt); err != nil {
			return Quote{}, fmt.Errorf("%s: %w", op, err)
		}
		q.Versions = append(q.Versions, vs)
	}
	if err := rows.Err(); err != nil {
		return Quote{}, fmt.Errorf("%s: iterate versions: %w", op, err)
	}
	return q, nil
}

// GetVersion reads one stored version exactly as it was saved.
func (s *Store) GetVersion(ctx context.Context, id string, version int) (Version, error) {
	const op = "quotes.Store.GetVersion"

	var (
		v           Version
		mode        string
		status      string
		requestJSON string
		resultJSON  string
		createdAt   string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT quote_id, version, mode, request_json, result_json, total_client_price,
			margin_percent, gate_status, adjustment_percent, rate_card_fingerprint, created_at
		FROM quote_versions
		WHERE quote_id = ? AND version = ?
	`, id, version).Scan(
		&v.QuoteID, &v.Version, &mode, &requestJSON, &resultJSON, &v.TotalClientPrice,
		&v.MarginPercent, &status, &v.AdjustmentPercent, &v.RateCardFingerprint, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Version{}, fmt.Errorf("%s: quote %s version %d: %w", op, id, version, ErrNotFound)
	}
	if err != nil {
		return Version{}, fmt.Errorf("%s: %w", op, err)
	}

	v.Mode = Mode(mode)
	v.GateStatus = pricing.GateStatus(status)
	if err := json.Unmarshal([]byte(requestJSON), &v.Submission); err != nil {
		return Version{}, fmt.Errorf("%s: decode request: %w", op, err)
	}
	if err := json.Unmarshal([]byte(resultJSON), &v.Result); err != nil {
		return Version{}, fmt.Errorf("%s: decode result: %w", op, err)
	}
	if v.CreatedAt, err = parseTime(createdAt); err != nil {
		return Version{}, fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}

// List returns quotes newest first. A non-empty query filters on title,
// client name and notes.
func (s *Store) List(ctx context.Context, query string) ([]Quote, error) {
	const op = "quotes.Store.List"

	query = strings.TrimSpace(query)
	search := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx, listSelect+`
		WHERE (? = '' OR q.title LIKE ? OR q.client_name LIKE ? OR q.notes LIKE ?)
		ORDER BY q.updated_at DESC, q.created_at DESC, q.id DESC
	`, query, search, search, search)
	if err != nil {
		return nil, fmt.Errorf("%s: query quotes: %w", op, err)
	}
	defer rows.Close()

	quotes := make([]Quote, 0)
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: iterate quotes: %w", op, err)
	}
	return quotes, nil
}

const listSelect = `
	SELECT q.id, q.title, q.client_name, q.notes, q.created_by, q.latest_version,
		q.created_at, q.updated_at, v.total_client_price, v.margin_percent, v.gate_status
	FROM quotes q
	JOIN quote_versions v ON v.quote_id = q.id AND v.version = q.latest_version`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuote(row rowScanner) (Quote, error) {
	var (
		q         Quote
		status    string
		createdAt string
		updatedAt string
	)
	if err := row.Scan(
		&q.ID, &q.Title, &q.ClientName, &q.Notes, &q.CreatedBy, &q.LatestVersion,
		&createdAt, &updatedAt, &q.TotalClientPrice, &q.MarginPercent, &status,
	); err != nil {
		return Quote{}, err
	}
	q.GateStatus = pricing.GateStatus(status)

	var err error
	if q.CreatedAt, err = parseTime(createdAt); err != nil {
		return Quote{}, err
	}
	if q.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return Quote{}, err
	}
	return q, nil
}

func parseTime(raw string) (time.Time, error) {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", raw, err)
	}
	return t, nil
}
