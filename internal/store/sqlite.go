package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"cian_bot/internal/model"
	"cian_bot/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"

// SQLite implements Store backed by a SQLite database, for deployments where
// rewriting the whole JSON array every batch stops being reasonable. Offers
// are indexed by fingerprint with the full record kept alongside.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database at dsn and runs pending migrations.
func OpenSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// IsKnown reports whether an offer with the same fingerprint was recorded.
func (s *SQLite) IsKnown(ctx context.Context, offer model.Offer) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM known_offers WHERE fingerprint = ?`,
		offer.Fingerprint(),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check known: %w", err)
	}
	return count > 0, nil
}

// RecordAll inserts the offers in a single transaction.
func (s *SQLite) RecordAll(ctx context.Context, offers []model.Offer) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(timeLayout)
	for _, o := range offers {
		payload, err := json.Marshal(o)
		if err != nil {
			return fmt.Errorf("encode offer %d: %w", o.ID, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO known_offers (fingerprint, offer_id, payload, notified_at) VALUES (?, ?, ?, ?)`,
			o.Fingerprint(), o.ID, string(payload), now,
		)
		if err != nil {
			return fmt.Errorf("insert offer %d: %w", o.ID, err)
		}
	}
	return tx.Commit()
}
