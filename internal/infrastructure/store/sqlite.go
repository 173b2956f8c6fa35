package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"financing-engine/internal/domain/financing"
	"financing-engine/internal/pkg/apperrors"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore is the single-file backend for local deployments. Same
// snapshot contract as Postgres: one document per key, replaced on save.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewSQLiteStore(dataSourceName string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	if _, err = db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}

	s := &SQLiteStore{db: db, logger: logger.With("component", "SQLiteStore")}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("could not initialize schema: %w", err)
	}
	logger.Info("SQLite snapshot store ready", "path", dataSourceName)
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS loan_snapshots (
		key        TEXT PRIMARY KEY,
		doc        TEXT NOT NULL,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Save(ctx context.Context, loans []*financing.Loan) error {
	doc, err := json.Marshal(loans)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal loan snapshot: %w", apperrors.ErrPersistence, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO loan_snapshots (key, doc, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET doc = excluded.doc, updated_at = CURRENT_TIMESTAMP`,
		snapshotKey, string(doc),
	)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to save loan snapshot", "error", err)
		return fmt.Errorf("%w: failed to save loan snapshot: %w", apperrors.ErrPersistence, err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) ([]*financing.Loan, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM loan_snapshots WHERE key = ?`, snapshotKey).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []*financing.Loan{}, nil
		}
		s.logger.ErrorContext(ctx, "Failed to load loan snapshot", "error", err)
		return nil, fmt.Errorf("%w: failed to load loan snapshot: %w", apperrors.ErrPersistence, err)
	}

	var loans []*financing.Loan
	if err := json.Unmarshal([]byte(doc), &loans); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal loan snapshot: %w", apperrors.ErrPersistence, err)
	}
	return loans, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
