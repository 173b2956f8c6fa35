package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"financing-engine/internal/domain/financing"
	"financing-engine/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pashagolub/pgxmock/v4"
)

type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Close()
}

var _ DBPool = (*pgxpool.Pool)(nil)

var _ DBPool = (pgxmock.PgxPoolIface)(nil)

const snapshotKey = "loans"

// PostgresStore keeps the whole loan collection as one JSONB document,
// upserted on every save. The ledger is the source of truth for the running
// session; this is a durability snapshot, not a relational model.
type PostgresStore struct {
	db     DBPool
	logger *slog.Logger
}

func NewPostgresStore(db DBPool, logger *slog.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: logger.With("component", "PostgresStore")}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	const schema = `
        CREATE TABLE IF NOT EXISTS loan_snapshots (
            key        TEXT PRIMARY KEY,
            doc        JSONB NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("%w: failed to create snapshot table: %w", apperrors.ErrPersistence, err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, loans []*financing.Loan) error {
	doc, err := json.Marshal(loans)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal loan snapshot: %w", apperrors.ErrPersistence, err)
	}

	const upsert = `
        INSERT INTO loan_snapshots (key, doc, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (key) DO UPDATE SET doc = EXCLUDED.doc, updated_at = NOW()`

	if _, err := s.db.Exec(ctx, upsert, snapshotKey, doc); err != nil {
		s.logger.ErrorContext(ctx, "Failed to save loan snapshot", "error", err)
		return fmt.Errorf("%w: failed to save loan snapshot: %w", apperrors.ErrPersistence, err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) ([]*financing.Loan, error) {
	var doc []byte
	err := s.db.QueryRow(ctx, `SELECT doc FROM loan_snapshots WHERE key = $1`, snapshotKey).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []*financing.Loan{}, nil
		}
		s.logger.ErrorContext(ctx, "Failed to load loan snapshot", "error", err)
		return nil, fmt.Errorf("%w: failed to load loan snapshot: %w", apperrors.ErrPersistence, err)
	}

	var loans []*financing.Loan
	if err := json.Unmarshal(doc, &loans); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal loan snapshot: %w", apperrors.ErrPersistence, err)
	}
	return loans, nil
}

func (s *PostgresStore) Close() {
	s.db.Close()
}
