package financing

import "context"

// SnapshotStore persists the whole loan collection as an opaque snapshot.
// The ledger saves after every mutating operation and loads once at startup;
// store failures are reported to the caller, never retried internally.
type SnapshotStore interface {
	Load(ctx context.Context) ([]*Loan, error)

	Save(ctx context.Context, loans []*Loan) error
}

// SimulationCache memoizes simulation previews. A miss is never an error.
type SimulationCache interface {
	Get(ctx context.Context, key string) (string, bool)

	Set(ctx context.Context, key string, value string) error
}
