package financing

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"financing-engine/internal/event"
	"financing-engine/internal/infrastructure/monitoring"
	"financing-engine/internal/pkg/apperrors"

	"github.com/google/uuid"
)

// Ledger owns the loan collection and is the single place where payment
// state transitions are applied. All mutating operations update the
// in-memory state first and persist a snapshot afterwards: a store failure
// returns the successful result together with an error wrapping
// apperrors.ErrPersistence, so callers can tell "applied but not persisted"
// apart from a rejected operation.
//
// A single RWMutex serializes mutations against reads of the collection,
// which is stricter than the per-loan requirement and fine for one small
// in-process collection.
type Ledger struct {
	mu        sync.RWMutex
	loans     []*Loan
	store     SnapshotStore
	cache     SimulationCache
	publisher event.EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewLedger(store SnapshotStore, cache SimulationCache, publisher event.EventPublisher, logger *slog.Logger) *Ledger {
	if publisher == nil {
		publisher = event.NoopPublisher{}
	}
	return &Ledger{
		store:     store,
		cache:     cache,
		publisher: publisher,
		logger:    logger.With("component", "Ledger"),
		now:       time.Now,
	}
}

// WithClock overrides the ledger clock. Used by tests to pin paid dates and
// creation timestamps.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// Load hydrates the ledger from the snapshot store. A load failure leaves
// the ledger empty and is surfaced as a persistence error; the running
// session remains usable.
func (l *Ledger) Load(ctx context.Context) error {
	loans, err := l.store.Load(ctx)
	if err != nil {
		l.logger.WarnContext(ctx, "Failed to load loan snapshot, starting empty", "error", err)
		return apperrors.WrapPersistenceError(err, "failed to load loan snapshot")
	}

	l.mu.Lock()
	l.loans = loans
	l.mu.Unlock()

	l.logger.InfoContext(ctx, "Loan snapshot loaded", "count", len(loans))
	return nil
}

// CreateLoan validates the configuration, computes the full schedule and
// appends the new loan to the ledger.
func (l *Ledger) CreateLoan(ctx context.Context, cfg Config) (*Loan, error) {
	cfg.applyDefaults(l.today())
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	schedule, err := ComputeSchedule(cfg.Principal, cfg.MonthlyRate, *cfg.TermMonths, cfg.Method, cfg.StartDate)
	if err != nil {
		return nil, err
	}

	loan := &Loan{
		ID:           uuid.NewString(),
		Name:         cfg.Name,
		Principal:    cfg.Principal,
		MonthlyRate:  cfg.MonthlyRate,
		TermMonths:   *cfg.TermMonths,
		Method:       cfg.Method,
		StartDate:    cfg.StartDate,
		CreatedAt:    l.now(),
		Installments: schedule,
		Status:       StatusActive,
		TotalPaid:    0,
	}
	loan.refreshNextDue()

	l.mu.Lock()
	l.loans = append(l.loans, loan)
	persistErr := l.persist(ctx)
	created := loan.clone()
	l.mu.Unlock()

	monitoring.RecordLoanCreated(string(created.Method))
	l.publishLoanCreated(ctx, created)
	l.logger.InfoContext(ctx, "Loan created", "loanID", created.ID, "method", created.Method, "termMonths", created.TermMonths)

	return created, persistErr
}

// RecordPayment marks a single installment as paid. A second attempt on the
// same installment is a conflict, not a no-op. TotalPaid accumulates the
// scheduled installment value even when an override amount is supplied,
// keeping aggregate totals comparable across loans; the override is tracked
// on the installment itself.
func (l *Ledger) RecordPayment(ctx context.Context, loanID string, installmentNumber int, paidAmountOverride *Money) (*Installment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	loan := l.find(loanID)
	if loan == nil {
		return nil, fmt.Errorf("%w: loan %s not found", apperrors.ErrNotFound, loanID)
	}
	if loan.Status != StatusActive {
		return nil, fmt.Errorf("%w: %w: loan %s is %s", apperrors.ErrConflict, apperrors.ErrLoanClosed, loanID, loan.Status)
	}

	inst := loan.installment(installmentNumber)
	if inst == nil {
		return nil, fmt.Errorf("%w: installment %d not found on loan %s", apperrors.ErrNotFound, installmentNumber, loanID)
	}
	if inst.Paid {
		return nil, fmt.Errorf("%w: %w: installment %d of loan %s", apperrors.ErrConflict, apperrors.ErrAlreadyPaid, installmentNumber, loanID)
	}

	paidDate := l.today()
	inst.Paid = true
	inst.PaidDate = &paidDate
	if paidAmountOverride != nil {
		inst.PaidAmount = *paidAmountOverride
	} else {
		inst.PaidAmount = inst.PaymentAmount
	}

	loan.TotalPaid = roundTo(loan.TotalPaid+inst.PaymentAmount, 2)
	loan.refreshNextDue()

	settled := loan.allPaid()
	if settled {
		loan.Status = StatusSettled
	}

	persistErr := l.persist(ctx)

	monitoring.RecordPayment("success")
	l.publishInstallmentPaid(ctx, loan, inst)
	if settled {
		l.publishLoanSettled(ctx, loan)
		l.logger.InfoContext(ctx, "Loan settled", "loanID", loan.ID, "totalPaid", loan.TotalPaid)
	}

	paid := *inst
	return &paid, persistErr
}

// CancelLoan applies the explicit external ACTIVE -> CANCELLED transition.
// Both SETTLED and CANCELLED are terminal.
func (l *Ledger) CancelLoan(ctx context.Context, loanID string) (*Loan, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	loan := l.find(loanID)
	if loan == nil {
		return nil, fmt.Errorf("%w: loan %s not found", apperrors.ErrNotFound, loanID)
	}
	if loan.Status != StatusActive {
		return nil, fmt.Errorf("%w: %w: loan %s is %s", apperrors.ErrConflict, apperrors.ErrLoanClosed, loanID, loan.Status)
	}

	loan.Status = StatusCancelled
	persistErr := l.persist(ctx)

	if err := l.publisher.PublishLoanCancelled(ctx, event.LoanCancelledEvent{
		LoanID:    loan.ID,
		Timestamp: l.now(),
	}); err != nil {
		l.logger.WarnContext(ctx, "Failed to publish loan cancelled event", "loanID", loan.ID, "error", err)
	}
	l.logger.InfoContext(ctx, "Loan cancelled", "loanID", loan.ID)

	return loan.clone(), persistErr
}

// DeleteLoan removes the whole aggregate.
func (l *Ledger) DeleteLoan(ctx context.Context, loanID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, loan := range l.loans {
		if loan.ID == loanID {
			l.loans = append(l.loans[:i], l.loans[i+1:]...)
			l.logger.InfoContext(ctx, "Loan deleted", "loanID", loanID)
			return l.persist(ctx)
		}
	}
	return fmt.Errorf("%w: loan %s not found", apperrors.ErrNotFound, loanID)
}

// ListLoans returns deep copies of the full collection, newest last.
func (l *Ledger) ListLoans() []*Loan {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*Loan, len(l.loans))
	for i, loan := range l.loans {
		out[i] = loan.clone()
	}
	return out
}

// ListActiveLoans returns deep copies of the loans still accepting payments.
func (l *Ledger) ListActiveLoans() []*Loan {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []*Loan
	for _, loan := range l.loans {
		if loan.Status == StatusActive {
			out = append(out, loan.clone())
		}
	}
	return out
}

// GetLoan returns a deep copy; callers never see ledger-owned memory.
func (l *Ledger) GetLoan(loanID string) (*Loan, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	loan := l.find(loanID)
	if loan == nil {
		return nil, fmt.Errorf("%w: loan %s not found", apperrors.ErrNotFound, loanID)
	}
	return loan.clone(), nil
}

// find must be called with the mutex held.
func (l *Ledger) find(loanID string) *Loan {
	for _, loan := range l.loans {
		if loan.ID == loanID {
			return loan
		}
	}
	return nil
}

// persist must be called with the write lock held.
func (l *Ledger) persist(ctx context.Context) error {
	if err := l.store.Save(ctx, l.loans); err != nil {
		l.logger.WarnContext(ctx, "Failed to persist loan snapshot; in-memory state remains authoritative", "error", err)
		return apperrors.WrapPersistenceError(err, "failed to save loan snapshot")
	}
	return nil
}

func (l *Ledger) today() time.Time {
	now := l.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func (l *Ledger) publishLoanCreated(ctx context.Context, loan *Loan) {
	if err := l.publisher.PublishLoanCreated(ctx, event.LoanCreatedEvent{
		LoanID:     loan.ID,
		Name:       loan.Name,
		Principal:  loan.Principal,
		TermMonths: loan.TermMonths,
		Method:     string(loan.Method),
		Timestamp:  l.now(),
	}); err != nil {
		l.logger.WarnContext(ctx, "Failed to publish loan created event", "loanID", loan.ID, "error", err)
	}
}

func (l *Ledger) publishInstallmentPaid(ctx context.Context, loan *Loan, inst *Installment) {
	if err := l.publisher.PublishInstallmentPaid(ctx, event.InstallmentPaidEvent{
		LoanID:            loan.ID,
		InstallmentNumber: inst.Number,
		PaidAmount:        inst.PaidAmount,
		PaidDate:          *inst.PaidDate,
		Timestamp:         l.now(),
	}); err != nil {
		l.logger.WarnContext(ctx, "Failed to publish installment paid event", "loanID", loan.ID, "error", err)
	}
}

func (l *Ledger) publishLoanSettled(ctx context.Context, loan *Loan) {
	if err := l.publisher.PublishLoanSettled(ctx, event.LoanSettledEvent{
		LoanID:    loan.ID,
		TotalPaid: loan.TotalPaid,
		Timestamp: l.now(),
	}); err != nil {
		l.logger.WarnContext(ctx, "Failed to publish loan settled event", "loanID", loan.ID, "error", err)
	}
}
