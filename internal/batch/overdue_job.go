package batch

import (
	"context"
	"log/slog"
	"time"

	"financing-engine/internal/domain/financing"
	"financing-engine/internal/infrastructure/monitoring"
)

// OverdueScanJob walks every active loan and refreshes the overdue and
// active-loan gauges. The scan is read-only: it never mutates loan state.
type OverdueScanJob struct {
	ledger *financing.Ledger
	logger *slog.Logger
	now    func() time.Time
}

func NewOverdueScanJob(ledger *financing.Ledger, logger *slog.Logger) *OverdueScanJob {
	if ledger == nil || logger == nil {
		panic("OverdueScanJob dependencies cannot be nil")
	}
	return &OverdueScanJob{
		ledger: ledger,
		logger: logger.With("job", "OverdueScan"),
		now:    time.Now,
	}
}

// WithClock overrides the job clock. Used by tests to pin the scan date.
func (j *OverdueScanJob) WithClock(now func() time.Time) *OverdueScanJob {
	j.now = now
	return j
}

func (j *OverdueScanJob) Run(ctx context.Context) error {
	startTime := j.now()
	j.logger.InfoContext(ctx, "Starting overdue installment scan.")

	// Midnight in the clock's own location; an installment due today is not
	// overdue yet.
	today := time.Date(startTime.Year(), startTime.Month(), startTime.Day(), 0, 0, 0, 0, startTime.Location())
	activeLoans := j.ledger.ListActiveLoans()

	var overdueCount, loansWithOverdue int
	for _, loan := range activeLoans {
		overdueHere := 0
		for i := range loan.Installments {
			inst := &loan.Installments[i]
			if !inst.Paid && inst.DueDate.Before(today) {
				overdueHere++
			}
		}
		if overdueHere > 0 {
			loansWithOverdue++
			j.logger.DebugContext(ctx, "Loan has overdue installments.",
				slog.String("loanID", loan.ID),
				slog.Int("overdue", overdueHere))
		}
		overdueCount += overdueHere
	}

	monitoring.Business.ActiveLoans.Set(float64(len(activeLoans)))
	monitoring.Business.OverdueInstallments.Set(float64(overdueCount))

	j.logger.InfoContext(ctx, "Overdue installment scan finished.",
		slog.Duration("duration", time.Since(startTime)),
		slog.Int("active_loans", len(activeLoans)),
		slog.Int("loans_with_overdue", loansWithOverdue),
		slog.Int("overdue_installments", overdueCount))
	return nil
}
