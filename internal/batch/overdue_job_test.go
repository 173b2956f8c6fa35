package batch_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"financing-engine/internal/batch"
	"financing-engine/internal/domain/financing"
	"financing-engine/internal/infrastructure/cache"
	"financing-engine/internal/infrastructure/monitoring"
	"financing-engine/internal/infrastructure/store"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func months(n int) *int {
	return &n
}

func newScanLedger(t *testing.T) (*financing.Ledger, *slog.Logger) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return financing.NewLedger(store.NewMemoryStore(), cache.NewNoopCache(), nil, logger), logger
}

func TestOverdueScanJob(t *testing.T) {
	t.Run("counts unpaid installments past due", func(t *testing.T) {
		ledger, logger := newScanLedger(t)

		// schedule anchored a year back so every installment is overdue
		past := time.Now().AddDate(-1, 0, 0)
		overdueLoan, err := ledger.CreateLoan(context.Background(), financing.Config{
			Principal:   3000,
			MonthlyRate: 1.0,
			TermMonths:  months(3),
			StartDate:   past,
		})
		require.NoError(t, err)

		_, err = ledger.CreateLoan(context.Background(), financing.Config{
			Principal:   5000,
			MonthlyRate: 1.0,
			TermMonths:  months(6),
			StartDate:   time.Now(),
		})
		require.NoError(t, err)

		_, err = ledger.RecordPayment(context.Background(), overdueLoan.ID, 1, nil)
		require.NoError(t, err)

		job := batch.NewOverdueScanJob(ledger, logger)
		require.NoError(t, job.Run(context.Background()))

		assert.Equal(t, float64(2), testutil.ToFloat64(monitoring.Business.ActiveLoans))
		assert.Equal(t, float64(2), testutil.ToFloat64(monitoring.Business.OverdueInstallments),
			"two unpaid installments of the old loan are past due")
	})

	t.Run("an installment due today in the clock's zone is not overdue", func(t *testing.T) {
		ledger, logger := newScanLedger(t)

		// evening of March 10 in a UTC+10 zone; that instant is still
		// March 10 morning in UTC
		loc := time.FixedZone("UTC+10", 10*60*60)
		scanClock := time.Date(2026, time.March, 10, 20, 0, 0, 0, loc)

		_, err := ledger.CreateLoan(context.Background(), financing.Config{
			Principal:   6000,
			MonthlyRate: 1.0,
			TermMonths:  months(6),
			StartDate:   time.Date(2026, time.February, 10, 0, 0, 0, 0, loc),
		})
		require.NoError(t, err)

		job := batch.NewOverdueScanJob(ledger, logger).
			WithClock(func() time.Time { return scanClock })
		require.NoError(t, job.Run(context.Background()))

		assert.Equal(t, float64(1), testutil.ToFloat64(monitoring.Business.ActiveLoans))
		assert.Equal(t, float64(0), testutil.ToFloat64(monitoring.Business.OverdueInstallments),
			"the first installment falls due today, not yesterday")
	})
}
