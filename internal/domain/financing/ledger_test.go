package financing_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"financing-engine/internal/domain/financing"
	"financing-engine/internal/event"
	"financing-engine/internal/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recordingStore struct {
	saves    int
	snapshot []*financing.Loan
	loadWith []*financing.Loan
}

func (s *recordingStore) Save(_ context.Context, loans []*financing.Loan) error {
	s.saves++
	s.snapshot = make([]*financing.Loan, len(loans))
	copy(s.snapshot, loans)
	return nil
}

func (s *recordingStore) Load(context.Context) ([]*financing.Loan, error) {
	return s.loadWith, nil
}

type failingStore struct {
	err error
}

func (s *failingStore) Save(context.Context, []*financing.Loan) error {
	return s.err
}

func (s *failingStore) Load(context.Context) ([]*financing.Loan, error) {
	return nil, s.err
}

type mapCache struct {
	entries map[string]string
	sets    int
	hits    int
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[string]string{}}
}

func (c *mapCache) Get(_ context.Context, key string) (string, bool) {
	val, ok := c.entries[key]
	if ok {
		c.hits++
	}
	return val, ok
}

func (c *mapCache) Set(_ context.Context, key string, value string) error {
	c.sets++
	c.entries[key] = value
	return nil
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishLoanCreated(ctx context.Context, e event.LoanCreatedEvent) error {
	return m.Called(ctx, e).Error(0)
}

func (m *mockPublisher) PublishInstallmentPaid(ctx context.Context, e event.InstallmentPaidEvent) error {
	return m.Called(ctx, e).Error(0)
}

func (m *mockPublisher) PublishLoanSettled(ctx context.Context, e event.LoanSettledEvent) error {
	return m.Called(ctx, e).Error(0)
}

func (m *mockPublisher) PublishLoanCancelled(ctx context.Context, e event.LoanCancelledEvent) error {
	return m.Called(ctx, e).Error(0)
}

var testClock = time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)

func months(n int) *int {
	return &n
}

func newTestLedger(store financing.SnapshotStore) *financing.Ledger {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return financing.NewLedger(store, newMapCache(), nil, logger).
		WithClock(func() time.Time { return testClock })
}

func mustCreateLoan(t *testing.T, ledger *financing.Ledger, cfg financing.Config) *financing.Loan {
	t.Helper()
	loan, err := ledger.CreateLoan(context.Background(), cfg)
	require.NoError(t, err)
	return loan
}

func TestCreateLoan(t *testing.T) {
	t.Run("applies defaults for omitted fields", func(t *testing.T) {
		ledger := newTestLedger(&recordingStore{})

		loan := mustCreateLoan(t, ledger, financing.Config{Principal: 10000, MonthlyRate: 1.0})

		assert.Equal(t, "Financiamento", loan.Name)
		assert.Equal(t, 12, loan.TermMonths)
		assert.Equal(t, financing.MethodPrice, loan.Method)
		assert.Equal(t, time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC), loan.StartDate)
		assert.Equal(t, financing.StatusActive, loan.Status)
		assert.NotEmpty(t, loan.ID)
		assert.Len(t, loan.Installments, 12)
		require.NotNil(t, loan.NextDueDate)
		assert.Equal(t, loan.Installments[0].DueDate, *loan.NextDueDate)
	})

	t.Run("rejects invalid configuration without mutating the ledger", func(t *testing.T) {
		store := &recordingStore{}
		ledger := newTestLedger(store)

		_, err := ledger.CreateLoan(context.Background(), financing.Config{Principal: 0})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
		assert.Empty(t, ledger.ListLoans())
		assert.Zero(t, store.saves)
	})

	t.Run("an explicit zero term is rejected, not defaulted", func(t *testing.T) {
		store := &recordingStore{}
		ledger := newTestLedger(store)

		_, err := ledger.CreateLoan(context.Background(),
			financing.Config{Principal: 10000, MonthlyRate: 1.0, TermMonths: months(0)})
		assert.ErrorIs(t, err, apperrors.ErrValidation)

		var vErr *apperrors.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "termMonths", vErr.Field)

		assert.Empty(t, ledger.ListLoans())
		assert.Zero(t, store.saves)
	})

	t.Run("an absent term still defaults", func(t *testing.T) {
		ledger := newTestLedger(&recordingStore{})

		loan := mustCreateLoan(t, ledger, financing.Config{Principal: 10000, MonthlyRate: 1.0, TermMonths: nil})
		assert.Equal(t, financing.DefaultTermMonths, loan.TermMonths)
	})

	t.Run("persists a snapshot after creation", func(t *testing.T) {
		store := &recordingStore{}
		ledger := newTestLedger(store)

		mustCreateLoan(t, ledger, financing.Config{Principal: 5000, MonthlyRate: 2.0, TermMonths: months(6)})

		assert.Equal(t, 1, store.saves)
		require.Len(t, store.snapshot, 1)
	})

	t.Run("publishes a loan created event", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
		publisher := new(mockPublisher)
		publisher.On("PublishLoanCreated", mock.Anything, mock.Anything).Return(nil)

		ledger := financing.NewLedger(&recordingStore{}, newMapCache(), publisher, logger).
			WithClock(func() time.Time { return testClock })
		mustCreateLoan(t, ledger, financing.Config{Principal: 10000, MonthlyRate: 1.0})

		publisher.AssertCalled(t, "PublishLoanCreated", mock.Anything, mock.Anything)
	})
}

func TestRecordPayment(t *testing.T) {
	t.Run("marks the installment paid with the scheduled amount", func(t *testing.T) {
		ledger := newTestLedger(&recordingStore{})
		loan := mustCreateLoan(t, ledger, financing.Config{Principal: 10000, MonthlyRate: 1.0})

		inst, err := ledger.RecordPayment(context.Background(), loan.ID, 1, nil)
		require.NoError(t, err)

		assert.True(t, inst.Paid)
		assert.Equal(t, inst.PaymentAmount, inst.PaidAmount)
		require.NotNil(t, inst.PaidDate)
		assert.Equal(t, time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC), *inst.PaidDate)

		refreshed, err := ledger.GetLoan(loan.ID)
		require.NoError(t, err)
		assert.Equal(t, inst.PaymentAmount, refreshed.TotalPaid)
		require.NotNil(t, refreshed.NextDueDate)
		assert.Equal(t, refreshed.Installments[1].DueDate, *refreshed.NextDueDate)
	})

	t.Run("override changes the recorded amount but not the running total", func(t *testing.T) {
		ledger := newTestLedger(&recordingStore{})
		loan := mustCreateLoan(t, ledger, financing.Config{Principal: 10000, MonthlyRate: 1.0})

		override := 900.00
		inst, err := ledger.RecordPayment(context.Background(), loan.ID, 1, &override)
		require.NoError(t, err)

		assert.Equal(t, 900.00, inst.PaidAmount)

		refreshed, err := ledger.GetLoan(loan.ID)
		require.NoError(t, err)
		assert.Equal(t, inst.PaymentAmount, refreshed.TotalPaid,
			"the running total tracks the scheduled value, not the override")
	})

	t.Run("paying the same installment twice is a conflict", func(t *testing.T) {
		ledger := newTestLedger(&recordingStore{})
		loan := mustCreateLoan(t, ledger, financing.Config{Principal: 10000, MonthlyRate: 1.0})

		_, err := ledger.RecordPayment(context.Background(), loan.ID, 1, nil)
		require.NoError(t, err)

		_, err = ledger.RecordPayment(context.Background(), loan.ID, 1, nil)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
		assert.ErrorIs(t, err, apperrors.ErrAlreadyPaid)

		refreshed, err := ledger.GetLoan(loan.ID)
		require.NoError(t, err)
		assert.Equal(t, refreshed.Installments[0].PaymentAmount, refreshed.TotalPaid,
			"the rejected attempt must not change the total")
	})

	t.Run("unknown loan or installment is not found", func(t *testing.T) {
		ledger := newTestLedger(&recordingStore{})
		loan := mustCreateLoan(t, ledger, financing.Config{Principal: 10000, MonthlyRate: 1.0, TermMonths: months(6)})

		_, err := ledger.RecordPayment(context.Background(), "no-such-loan", 1, nil)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)

		_, err = ledger.RecordPayment(context.Background(), loan.ID, 7, nil)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)

		_, err = ledger.RecordPayment(context.Background(), loan.ID, 0, nil)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("settles the loan once every installment is paid, in any order", func(t *testing.T) {
		ledger := newTestLedger(&recordingStore{})
		loan := mustCreateLoan(t, ledger, financing.Config{Principal: 3000, MonthlyRate: 1.5, TermMonths: months(3)})

		for _, number := range []int{2, 3, 1} {
			_, err := ledger.RecordPayment(context.Background(), loan.ID, number, nil)
			require.NoError(t, err)
		}

		refreshed, err := ledger.GetLoan(loan.ID)
		require.NoError(t, err)
		assert.Equal(t, financing.StatusSettled, refreshed.Status)
		assert.Nil(t, refreshed.NextDueDate)
	})

	t.Run("rejects payments on terminal loans", func(t *testing.T) {
		ledger := newTestLedger(&recordingStore{})
		loan := mustCreateLoan(t, ledger, financing.Config{Principal: 10000, MonthlyRate: 1.0})

		_, err := ledger.CancelLoan(context.Background(), loan.ID)
		require.NoError(t, err)

		_, err = ledger.RecordPayment(context.Background(), loan.ID, 1, nil)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
		assert.ErrorIs(t, err, apperrors.ErrLoanClosed)
	})

	t.Run("surfaces a persistence failure alongside the applied payment", func(t *testing.T) {
		broken := newTestLedger(&failingStore{err: errors.New("disk full")})
		brokenLoan, err := broken.CreateLoan(context.Background(), financing.Config{Principal: 10000, MonthlyRate: 1.0})
		assert.ErrorIs(t, err, apperrors.ErrPersistence)
		require.NotNil(t, brokenLoan, "the loan is created even when the snapshot fails")

		inst, err := broken.RecordPayment(context.Background(), brokenLoan.ID, 1, nil)
		assert.ErrorIs(t, err, apperrors.ErrPersistence)
		require.NotNil(t, inst)
		assert.True(t, inst.Paid, "the payment is applied even when the snapshot fails")
	})
}

func TestCancelLoan(t *testing.T) {
	t.Run("moves an active loan to cancelled", func(t *testing.T) {
		ledger := newTestLedger(&recordingStore{})
		loan := mustCreateLoan(t, ledger, financing.Config{Principal: 10000, MonthlyRate: 1.0})

		cancelled, err := ledger.CancelLoan(context.Background(), loan.ID)
		require.NoError(t, err)
		assert.Equal(t, financing.StatusCancelled, cancelled.Status)
	})

	t.Run("cancelling twice is a conflict", func(t *testing.T) {
		ledger := newTestLedger(&recordingStore{})
		loan := mustCreateLoan(t, ledger, financing.Config{Principal: 10000, MonthlyRate: 1.0})

		_, err := ledger.CancelLoan(context.Background(), loan.ID)
		require.NoError(t, err)

		_, err = ledger.CancelLoan(context.Background(), loan.ID)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("a settled loan cannot be cancelled", func(t *testing.T) {
		ledger := newTestLedger(&recordingStore{})
		loan := mustCreateLoan(t, ledger, financing.Config{Principal: 1000, MonthlyRate: 1.0, TermMonths: months(1)})

		_, err := ledger.RecordPayment(context.Background(), loan.ID, 1, nil)
		require.NoError(t, err)

		_, err = ledger.CancelLoan(context.Background(), loan.ID)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})
}

func TestDeleteLoan(t *testing.T) {
	ledger := newTestLedger(&recordingStore{})
	loan := mustCreateLoan(t, ledger, financing.Config{Principal: 10000, MonthlyRate: 1.0})

	require.NoError(t, ledger.DeleteLoan(context.Background(), loan.ID))
	assert.Empty(t, ledger.ListLoans())

	err := ledger.DeleteLoan(context.Background(), loan.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListLoans(t *testing.T) {
	ledger := newTestLedger(&recordingStore{})
	first := mustCreateLoan(t, ledger, financing.Config{Principal: 10000, MonthlyRate: 1.0})
	second := mustCreateLoan(t, ledger, financing.Config{Principal: 20000, MonthlyRate: 1.2})

	_, err := ledger.CancelLoan(context.Background(), first.ID)
	require.NoError(t, err)

	assert.Len(t, ledger.ListLoans(), 2)

	active := ledger.ListActiveLoans()
	require.Len(t, active, 1)
	assert.Equal(t, second.ID, active[0].ID)
}

func TestReadsReturnCopies(t *testing.T) {
	t.Run("mutating a returned loan never touches ledger state", func(t *testing.T) {
		ledger := newTestLedger(&recordingStore{})
		loan := mustCreateLoan(t, ledger, financing.Config{Principal: 10000, MonthlyRate: 1.0})

		got, err := ledger.GetLoan(loan.ID)
		require.NoError(t, err)
		got.Status = financing.StatusCancelled
		got.TotalPaid = 999999
		got.Installments[0].Paid = true

		listed := ledger.ListLoans()
		require.Len(t, listed, 1)
		listed[0].Installments[2].Paid = true

		refreshed, err := ledger.GetLoan(loan.ID)
		require.NoError(t, err)
		assert.Equal(t, financing.StatusActive, refreshed.Status)
		assert.Zero(t, refreshed.TotalPaid)
		assert.False(t, refreshed.Installments[0].Paid)
		assert.False(t, refreshed.Installments[2].Paid)
	})

	t.Run("readers can walk installments while payments land", func(t *testing.T) {
		ledger := newTestLedger(&recordingStore{})
		loan := mustCreateLoan(t, ledger, financing.Config{Principal: 10000, MonthlyRate: 1.0})

		var wg sync.WaitGroup
		wg.Add(2)

		go func() {
			defer wg.Done()
			for number := 1; number <= loan.TermMonths; number++ {
				_, err := ledger.RecordPayment(context.Background(), loan.ID, number, nil)
				assert.NoError(t, err)
			}
		}()

		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				got, err := ledger.GetLoan(loan.ID)
				if !assert.NoError(t, err) {
					return
				}
				paid := 0
				for j := range got.Installments {
					if got.Installments[j].Paid {
						paid++
					}
				}
				assert.LessOrEqual(t, paid, loan.TermMonths)
			}
		}()

		wg.Wait()

		refreshed, err := ledger.GetLoan(loan.ID)
		require.NoError(t, err)
		assert.Equal(t, financing.StatusSettled, refreshed.Status)
	})
}

func TestLoad(t *testing.T) {
	t.Run("hydrates the ledger from the snapshot", func(t *testing.T) {
		seed := newTestLedger(&recordingStore{})
		loan := mustCreateLoan(t, seed, financing.Config{Principal: 10000, MonthlyRate: 1.0})

		store := &recordingStore{loadWith: []*financing.Loan{loan}}
		ledger := newTestLedger(store)
		require.NoError(t, ledger.Load(context.Background()))

		restored, err := ledger.GetLoan(loan.ID)
		require.NoError(t, err)
		assert.Equal(t, loan.Principal, restored.Principal)
	})

	t.Run("a load failure leaves the ledger empty but usable", func(t *testing.T) {
		ledger := newTestLedger(&failingStore{err: errors.New("connection refused")})

		err := ledger.Load(context.Background())
		assert.ErrorIs(t, err, apperrors.ErrPersistence)
		assert.Empty(t, ledger.ListLoans())
	})
}
