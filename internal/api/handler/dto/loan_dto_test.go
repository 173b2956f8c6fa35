package dto_test

import (
	"testing"
	"time"

	"financing-engine/internal/api/handler/dto"
	"financing-engine/internal/domain/financing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func months(n int) *int {
	return &n
}

func TestCreateLoanRequestValidate(t *testing.T) {
	valid := dto.CreateLoanRequest{
		Name:        "Casa",
		Principal:   10000,
		MonthlyRate: 1.0,
		TermMonths:  months(12),
		Method:      "price",
		StartDate:   "2026-01-15",
	}

	t.Run("accepts a complete request", func(t *testing.T) {
		assert.NoError(t, valid.Validate())
	})

	t.Run("accepts omitted optional fields", func(t *testing.T) {
		req := dto.CreateLoanRequest{Principal: 10000}
		assert.NoError(t, req.Validate())
	})

	t.Run("rejects non-positive principal", func(t *testing.T) {
		req := valid
		req.Principal = 0
		assert.Error(t, req.Validate())
	})

	t.Run("rejects negative term", func(t *testing.T) {
		req := valid
		req.TermMonths = months(-1)
		assert.Error(t, req.Validate())
	})

	t.Run("rejects an explicit zero term", func(t *testing.T) {
		req := valid
		req.TermMonths = months(0)
		assert.Error(t, req.Validate())
	})

	t.Run("an omitted term is left for the engine default", func(t *testing.T) {
		req := valid
		req.TermMonths = nil
		assert.NoError(t, req.Validate())
		assert.Nil(t, req.ToConfig().TermMonths)
	})

	t.Run("rejects unknown method", func(t *testing.T) {
		req := valid
		req.Method = "BALLOON"
		assert.Error(t, req.Validate())
	})

	t.Run("rejects malformed start date", func(t *testing.T) {
		req := valid
		req.StartDate = "15/01/2026"
		assert.Error(t, req.Validate())
	})
}

func TestCreateLoanRequestToConfig(t *testing.T) {
	req := dto.CreateLoanRequest{
		Name:        "Casa",
		Principal:   10000,
		MonthlyRate: 1.0,
		TermMonths:  months(12),
		Method:      "sac",
		StartDate:   "2026-01-15",
	}

	cfg := req.ToConfig()
	assert.Equal(t, financing.MethodSAC, cfg.Method, "method is upper-cased")
	assert.Equal(t, time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC), cfg.StartDate)

	empty := dto.CreateLoanRequest{Principal: 10000}
	cfg = empty.ToConfig()
	assert.True(t, cfg.StartDate.IsZero(), "omitted date stays zero so defaults apply downstream")
	assert.Equal(t, financing.Method(""), cfg.Method)
}

func TestRecordPaymentRequest(t *testing.T) {
	t.Run("empty body means no override", func(t *testing.T) {
		req := dto.RecordPaymentRequest{}
		assert.NoError(t, req.Validate())
		assert.Nil(t, req.Override())
	})

	t.Run("decimal string becomes an override", func(t *testing.T) {
		req := dto.RecordPaymentRequest{PaidAmount: "900.50"}
		assert.NoError(t, req.Validate())
		override := req.Override()
		require.NotNil(t, override)
		assert.Equal(t, 900.50, *override)
	})

	t.Run("rejects non-numeric amounts", func(t *testing.T) {
		req := dto.RecordPaymentRequest{PaidAmount: "lots"}
		assert.Error(t, req.Validate())
	})
}

func TestNewLoanResponse(t *testing.T) {
	start := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)
	schedule, err := financing.ComputeSchedule(10000, 1.0, 12, financing.MethodPrice, start)
	require.NoError(t, err)

	loan := &financing.Loan{
		ID:           "loan-1",
		Name:         "Financiamento",
		Principal:    10000,
		MonthlyRate:  1.0,
		TermMonths:   12,
		Method:       financing.MethodPrice,
		StartDate:    start,
		Installments: schedule,
		Status:       financing.StatusActive,
		TotalPaid:    888.49,
	}

	t.Run("formats money as fixed two-decimal strings", func(t *testing.T) {
		resp := dto.NewLoanResponse(loan, true)
		assert.Equal(t, "10000.00", resp.Principal)
		assert.Equal(t, "888.49", resp.TotalPaid)
		assert.Equal(t, "2026-01-15", resp.StartDate)
		require.Len(t, resp.Installments, 12)
		assert.Equal(t, "888.49", resp.Installments[0].PaymentAmount)
		assert.Equal(t, "100.00", resp.Installments[0].InterestPortion)
	})

	t.Run("omits the schedule for list views", func(t *testing.T) {
		resp := dto.NewLoanResponse(loan, false)
		assert.Empty(t, resp.Installments)
	})
}
