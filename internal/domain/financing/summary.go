package financing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"financing-engine/internal/pkg/apperrors"
)

// Summary is a read-only aggregate view over one loan.
//
// TotalScheduled and OutstandingTotal are deliberately distinct:
// TotalScheduled is the cost of the whole loan (principal plus every
// interest portion), OutstandingTotal is what is still owed on unpaid
// installments right now.
type Summary struct {
	LoanID           string     `json:"loanId"`
	Name             string     `json:"name"`
	Principal        Money      `json:"principal"`
	Method           Method     `json:"method"`
	Status           LoanStatus `json:"status"`
	TotalScheduled   Money      `json:"totalScheduled"`
	OutstandingTotal Money      `json:"outstandingTotal"`
	TotalPaid        Money      `json:"totalPaid"`
	PaidCount        int        `json:"paidCount"`
	UnpaidCount      int        `json:"unpaidCount"`
	PercentPaid      float64    `json:"percentPaid"`
	TotalInterest    Money      `json:"totalInterest"`
	InterestPaid     Money      `json:"interestPaid"`
	InterestDue      Money      `json:"interestDue"`
	NextDueDate      *time.Time `json:"nextDueDate,omitempty"`
	GeneratedAt      time.Time  `json:"generatedAt"`
}

// InstallmentDetail is the per-installment extract consumed by reporting.
type InstallmentDetail struct {
	LoanID   string `json:"loanId"`
	LoanName string `json:"loanName"`
	Installment
	StatusLabel string `json:"statusLabel"`
}

const (
	LabelPaid = "Paid"
	LabelDue  = "Due"
)

// Simulation is a what-if preview; nothing is stored in the ledger.
type Simulation struct {
	Method           Method        `json:"method"`
	Principal        Money         `json:"principal"`
	MonthlyRate      float64       `json:"monthlyRate"`
	TermMonths       int           `json:"termMonths"`
	FirstInstallment Money         `json:"firstInstallment"`
	LastInstallment  Money         `json:"lastInstallment"`
	TotalAmount      Money         `json:"totalAmount"`
	TotalInterest    Money         `json:"totalInterest"`
	Sample           []Installment `json:"sample"`
}

const simulationSampleSize = 3

func (l *Ledger) Summarize(loanID string) (*Summary, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	loan := l.find(loanID)
	if loan == nil {
		return nil, fmt.Errorf("%w: loan %s not found", apperrors.ErrNotFound, loanID)
	}

	s := &Summary{
		LoanID:      loan.ID,
		Name:        loan.Name,
		Principal:   loan.Principal,
		Method:      loan.Method,
		Status:      loan.Status,
		TotalPaid:   loan.TotalPaid,
		NextDueDate: loan.NextDueDate,
		GeneratedAt: l.now(),
	}

	for i := range loan.Installments {
		inst := &loan.Installments[i]
		s.TotalInterest += inst.InterestPortion
		if inst.Paid {
			s.PaidCount++
			s.InterestPaid += inst.InterestPortion
		} else {
			s.UnpaidCount++
			s.InterestDue += inst.InterestPortion
			s.OutstandingTotal += inst.PaymentAmount
		}
	}

	s.TotalInterest = roundTo(s.TotalInterest, 2)
	s.InterestPaid = roundTo(s.InterestPaid, 2)
	s.InterestDue = roundTo(s.InterestDue, 2)
	s.OutstandingTotal = roundTo(s.OutstandingTotal, 2)
	s.TotalScheduled = roundTo(loan.Principal+s.TotalInterest, 2)
	s.PercentPaid = roundTo(float64(s.PaidCount)/float64(loan.TermMonths)*100, 2)

	return s, nil
}

func (l *Ledger) InstallmentDetail(loanID string, installmentNumber int) (*InstallmentDetail, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	loan := l.find(loanID)
	if loan == nil {
		return nil, fmt.Errorf("%w: loan %s not found", apperrors.ErrNotFound, loanID)
	}

	inst := loan.installment(installmentNumber)
	if inst == nil {
		return nil, fmt.Errorf("%w: installment %d not found on loan %s", apperrors.ErrNotFound, installmentNumber, loanID)
	}

	label := LabelDue
	if inst.Paid {
		label = LabelPaid
	}

	return &InstallmentDetail{
		LoanID:      loan.ID,
		LoanName:    loan.Name,
		Installment: *inst,
		StatusLabel: label,
	}, nil
}

// Simulate runs the calculator without touching the ledger or the store.
// Results are memoized in the simulation cache when one is configured.
func (l *Ledger) Simulate(ctx context.Context, cfg Config) (*Simulation, error) {
	cfg.applyDefaults(l.today())
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cacheKey := simulationKey(cfg)
	if l.cache != nil {
		if raw, ok := l.cache.Get(ctx, cacheKey); ok {
			var cached Simulation
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				l.logger.DebugContext(ctx, "Simulation cache hit", "key", cacheKey)
				return &cached, nil
			}
			l.logger.WarnContext(ctx, "Discarding undecodable cached simulation", "key", cacheKey)
		}
	}

	schedule, err := ComputeSchedule(cfg.Principal, cfg.MonthlyRate, *cfg.TermMonths, cfg.Method, cfg.StartDate)
	if err != nil {
		return nil, err
	}

	var totalAmount, totalInterest Money
	for i := range schedule {
		totalAmount += schedule[i].PaymentAmount
		totalInterest += schedule[i].InterestPortion
	}

	sample := schedule
	if len(sample) > simulationSampleSize {
		sample = sample[:simulationSampleSize]
	}

	sim := &Simulation{
		Method:           cfg.Method,
		Principal:        cfg.Principal,
		MonthlyRate:      cfg.MonthlyRate,
		TermMonths:       *cfg.TermMonths,
		FirstInstallment: schedule[0].PaymentAmount,
		LastInstallment:  schedule[len(schedule)-1].PaymentAmount,
		TotalAmount:      roundTo(totalAmount, 2),
		TotalInterest:    roundTo(totalInterest, 2),
		Sample:           sample,
	}

	if l.cache != nil {
		if raw, err := json.Marshal(sim); err == nil {
			if err := l.cache.Set(ctx, cacheKey, string(raw)); err != nil {
				l.logger.WarnContext(ctx, "Failed to cache simulation", "key", cacheKey, "error", err)
			}
		}
	}

	return sim, nil
}

func simulationKey(cfg Config) string {
	return fmt.Sprintf("simulation:%s:%.2f:%.6f:%d:%s",
		cfg.Method, cfg.Principal, cfg.MonthlyRate, *cfg.TermMonths, cfg.StartDate.Format("2006-01-02"))
}
