package financing

import (
	"time"

	"financing-engine/internal/pkg/apperrors"
)

type Money = float64

type Method string

const (
	MethodPrice Method = "PRICE"
	MethodSAC   Method = "SAC"
)

type LoanStatus string

const (
	StatusActive    LoanStatus = "ACTIVE"
	StatusSettled   LoanStatus = "SETTLED"
	StatusCancelled LoanStatus = "CANCELLED"
)

const (
	DefaultName       = "Financiamento"
	DefaultTermMonths = 12
)

// Installment is owned exclusively by its Loan. All amortization fields are
// computed once at schedule-build time and never change afterwards; only the
// Paid/PaidDate/PaidAmount fields are set later, exactly once.
type Installment struct {
	Number           int        `json:"number"`
	DueDate          time.Time  `json:"dueDate"`
	PaymentAmount    Money      `json:"paymentAmount"`
	InterestPortion  Money      `json:"interestPortion"`
	PrincipalPortion Money      `json:"principalPortion"`
	RemainingBalance Money      `json:"remainingBalance"`
	Paid             bool       `json:"paid"`
	PaidDate         *time.Time `json:"paidDate,omitempty"`
	PaidAmount       Money      `json:"paidAmount,omitempty"`
}

type Loan struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Principal    Money         `json:"principal"`
	MonthlyRate  float64       `json:"monthlyRate"`
	TermMonths   int           `json:"termMonths"`
	Method       Method        `json:"method"`
	StartDate    time.Time     `json:"startDate"`
	CreatedAt    time.Time     `json:"createdAt"`
	Installments []Installment `json:"installments"`
	Status       LoanStatus    `json:"status"`
	TotalPaid    Money         `json:"totalPaid"`
	NextDueDate  *time.Time    `json:"nextDueDate,omitempty"`
}

// Config enumerates every recognized loan creation field and its default.
// TermMonths is a pointer so an absent term can default while an explicit
// zero is rejected by validation.
type Config struct {
	Name        string
	Principal   Money
	MonthlyRate float64
	TermMonths  *int
	Method      Method
	StartDate   time.Time
}

func (c *Config) applyDefaults(today time.Time) {
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.TermMonths == nil {
		term := DefaultTermMonths
		c.TermMonths = &term
	}
	if c.Method == "" {
		c.Method = MethodPrice
	}
	if c.StartDate.IsZero() {
		c.StartDate = today
	}
}

// validate runs after applyDefaults, so TermMonths is always set here.
func (c Config) validate() error {
	if c.Principal <= 0 {
		return apperrors.NewValidationError("principal", "must be greater than zero")
	}
	if *c.TermMonths <= 0 {
		return apperrors.NewValidationError("termMonths", "must be greater than zero")
	}
	return nil
}

func (l *Loan) installment(number int) *Installment {
	for i := range l.Installments {
		if l.Installments[i].Number == number {
			return &l.Installments[i]
		}
	}
	return nil
}

func (l *Loan) allPaid() bool {
	for i := range l.Installments {
		if !l.Installments[i].Paid {
			return false
		}
	}
	return true
}

// clone returns a deep copy. Read operations hand out clones so callers can
// walk installments without holding the ledger lock while a payment mutates
// the same loan.
func (l *Loan) clone() *Loan {
	out := *l
	out.Installments = make([]Installment, len(l.Installments))
	copy(out.Installments, l.Installments)
	for i := range out.Installments {
		if pd := out.Installments[i].PaidDate; pd != nil {
			d := *pd
			out.Installments[i].PaidDate = &d
		}
	}
	if l.NextDueDate != nil {
		d := *l.NextDueDate
		out.NextDueDate = &d
	}
	return &out
}

// refreshNextDue points NextDueDate at the lowest-numbered unpaid
// installment, or clears it when none remain.
func (l *Loan) refreshNextDue() {
	for i := range l.Installments {
		if !l.Installments[i].Paid {
			due := l.Installments[i].DueDate
			l.NextDueDate = &due
			return
		}
	}
	l.NextDueDate = nil
}
