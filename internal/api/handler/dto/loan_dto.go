package dto

import (
	"fmt"
	"strings"
	"time"

	"financing-engine/internal/domain/financing"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// CreateLoanRequest carries the loan configuration. TermMonths is a pointer
// so an omitted term falls back to the engine default while an explicit zero
// is rejected here.
type CreateLoanRequest struct {
	Name        string  `json:"name"`
	Principal   float64 `json:"principal"`
	MonthlyRate float64 `json:"monthlyRate"`
	TermMonths  *int    `json:"termMonths"`
	Method      string  `json:"method"`
	StartDate   string  `json:"startDate"`
}

func (r *CreateLoanRequest) Validate() error {
	if r.Principal <= 0 {
		return fmt.Errorf("principal must be greater than zero")
	}
	if r.TermMonths != nil && *r.TermMonths <= 0 {
		return fmt.Errorf("termMonths must be greater than zero")
	}
	switch strings.ToUpper(r.Method) {
	case "", string(financing.MethodPrice), string(financing.MethodSAC):
	default:
		return fmt.Errorf("method must be PRICE or SAC")
	}
	if r.StartDate != "" {
		if _, err := time.Parse(dateLayout, r.StartDate); err != nil {
			return fmt.Errorf("invalid startDate format (use YYYY-MM-DD): %w", err)
		}
	}
	return nil
}

// ToConfig maps the request onto the engine configuration; unset fields keep
// their zero value so the ledger applies its own defaults.
func (r *CreateLoanRequest) ToConfig() financing.Config {
	cfg := financing.Config{
		Name:        r.Name,
		Principal:   r.Principal,
		MonthlyRate: r.MonthlyRate,
		TermMonths:  r.TermMonths,
		Method:      financing.Method(strings.ToUpper(r.Method)),
	}
	if r.StartDate != "" {
		cfg.StartDate, _ = time.Parse(dateLayout, r.StartDate)
	}
	return cfg
}

type SimulateRequest = CreateLoanRequest

type RecordPaymentRequest struct {
	PaidAmount string `json:"paidAmount,omitempty"`
}

func (r *RecordPaymentRequest) Validate() error {
	if r.PaidAmount == "" {
		return nil
	}
	if _, err := decimal.NewFromString(r.PaidAmount); err != nil {
		return fmt.Errorf("invalid paidAmount: %w", err)
	}
	return nil
}

// Override returns the optional paid-amount override, nil when the scheduled
// installment value should be recorded.
func (r *RecordPaymentRequest) Override() *float64 {
	if r.PaidAmount == "" {
		return nil
	}
	d, err := decimal.NewFromString(r.PaidAmount)
	if err != nil {
		return nil
	}
	f, _ := d.Float64()
	return &f
}

type LoanResponse struct {
	ID           string                `json:"id"`
	Name         string                `json:"name"`
	Principal    string                `json:"principal"`
	MonthlyRate  string                `json:"monthlyRate"`
	TermMonths   int                   `json:"termMonths"`
	Method       string                `json:"method"`
	StartDate    string                `json:"startDate"`
	CreatedAt    time.Time             `json:"createdAt"`
	Status       string                `json:"status"`
	TotalPaid    string                `json:"totalPaid"`
	NextDueDate  *string               `json:"nextDueDate,omitempty"`
	Installments []InstallmentResponse `json:"installments,omitempty"`
	Warning      string                `json:"warning,omitempty"`
}

type InstallmentResponse struct {
	Number           int     `json:"number"`
	DueDate          string  `json:"dueDate"`
	PaymentAmount    string  `json:"paymentAmount"`
	InterestPortion  string  `json:"interestPortion"`
	PrincipalPortion string  `json:"principalPortion"`
	RemainingBalance string  `json:"remainingBalance"`
	Paid             bool    `json:"paid"`
	PaidDate         *string `json:"paidDate,omitempty"`
	PaidAmount       *string `json:"paidAmount,omitempty"`
}

type PaymentResponse struct {
	LoanID      string              `json:"loanId"`
	Installment InstallmentResponse `json:"installment"`
	Warning     string              `json:"warning,omitempty"`
}

type SummaryResponse struct {
	LoanID           string  `json:"loanId"`
	Name             string  `json:"name"`
	Principal        string  `json:"principal"`
	Method           string  `json:"method"`
	Status           string  `json:"status"`
	TotalScheduled   string  `json:"totalScheduled"`
	OutstandingTotal string  `json:"outstandingTotal"`
	TotalPaid        string  `json:"totalPaid"`
	PaidCount        int     `json:"paidCount"`
	UnpaidCount      int     `json:"unpaidCount"`
	PercentPaid      float64 `json:"percentPaid"`
	TotalInterest    string  `json:"totalInterest"`
	InterestPaid     string  `json:"interestPaid"`
	InterestDue      string  `json:"interestDue"`
	NextDueDate      *string `json:"nextDueDate,omitempty"`
	GeneratedAt      string  `json:"generatedAt"`
}

type InstallmentDetailResponse struct {
	LoanID      string              `json:"loanId"`
	LoanName    string              `json:"loanName"`
	Installment InstallmentResponse `json:"installment"`
	StatusLabel string              `json:"statusLabel"`
}

type SimulationResponse struct {
	Method           string                `json:"method"`
	Principal        string                `json:"principal"`
	MonthlyRate      string                `json:"monthlyRate"`
	TermMonths       int                   `json:"termMonths"`
	FirstInstallment string                `json:"firstInstallment"`
	LastInstallment  string                `json:"lastInstallment"`
	TotalAmount      string                `json:"totalAmount"`
	TotalInterest    string                `json:"totalInterest"`
	Sample           []InstallmentResponse `json:"sample"`
}

type ErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type TokenRequest struct {
	Username string `json:"username"`
}

func formatMoney(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func NewLoanResponse(loan *financing.Loan, includeSchedule bool) LoanResponse {
	resp := LoanResponse{
		ID:          loan.ID,
		Name:        loan.Name,
		Principal:   formatMoney(loan.Principal),
		MonthlyRate: decimal.NewFromFloat(loan.MonthlyRate).String(),
		TermMonths:  loan.TermMonths,
		Method:      string(loan.Method),
		StartDate:   formatDate(loan.StartDate),
		CreatedAt:   loan.CreatedAt,
		Status:      string(loan.Status),
		TotalPaid:   formatMoney(loan.TotalPaid),
		NextDueDate: formatDatePtr(loan.NextDueDate),
	}

	if includeSchedule {
		resp.Installments = make([]InstallmentResponse, len(loan.Installments))
		for i := range loan.Installments {
			resp.Installments[i] = NewInstallmentResponse(&loan.Installments[i])
		}
	}

	return resp
}

func NewInstallmentResponse(inst *financing.Installment) InstallmentResponse {
	var paidAmount *string
	if inst.PaidAmount != 0 {
		s := formatMoney(inst.PaidAmount)
		paidAmount = &s
	}

	return InstallmentResponse{
		Number:           inst.Number,
		DueDate:          formatDate(inst.DueDate),
		PaymentAmount:    formatMoney(inst.PaymentAmount),
		InterestPortion:  formatMoney(inst.InterestPortion),
		PrincipalPortion: formatMoney(inst.PrincipalPortion),
		RemainingBalance: formatMoney(inst.RemainingBalance),
		Paid:             inst.Paid,
		PaidDate:         formatDatePtr(inst.PaidDate),
		PaidAmount:       paidAmount,
	}
}

func NewSummaryResponse(s *financing.Summary) SummaryResponse {
	return SummaryResponse{
		LoanID:           s.LoanID,
		Name:             s.Name,
		Principal:        formatMoney(s.Principal),
		Method:           string(s.Method),
		Status:           string(s.Status),
		TotalScheduled:   formatMoney(s.TotalScheduled),
		OutstandingTotal: formatMoney(s.OutstandingTotal),
		TotalPaid:        formatMoney(s.TotalPaid),
		PaidCount:        s.PaidCount,
		UnpaidCount:      s.UnpaidCount,
		PercentPaid:      s.PercentPaid,
		TotalInterest:    formatMoney(s.TotalInterest),
		InterestPaid:     formatMoney(s.InterestPaid),
		InterestDue:      formatMoney(s.InterestDue),
		NextDueDate:      formatDatePtr(s.NextDueDate),
		GeneratedAt:      s.GeneratedAt.Format(time.RFC3339),
	}
}

func NewInstallmentDetailResponse(d *financing.InstallmentDetail) InstallmentDetailResponse {
	return InstallmentDetailResponse{
		LoanID:      d.LoanID,
		LoanName:    d.LoanName,
		Installment: NewInstallmentResponse(&d.Installment),
		StatusLabel: d.StatusLabel,
	}
}

func NewSimulationResponse(sim *financing.Simulation) SimulationResponse {
	sample := make([]InstallmentResponse, len(sim.Sample))
	for i := range sim.Sample {
		sample[i] = NewInstallmentResponse(&sim.Sample[i])
	}

	return SimulationResponse{
		Method:           string(sim.Method),
		Principal:        formatMoney(sim.Principal),
		MonthlyRate:      decimal.NewFromFloat(sim.MonthlyRate).String(),
		TermMonths:       sim.TermMonths,
		FirstInstallment: formatMoney(sim.FirstInstallment),
		LastInstallment:  formatMoney(sim.LastInstallment),
		TotalAmount:      formatMoney(sim.TotalAmount),
		TotalInterest:    formatMoney(sim.TotalInterest),
		Sample:           sample,
	}
}
