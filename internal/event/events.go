package event

import "time"

type LoanCreatedEvent struct {
	LoanID     string    `json:"loanId"`
	Name       string    `json:"name"`
	Principal  float64   `json:"principal"`
	TermMonths int       `json:"termMonths"`
	Method     string    `json:"method"`
	Timestamp  time.Time `json:"timestamp"`
}

type InstallmentPaidEvent struct {
	LoanID            string    `json:"loanId"`
	InstallmentNumber int       `json:"installmentNumber"`
	PaidAmount        float64   `json:"paidAmount"`
	PaidDate          time.Time `json:"paidDate"`
	Timestamp         time.Time `json:"timestamp"`
}

type LoanSettledEvent struct {
	LoanID    string    `json:"loanId"`
	TotalPaid float64   `json:"totalPaid"`
	Timestamp time.Time `json:"timestamp"`
}

type LoanCancelledEvent struct {
	LoanID    string    `json:"loanId"`
	Timestamp time.Time `json:"timestamp"`
}
