package handler

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"financing-engine/internal/api/handler/dto"
	"financing-engine/internal/domain/financing"
	"financing-engine/internal/infrastructure/monitoring"
	"financing-engine/internal/pkg/apperrors"

	"github.com/go-chi/chi/v5"
)

type LoanHandler struct {
	ledger *financing.Ledger
	logger *slog.Logger
}

func NewLoanHandler(l *financing.Ledger, logger *slog.Logger) *LoanHandler {
	return &LoanHandler{
		ledger: l,
		logger: logger.With("component", "LoanHandler"),
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("no request body")
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":{"message":"Internal server error"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondError(w http.ResponseWriter, err error) {
	status, message, field := http.StatusInternalServerError, "An unexpected error occurred.", ""
	var validationError *apperrors.ValidationError

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status, message = http.StatusNotFound, "Resource not found."
	case errors.As(err, &validationError):
		status, message, field = http.StatusBadRequest, validationError.Message, validationError.Field
	case errors.Is(err, apperrors.ErrInvalidArgument), errors.Is(err, apperrors.ErrValidation):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, apperrors.ErrAlreadyPaid), errors.Is(err, apperrors.ErrLoanClosed), errors.Is(err, apperrors.ErrConflict):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, apperrors.ErrPersistence):
		message = err.Error()
	default:
		slog.Default().Error("Unhandled internal error", "error", err)
	}

	resp := dto.ErrorResponse{
		Error: dto.ErrorDetail{
			Message: message,
			Field:   field,
		},
	}
	respondJSON(w, status, resp)
}

// persistenceWarning distinguishes "mutation applied, snapshot save failed"
// from a rejected operation; the former still carries the mutated resource.
func persistenceWarning(err error) (string, bool) {
	if err == nil {
		return "", true
	}
	if errors.Is(err, apperrors.ErrPersistence) {
		return err.Error(), true
	}
	return "", false
}

func installmentNumberFromURL(r *http.Request) (int, error) {
	numStr := chi.URLParam(r, "number")
	num, err := strconv.Atoi(numStr)
	if err != nil || num <= 0 {
		return 0, fmt.Errorf("invalid installment number %q", numStr)
	}
	return num, nil
}

// CreateLoan creates a new loan with a fully precomputed schedule.
//
// @Summary Create a new loan
// @Description Creates a loan from principal, monthly rate (percent), term in months, amortization method (PRICE or SAC) and start date. The full installment schedule is computed upfront.
// @Tags Loans
// @Accept json
// @Produce json
// @Param request body dto.CreateLoanRequest true "Loan creation request payload"
// @Success 201 {object} dto.LoanResponse "Loan successfully created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload or validation error"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans [post]
// @Security BearerAuth
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLoanRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	loan, err := h.ledger.CreateLoan(r.Context(), req.ToConfig())
	warning, applied := persistenceWarning(err)
	if !applied {
		respondError(w, err)
		return
	}

	resp := dto.NewLoanResponse(loan, true)
	resp.Warning = warning
	respondJSON(w, http.StatusCreated, resp)
}

// ListLoans lists loans, optionally filtered to active ones.
//
// @Summary List loans
// @Description Lists all loans. Pass ?status=active to restrict to loans still accepting payments.
// @Tags Loans
// @Produce json
// @Param status query string false "Filter: 'active'"
// @Success 200 {array} dto.LoanResponse "Loans successfully retrieved"
// @Router /loans [get]
// @Security BearerAuth
func (h *LoanHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	var loans []*financing.Loan
	if r.URL.Query().Get("status") == "active" {
		loans = h.ledger.ListActiveLoans()
	} else {
		loans = h.ledger.ListLoans()
	}

	resp := make([]dto.LoanResponse, len(loans))
	for i, loan := range loans {
		resp[i] = dto.NewLoanResponse(loan, false)
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetLoan retrieves a loan including its full installment schedule.
//
// @Summary Retrieve loan details
// @Description Retrieves a loan by ID, including the complete installment schedule.
// @Tags Loans
// @Produce json
// @Param loanID path string true "Loan ID"
// @Success 200 {object} dto.LoanResponse "Loan details successfully retrieved"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Router /loans/{loanID} [get]
// @Security BearerAuth
func (h *LoanHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	loan, err := h.ledger.GetLoan(chi.URLParam(r, "loanID"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewLoanResponse(loan, true))
}

// DeleteLoan removes a loan aggregate entirely.
//
// @Summary Delete a loan
// @Tags Loans
// @Produce json
// @Param loanID path string true "Loan ID"
// @Success 204 "Loan deleted"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Router /loans/{loanID} [delete]
// @Security BearerAuth
func (h *LoanHandler) DeleteLoan(w http.ResponseWriter, r *http.Request) {
	err := h.ledger.DeleteLoan(r.Context(), chi.URLParam(r, "loanID"))
	if _, applied := persistenceWarning(err); !applied {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CancelLoan applies the terminal ACTIVE -> CANCELLED transition.
//
// @Summary Cancel a loan
// @Description Cancels an active loan. Settled and cancelled loans cannot be cancelled again.
// @Tags Loans
// @Produce json
// @Param loanID path string true "Loan ID"
// @Success 200 {object} dto.LoanResponse "Loan cancelled"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 409 {object} dto.ErrorResponse "Loan already settled or cancelled"
// @Router /loans/{loanID}/cancel [post]
// @Security BearerAuth
func (h *LoanHandler) CancelLoan(w http.ResponseWriter, r *http.Request) {
	loan, err := h.ledger.CancelLoan(r.Context(), chi.URLParam(r, "loanID"))
	warning, applied := persistenceWarning(err)
	if !applied {
		respondError(w, err)
		return
	}

	resp := dto.NewLoanResponse(loan, false)
	resp.Warning = warning
	respondJSON(w, http.StatusOK, resp)
}

// RecordPayment marks one installment as paid.
//
// @Summary Record an installment payment
// @Description Marks the given installment as paid, optionally with an overridden paid amount. Paying the same installment twice is rejected with a conflict.
// @Tags Loans
// @Accept json
// @Produce json
// @Param loanID path string true "Loan ID"
// @Param number path int true "Installment number (1-based)"
// @Param request body dto.RecordPaymentRequest false "Optional paid amount override"
// @Success 200 {object} dto.PaymentResponse "Payment recorded"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 404 {object} dto.ErrorResponse "Loan or installment not found"
// @Failure 409 {object} dto.ErrorResponse "Installment already paid"
// @Router /loans/{loanID}/installments/{number}/payments [post]
// @Security BearerAuth
func (h *LoanHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	loanID := chi.URLParam(r, "loanID")
	number, err := installmentNumberFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	var req dto.RecordPaymentRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
			return
		}
		if err := req.Validate(); err != nil {
			respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
			return
		}
	}

	inst, err := h.ledger.RecordPayment(r.Context(), loanID, number, req.Override())
	warning, applied := persistenceWarning(err)
	if !applied {
		monitoring.RecordPayment("failure")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.PaymentResponse{
		LoanID:      loanID,
		Installment: dto.NewInstallmentResponse(inst),
		Warning:     warning,
	})
}

// GetSummary derives the aggregate financial view of a loan.
//
// @Summary Retrieve loan summary
// @Description Returns paid/unpaid counts, percent paid, interest totals, outstanding amount and the next due date.
// @Tags Loans
// @Produce json
// @Param loanID path string true "Loan ID"
// @Success 200 {object} dto.SummaryResponse "Summary successfully retrieved"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Router /loans/{loanID}/summary [get]
// @Security BearerAuth
func (h *LoanHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.ledger.Summarize(chi.URLParam(r, "loanID"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewSummaryResponse(summary))
}

// GetInstallment returns the extract of a single installment.
//
// @Summary Retrieve installment detail
// @Tags Loans
// @Produce json
// @Param loanID path string true "Loan ID"
// @Param number path int true "Installment number (1-based)"
// @Success 200 {object} dto.InstallmentDetailResponse "Installment detail"
// @Failure 404 {object} dto.ErrorResponse "Loan or installment not found"
// @Router /loans/{loanID}/installments/{number} [get]
// @Security BearerAuth
func (h *LoanHandler) GetInstallment(w http.ResponseWriter, r *http.Request) {
	number, err := installmentNumberFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	detail, err := h.ledger.InstallmentDetail(chi.URLParam(r, "loanID"), number)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewInstallmentDetailResponse(detail))
}

// ExportSchedule renders the amortization table as CSV.
//
// @Summary Export amortization schedule as CSV
// @Description Streams the full installment table (number, due date, amount, interest, amortization, remaining balance, status, paid date) as text/csv.
// @Tags Loans
// @Produce text/csv
// @Param loanID path string true "Loan ID"
// @Success 200 {string} string "CSV document"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Router /loans/{loanID}/schedule/export [get]
// @Security BearerAuth
func (h *LoanHandler) ExportSchedule(w http.ResponseWriter, r *http.Request) {
	loan, err := h.ledger.GetLoan(chi.URLParam(r, "loanID"))
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "schedule-"+loan.ID+".csv"))

	cw := csv.NewWriter(w)
	cw.Write([]string{"Loan", loan.Name})
	cw.Write([]string{"Principal", fmt.Sprintf("%.2f", loan.Principal)})
	cw.Write([]string{"MonthlyRate", fmt.Sprintf("%g%%", loan.MonthlyRate)})
	cw.Write([]string{"Method", string(loan.Method)})
	cw.Write([]string{})
	cw.Write([]string{"Number", "DueDate", "Payment", "Interest", "Amortization", "RemainingBalance", "Status", "PaidDate"})

	for i := range loan.Installments {
		inst := &loan.Installments[i]
		status := "Due"
		paidDate := "-"
		if inst.Paid {
			status = "Paid"
			if inst.PaidDate != nil {
				paidDate = inst.PaidDate.Format("2006-01-02")
			}
		}
		cw.Write([]string{
			strconv.Itoa(inst.Number),
			inst.DueDate.Format("2006-01-02"),
			fmt.Sprintf("%.2f", inst.PaymentAmount),
			fmt.Sprintf("%.2f", inst.InterestPortion),
			fmt.Sprintf("%.2f", inst.PrincipalPortion),
			fmt.Sprintf("%.2f", inst.RemainingBalance),
			status,
			paidDate,
		})
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		h.logger.Error("Failed to write CSV export", "loanID", loan.ID, "error", err)
	}
}

// Simulate previews a schedule without creating a loan.
//
// @Summary Simulate a financing schedule
// @Description Runs the calculator only: first/last installment, totals and a sample of the first installments. Nothing is stored.
// @Tags Simulations
// @Accept json
// @Produce json
// @Param request body dto.SimulateRequest true "Simulation parameters"
// @Success 200 {object} dto.SimulationResponse "Simulation result"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload or validation error"
// @Router /simulations [post]
// @Security BearerAuth
func (h *LoanHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	var req dto.SimulateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	sim, err := h.ledger.Simulate(r.Context(), req.ToConfig())
	if err != nil {
		respondError(w, err)
		return
	}

	monitoring.Business.SimulationsTotal.Inc()
	respondJSON(w, http.StatusOK, dto.NewSimulationResponse(sim))
}
