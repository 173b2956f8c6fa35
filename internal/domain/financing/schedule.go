package financing

import (
	"fmt"
	"math"
	"time"

	"financing-engine/internal/pkg/apperrors"
)

// ComputeSchedule builds the full installment sequence for the given loan
// parameters. It is a pure function: no state, no I/O, deterministic for a
// given input.
//
// Monetary fields are rounded to two decimal places as each installment is
// produced; the running balance is carried unrounded so rounding drift does
// not compound, and the final installment retires whatever balance remains
// so the schedule pays the principal off exactly.
func ComputeSchedule(principal Money, monthlyRatePercent float64, termMonths int, method Method, startDate time.Time) ([]Installment, error) {
	if principal <= 0 {
		return nil, apperrors.NewValidationError("principal", "must be greater than zero")
	}
	if termMonths <= 0 {
		return nil, apperrors.NewValidationError("termMonths", "must be greater than zero")
	}

	rate := monthlyRatePercent / 100

	switch method {
	case MethodSAC:
		return computeSAC(principal, rate, termMonths, startDate), nil
	case MethodPrice, "":
		return computePrice(principal, rate, termMonths, startDate), nil
	default:
		return nil, fmt.Errorf("%w: unknown amortization method %q", apperrors.ErrInvalidArgument, method)
	}
}

// computePrice implements the French (constant installment) table. The
// closed-form payment divides by (1+r)^n - 1, which is undefined at r = 0,
// so the interest-free case falls back to a straight principal split.
func computePrice(principal Money, rate float64, termMonths int, startDate time.Time) []Installment {
	var payment float64
	if rate == 0 {
		payment = principal / float64(termMonths)
	} else {
		factor := math.Pow(1+rate, float64(termMonths))
		payment = principal * rate * factor / (factor - 1)
	}

	schedule := make([]Installment, 0, termMonths)
	balance := principal

	for i := 1; i <= termMonths; i++ {
		interest := balance * rate
		amortization := payment - interest
		if i == termMonths {
			// absorb accumulated rounding drift
			amortization = balance
		}
		balance -= amortization

		schedule = append(schedule, newInstallment(i, startDate, amortization+interest, interest, amortization, balance))
	}

	return schedule
}

// computeSAC amortizes a constant share of the principal each period, so the
// installment shrinks as the interest portion falls.
func computeSAC(principal Money, rate float64, termMonths int, startDate time.Time) []Installment {
	amortization := principal / float64(termMonths)

	schedule := make([]Installment, 0, termMonths)
	balance := principal

	for i := 1; i <= termMonths; i++ {
		interest := balance * rate
		amort := amortization
		if i == termMonths {
			amort = balance
		}
		balance -= amort

		schedule = append(schedule, newInstallment(i, startDate, amort+interest, interest, amort, balance))
	}

	return schedule
}

func newInstallment(number int, startDate time.Time, payment, interest, amortization, balance float64) Installment {
	return Installment{
		Number:           number,
		DueDate:          dueDate(startDate, number),
		PaymentAmount:    roundTo(payment, 2),
		InterestPortion:  roundTo(interest, 2),
		PrincipalPortion: roundTo(amortization, 2),
		RemainingBalance: roundTo(math.Max(0, balance), 2),
	}
}

// dueDate adds whole calendar months, with natural day-of-month rollover
// (Jan 31 + 1 month lands in early March, same as native date arithmetic).
func dueDate(startDate time.Time, number int) time.Time {
	return startDate.AddDate(0, number, 0)
}

func roundTo(n float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(n*pow) / pow
}
