package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type BusinessMetrics struct {
	LoansCreatedTotal     *prometheus.CounterVec
	PaymentsRecordedTotal *prometheus.CounterVec
	OverdueInstallments   prometheus.Gauge
	ActiveLoans           prometheus.Gauge
	SimulationsTotal      prometheus.Counter
}

var Business = BusinessMetrics{
	LoansCreatedTotal: promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "financing_engine_loans_created_total",
			Help: "Total number of loans created, by amortization method.",
		},
		[]string{"method"},
	),
	PaymentsRecordedTotal: promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "financing_engine_payments_recorded_total",
			Help: "Total number of installment payment attempts, by outcome.",
		},
		[]string{"status"},
	),
	OverdueInstallments: promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "financing_engine_overdue_installments",
			Help: "Unpaid installments past their due date across active loans.",
		},
	),
	ActiveLoans: promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "financing_engine_active_loans",
			Help: "Loans currently in ACTIVE status.",
		},
	),
	SimulationsTotal: promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "financing_engine_simulations_total",
			Help: "Total number of schedule simulations served.",
		},
	),
}

func RecordLoanCreated(method string) {
	Business.LoansCreatedTotal.WithLabelValues(method).Inc()
}

func RecordPayment(status string) {
	Business.PaymentsRecordedTotal.WithLabelValues(status).Inc()
}
