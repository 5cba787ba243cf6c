package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Batch validation metrics
	batchValidationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payout_batch_validations_total",
		Help: "Total number of payout batch validations",
	}, []string{
		"mode",    // creation, processing, compliance
		"outcome", // valid, invalid, fault
	})

	batchValidationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "payout_batch_validation_duration_seconds",
		Help: "Time to validate a payout batch",
		// Validation is in-memory; large batches still finish well under a second
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{
		"mode",
	})

	batchLineItems = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payout_batch_line_items",
		Help:    "Distribution of line item counts per validated batch",
		Buckets: []float64{1, 10, 50, 100, 250, 500, 1000, 5000},
	}, []string{
		"mode",
	})

	validationIssuesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payout_validation_issues_total",
		Help: "Total findings raised by payout validation",
	}, []string{
		"code",     // issue code, e.g. net_total_mismatch
		"severity", // error, warning, info
	})

	batchRiskScore = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payout_batch_risk_score",
		Help:    "Distribution of batch risk scores",
		Buckets: []float64{0, 10, 25, 50, 75, 90, 100},
	}, []string{
		"mode",
	})

	batchComplianceScore = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payout_batch_compliance_score",
		Help:    "Distribution of batch compliance scores",
		Buckets: []float64{0, 25, 50, 65, 80, 90, 100},
	}, []string{
		"mode",
	})

	// Collaborator metrics
	payeeLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payee_directory_lookups_total",
		Help: "Total payee directory lookups",
	}, []string{
		"result", // found, not_found, error
	})

	reportArchivesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "validation_report_archives_total",
		Help: "Total validation report archive attempts",
	}, []string{
		"status", // saved, failed
	})
)

// BatchValidation describes one finished validation run for metrics purposes
type BatchValidation struct {
	Mode     string
	Outcome  string
	Duration float64

	// Scored is false for runs rejected before a summary was built;
	// the line item and score histograms skip those runs.
	Scored          bool
	LineItems       int
	RiskScore       int
	ComplianceScore int
}

// RecordBatchValidation records a finished validation run.
// This is the primary metric for validation throughput and rejection rates.
func RecordBatchValidation(v BatchValidation) {
	batchValidationsTotal.WithLabelValues(v.Mode, v.Outcome).Inc()
	batchValidationDuration.WithLabelValues(v.Mode).Observe(v.Duration)
	if v.Scored {
		batchLineItems.WithLabelValues(v.Mode).Observe(float64(v.LineItems))
		batchRiskScore.WithLabelValues(v.Mode).Observe(float64(v.RiskScore))
		batchComplianceScore.WithLabelValues(v.Mode).Observe(float64(v.ComplianceScore))
	}

	// Rejection rate is derived in PromQL:
	// sum(rate(payout_batch_validations_total{outcome="invalid"}[5m])) by (mode)
	// /
	// sum(rate(payout_batch_validations_total[5m])) by (mode)
}

// RecordValidationIssue records a single finding by code and severity
func RecordValidationIssue(code, severity string) {
	validationIssuesTotal.WithLabelValues(code, severity).Inc()
}

// RecordPayeeLookup records a payee directory lookup result
func RecordPayeeLookup(result string) {
	payeeLookupsTotal.WithLabelValues(result).Inc()
}

// RecordReportArchive records a validation report archive attempt
func RecordReportArchive(status string) {
	reportArchivesTotal.WithLabelValues(status).Inc()
}
