package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ValidationMode selects which components a validation run executes
type ValidationMode string

const (
	ModeCreation   ValidationMode = "creation"
	ModeProcessing ValidationMode = "processing"
	ModeCompliance ValidationMode = "compliance"
)

// Severity classifies non-blocking findings
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue is a single validation finding.
// Errors leave Severity empty; warnings carry SeverityWarning or SeverityInfo.
type Issue struct {
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Field    string   `json:"field,omitempty"`
	Severity Severity `json:"severity,omitempty"`
}

// Readiness gates reported in ProcessingReadiness.Issues
const (
	ReadinessInvalidStatus   = "invalid_status"
	ReadinessMissingApproval = "missing_approval"
	ReadinessNoPayouts       = "no_payouts"
)

// ProcessingReadiness tells whether the batch may advance to disbursement
type ProcessingReadiness struct {
	Ready  bool     `json:"ready"`
	Issues []string `json:"issues"`
}

// BatchSummary is the derived analysis attached to every result
type BatchSummary struct {
	TotalPayouts        int                 `json:"total_payouts"`
	PayeeCount          int                 `json:"payee_count"`
	TotalAmount         decimal.Decimal     `json:"total_amount"`
	Currency            string              `json:"currency"`
	RiskScore           int                 `json:"risk_score"`
	ComplianceScore     int                 `json:"compliance_score"`
	ProcessingReadiness ProcessingReadiness `json:"processing_readiness"`
}

// ValidationResult is the engine's verdict for one batch
type ValidationResult struct {
	ID          string         `json:"id"`
	BatchID     string         `json:"batch_id,omitempty"`
	Mode        ValidationMode `json:"mode"`
	Valid       bool           `json:"valid"`
	Errors      []Issue        `json:"errors"`
	Warnings    []Issue        `json:"warnings"`
	Summary     *BatchSummary  `json:"summary,omitempty"`
	ValidatedAt time.Time      `json:"validated_at"`
}

// HasError reports whether an error with the given code was recorded
func (r *ValidationResult) HasError(code string) bool {
	return containsCode(r.Errors, code)
}

// HasWarning reports whether a warning or notice with the given code was recorded
func (r *ValidationResult) HasWarning(code string) bool {
	return containsCode(r.Warnings, code)
}

// Notices returns only the informational findings
func (r *ValidationResult) Notices() []Issue {
	return filterSeverity(r.Warnings, SeverityInfo)
}

// WarningsOnly returns the findings with warning severity
func (r *ValidationResult) WarningsOnly() []Issue {
	return filterSeverity(r.Warnings, SeverityWarning)
}

// AddError appends a blocking error and marks the result invalid.
// Used by callers that run collaborator checks after the core validation.
func (r *ValidationResult) AddError(code, message, field string) {
	r.Errors = append(r.Errors, Issue{Code: code, Message: message, Field: field})
	r.Valid = false
	if r.Summary != nil {
		r.Summary.ProcessingReadiness.Ready = false
	}
}

// AddWarning appends a non-blocking finding
func (r *ValidationResult) AddWarning(code, message, field string, severity Severity) {
	r.Warnings = append(r.Warnings, Issue{Code: code, Message: message, Field: field, Severity: severity})
}

func containsCode(issues []Issue, code string) bool {
	for _, issue := range issues {
		if issue.Code == code {
			return true
		}
	}
	return false
}

func filterSeverity(issues []Issue, severity Severity) []Issue {
	out := make([]Issue, 0, len(issues))
	for _, issue := range issues {
		if issue.Severity == severity {
			out = append(out, issue)
		}
	}
	return out
}
