package validation

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kevin07696/payout-validation/internal/domain"
)

// accumulator collects findings for exactly one validation run.
// It is never shared between runs.
type accumulator struct {
	errors   []domain.Issue
	warnings []domain.Issue
}

func newAccumulator() *accumulator {
	return &accumulator{
		errors:   []domain.Issue{},
		warnings: []domain.Issue{},
	}
}

func (a *accumulator) addError(code, field, format string, args ...interface{}) {
	a.errors = append(a.errors, domain.Issue{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Field:   field,
	})
}

func (a *accumulator) addWarning(code, field, format string, args ...interface{}) {
	a.warnings = append(a.warnings, domain.Issue{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Field:    field,
		Severity: domain.SeverityWarning,
	})
}

func (a *accumulator) addInfo(code, field, format string, args ...interface{}) {
	a.warnings = append(a.warnings, domain.Issue{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Field:    field,
		Severity: domain.SeverityInfo,
	})
}

func (a *accumulator) hasError(code string) bool {
	for _, issue := range a.errors {
		if issue.Code == code {
			return true
		}
	}
	return false
}

// promoteWarnings turns every warning-severity finding into an error.
// Informational notices are left alone.
func (a *accumulator) promoteWarnings() {
	kept := a.warnings[:0]
	for _, issue := range a.warnings {
		if issue.Severity == domain.SeverityWarning {
			a.errors = append(a.errors, domain.Issue{
				Code:    issue.Code,
				Message: issue.Message,
				Field:   issue.Field,
			})
			continue
		}
		kept = append(kept, issue)
	}
	a.warnings = kept
}

func (a *accumulator) result(mode domain.ValidationMode, batch *domain.PayoutBatch, summary *domain.BatchSummary, at time.Time) *domain.ValidationResult {
	result := &domain.ValidationResult{
		ID:          uuid.New().String(),
		Mode:        mode,
		Valid:       len(a.errors) == 0,
		Errors:      a.errors,
		Warnings:    a.warnings,
		Summary:     summary,
		ValidatedAt: at,
	}
	if batch != nil {
		result.BatchID = batch.ID
	}
	return result
}
