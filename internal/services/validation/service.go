package validation

import (
	"context"
	"fmt"
	"time"

	"github.com/kevin07696/payout-validation/internal/domain"
	"github.com/kevin07696/payout-validation/internal/domain/ports"
	"github.com/kevin07696/payout-validation/pkg/observability"
	"github.com/kevin07696/payout-validation/pkg/timeutil"
)

// Service implements ports.PayoutValidationService.
// It is immutable after construction and safe for concurrent use; every call
// works on its own accumulator.
type Service struct {
	policy domain.ValidationPolicy
	logger ports.Logger
	now    func() time.Time
}

var _ ports.PayoutValidationService = (*Service)(nil)

// Option configures a Service
type Option func(*Service)

// WithClock overrides the clock used for date-relative checks
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new payout validation service
func NewService(policy domain.ValidationPolicy, logger ports.Logger, opts ...Option) (*Service, error) {
	if err := policy.Validate(); err != nil {
		return nil, domain.WrapError(domain.ErrorCodePolicyInvalid, "invalid validation policy", err)
	}
	if logger == nil {
		logger = ports.NopLogger{}
	}

	s := &Service{
		policy: policy,
		logger: logger,
		now:    timeutil.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Policy returns the thresholds the service applies
func (s *Service) Policy() domain.ValidationPolicy {
	return s.policy
}

// ValidateForCreation runs structural, payee, reconciliation, audit-trail and
// business-rule checks on a newly created batch.
func (s *Service) ValidateForCreation(ctx context.Context, batch *domain.PayoutBatch, opts ports.CreationOptions) *domain.ValidationResult {
	return s.run(ctx, domain.ModeCreation, batch, func(rc *runContext) {
		validateStructure(rc)
		if opts.ValidatePayees {
			checkPayees(rc)
		}
		if opts.ValidateCalculations {
			reconcile(rc)
		}
		checkBasicCompliance(rc)
		checkBusinessRules(rc)

		if opts.Strict {
			rc.acc.promoteWarnings()
		}
	})
}

// ValidateForProcessing checks that a batch may be disbursed
func (s *Service) ValidateForProcessing(ctx context.Context, batch *domain.PayoutBatch, opts ports.ProcessingOptions) *domain.ValidationResult {
	return s.run(ctx, domain.ModeProcessing, batch, func(rc *runContext) {
		checkProcessingReadiness(rc)
		if opts.ValidatePaymentMethods {
			checkPaymentMethods(rc)
		}
		if opts.ValidateThresholds {
			checkThresholds(rc)
		}
		checkRisk(rc, assessRisk(rc.batch, rc.policy))
	})
}

// ValidateForCompliance evaluates tax, regulatory, AML and documentation rules
// for the given jurisdictions.
func (s *Service) ValidateForCompliance(ctx context.Context, batch *domain.PayoutBatch, jurisdictions []string, opts ports.ComplianceOptions) *domain.ValidationResult {
	return s.run(ctx, domain.ModeCompliance, batch, func(rc *runContext) {
		normalized := normalizeJurisdictions(jurisdictions)
		checkJurisdictions(rc, normalized)
		if opts.ValidateTaxCompliance {
			checkTaxCompliance(rc, normalized)
		}
		if opts.ValidateRegulatoryCompliance {
			checkRegulatoryCompliance(rc)
		}
		checkDocumentation(rc)
	})
}

// RejectMalformed returns the verdict for a request whose batch could not be
// decoded into the expected types. No component runs.
func (s *Service) RejectMalformed(mode domain.ValidationMode, field, message string) *domain.ValidationResult {
	start := time.Now()
	acc := newAccumulator()
	acc.addError(domain.CodeInvalidFieldType, field, "%s", message)
	result := acc.result(mode, nil, nil, s.now())
	s.record(result, "invalid", time.Since(start))
	return result
}

// run executes one validation pass. A panic in any component is recovered
// into a single validation_error and the partial result is still returned.
func (s *Service) run(ctx context.Context, mode domain.ValidationMode, batch *domain.PayoutBatch, components func(rc *runContext)) *domain.ValidationResult {
	start := time.Now()
	at := s.now()
	acc := newAccumulator()

	if batch == nil {
		acc.addError(domain.CodeMissingBatch, "batch", "batch is required")
		result := acc.result(mode, nil, nil, at)
		s.record(result, "invalid", time.Since(start))
		return result
	}

	rc := newRunContext(batch, &s.policy, at, acc)
	summary, faulted := s.execute(rc, components)

	result := acc.result(mode, batch, summary, at)

	outcome := "valid"
	switch {
	case faulted:
		outcome = "fault"
	case !result.Valid:
		outcome = "invalid"
	}
	s.record(result, outcome, time.Since(start))
	return result
}

func (s *Service) execute(rc *runContext, components func(rc *runContext)) (summary *domain.BatchSummary, faulted bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("validation run panicked",
				ports.String("batch_id", rc.batch.ID),
				ports.String("panic", fmt.Sprint(r)))
			rc.acc.addError(domain.CodeValidationError, "",
				"an unexpected error occurred during validation")
			faulted = true
		}
	}()

	components(rc)
	summary = summarize(rc)
	return summary, false
}

func (s *Service) record(result *domain.ValidationResult, outcome string, elapsed time.Duration) {
	fields := []ports.Field{
		ports.String("mode", string(result.Mode)),
		ports.String("batch_id", result.BatchID),
		ports.String("result_id", result.ID),
		ports.Bool("valid", result.Valid),
		ports.Int("errors", len(result.Errors)),
		ports.Int("warnings", len(result.WarningsOnly())),
		ports.Int("notices", len(result.Notices())),
		ports.Duration("duration", elapsed),
	}

	metric := observability.BatchValidation{
		Mode:     string(result.Mode),
		Outcome:  outcome,
		Duration: elapsed.Seconds(),
	}
	if result.Summary != nil {
		metric.Scored = true
		metric.LineItems = result.Summary.TotalPayouts
		metric.RiskScore = result.Summary.RiskScore
		metric.ComplianceScore = result.Summary.ComplianceScore
		fields = append(fields,
			ports.Int("risk_score", result.Summary.RiskScore),
			ports.Int("compliance_score", result.Summary.ComplianceScore))
	}

	observability.RecordBatchValidation(metric)
	for _, issue := range result.Errors {
		observability.RecordValidationIssue(issue.Code, "error")
	}
	for _, issue := range result.Warnings {
		observability.RecordValidationIssue(issue.Code, string(issue.Severity))
	}

	s.logger.Info("batch validated", fields...)
}
