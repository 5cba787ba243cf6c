package ports

import (
	"context"

	"github.com/kevin07696/payout-validation/internal/domain"
)

// CreationOptions toggles the checks run when a batch is created
type CreationOptions struct {
	ValidatePayees       bool `json:"validate_payees"`
	ValidateCalculations bool `json:"validate_calculations"`
	// Strict promotes warning-severity findings to errors
	Strict bool `json:"strict"`
}

// ProcessingOptions toggles the checks run before disbursement
type ProcessingOptions struct {
	ValidatePaymentMethods bool `json:"validate_payment_methods"`
	ValidateThresholds     bool `json:"validate_thresholds"`
}

// ComplianceOptions toggles the regulatory checks
type ComplianceOptions struct {
	ValidateTaxCompliance        bool `json:"validate_tax_compliance"`
	ValidateRegulatoryCompliance bool `json:"validate_regulatory_compliance"`
}

// DefaultCreationOptions enables every creation check, non-strict
func DefaultCreationOptions() CreationOptions {
	return CreationOptions{ValidatePayees: true, ValidateCalculations: true}
}

// DefaultProcessingOptions enables every processing check
func DefaultProcessingOptions() ProcessingOptions {
	return ProcessingOptions{ValidatePaymentMethods: true, ValidateThresholds: true}
}

// DefaultComplianceOptions enables every compliance check
func DefaultComplianceOptions() ComplianceOptions {
	return ComplianceOptions{ValidateTaxCompliance: true, ValidateRegulatoryCompliance: true}
}

// PayoutValidationService defines the business operations for validating payout batches.
// Every method returns a complete result; faults inside a run become a
// validation_error finding instead of a Go error.
type PayoutValidationService interface {
	ValidateForCreation(ctx context.Context, batch *domain.PayoutBatch, opts CreationOptions) *domain.ValidationResult
	ValidateForProcessing(ctx context.Context, batch *domain.PayoutBatch, opts ProcessingOptions) *domain.ValidationResult
	ValidateForCompliance(ctx context.Context, batch *domain.PayoutBatch, jurisdictions []string, opts ComplianceOptions) *domain.ValidationResult
}
