package validation

import (
	"testing"

	"github.com/kevin07696/payout-validation/internal/domain"
	"github.com/kevin07696/payout-validation/internal/domain/ports"
	"github.com/kevin07696/payout-validation/internal/testutil/fixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeJurisdictions(t *testing.T) {
	assert.Equal(t, []string{"US", "DE"}, normalizeJurisdictions([]string{" us", "DE", "de ", "", "US"}))
	assert.Empty(t, normalizeJurisdictions(nil))
}

func TestValidateForCompliance_USTax(t *testing.T) {
	svc, _ := newTestService(t)
	batch := fixtures.NewBatch().WithDocuments().WithPayouts(
		fixtures.NewPayout("p1", "400").Build(),
		fixtures.NewPayout("p1", "200").Build(),
		fixtures.NewPayout("p2", "599.99").Build(),
	).Build()

	result := svc.ValidateForCompliance(testContext(), batch, []string{"us"}, ports.ComplianceOptions{ValidateTaxCompliance: true})

	require.Equal(t, 1, countCode(result.Warnings, domain.CodeForm1099Required))
	notice, _ := findIssue(result.Warnings, domain.CodeForm1099Required)
	assert.Equal(t, "payees.p1", notice.Field)
	assert.Equal(t, domain.SeverityInfo, notice.Severity)
	assert.False(t, result.HasWarning(domain.CodeUnsupportedJurisdiction))
}

func TestValidateForCompliance_BackupWithholding(t *testing.T) {
	svc, _ := newTestService(t)
	batch := fixtures.NewBatch().WithDocuments().WithPayouts(
		fixtures.NewPayout("p1", "100").Modify(func(i *domain.PayoutLineItem) {
			i.BackupWithholding = fixtures.Dec("24.00")
		}).Build(),
		fixtures.NewPayout("p2", "100").Modify(func(i *domain.PayoutLineItem) {
			i.BackupWithholding = fixtures.Dec("20.00")
		}).Build(),
		fixtures.NewPayout("p3", "100").Build(),
	).Modify(func(b *domain.PayoutBatch) { b.BackupWithholdingRequired = true }).Build()

	result := svc.ValidateForCompliance(testContext(), batch, []string{"US"}, defaultComplianceOptions())

	var fields []string
	for _, issue := range result.Warnings {
		if issue.Code == domain.CodeBackupWithholdingMismatch {
			fields = append(fields, issue.Field)
		}
	}
	assert.Equal(t, []string{"payouts[1].backup_withholding", "payouts[2].backup_withholding"}, fields)
}

func TestValidateForCompliance_EUAndUnknownJurisdictions(t *testing.T) {
	svc, _ := newTestService(t)
	batch := fixtures.NewBatch().WithDocuments().WithPayouts(fixtures.NewPayout("p1", "100").Build()).Build()

	result := svc.ValidateForCompliance(testContext(), batch, []string{"de", "FR", "ZZ"}, defaultComplianceOptions())

	assert.Equal(t, 1, countCode(result.Warnings, domain.CodeDAC7Reporting))
	assert.Equal(t, 1, countCode(result.Warnings, domain.CodeVATConsiderations))
	dac7, _ := findIssue(result.Warnings, domain.CodeDAC7Reporting)
	assert.Contains(t, dac7.Message, "DE, FR")

	unknown, ok := findIssue(result.Warnings, domain.CodeUnsupportedJurisdiction)
	require.True(t, ok)
	assert.Contains(t, unknown.Message, "ZZ")
	assert.Empty(t, result.Errors)
}

func TestValidateForCompliance_TaxDocuments(t *testing.T) {
	svc, _ := newTestService(t)
	batch := fixtures.NewBatch().WithDocuments().WithPayouts(fixtures.NewPayout("p1", "100").Build()).
		Modify(func(b *domain.PayoutBatch) { b.TaxDocumentsRequired = true }).Build()

	result := svc.ValidateForCompliance(testContext(), batch, nil, defaultComplianceOptions())

	issue, ok := findIssue(result.Warnings, domain.CodeTaxDocumentsMissing)
	require.True(t, ok)
	assert.Equal(t, domain.SeverityWarning, issue.Severity)
	require.NotNil(t, result.Summary)
	assert.Equal(t, 80, result.Summary.ComplianceScore)
}

func TestValidateForCompliance_Regulatory(t *testing.T) {
	svc, _ := newTestService(t)
	batch := fixtures.NewBatch().WithDocuments().WithPayouts(
		fixtures.NewPayout("p1", "6000").Build(),
		fixtures.NewPayout("p2", "6000").WithBeneficiaryCountry("ir").Build(),
		fixtures.NewPayout("p3", "100").WithMethod(domain.PaymentMethodWireTransfer, &domain.PaymentDetails{
			IBAN: "GB29NWBK60161331926819", SwiftCode: "NWBKGB2L",
		}).Build(),
	).Build()

	result := svc.ValidateForCompliance(testContext(), batch, nil, ports.ComplianceOptions{ValidateRegulatoryCompliance: true})

	assert.True(t, result.HasWarning(domain.CodeCTRReportingRequired))
	assert.True(t, result.HasWarning(domain.CodeCrossBorderCompliance))

	risky, ok := findIssue(result.Warnings, domain.CodeHighRiskJurisdiction)
	require.True(t, ok)
	assert.Equal(t, "payouts[1].beneficiary_country", risky.Field)

	aml, ok := findIssue(result.Warnings, domain.CodeAMLRiskIndicators)
	require.True(t, ok)
	assert.Equal(t, domain.SeverityInfo, aml.Severity)
	assert.Contains(t, aml.Message, "high-risk beneficiary countries")
	assert.NotContains(t, aml.Message, "large total amount")

	for _, issue := range result.Warnings {
		if issue.Code != domain.CodeMissingAuditField {
			assert.Equal(t, domain.SeverityInfo, issue.Severity, issue.Code)
		}
	}
	assert.Empty(t, result.Errors, "regulatory notices never block")
}

func TestValidateForCompliance_AMLVolume(t *testing.T) {
	svc, _ := newTestService(t)
	batch := fixtures.NewBatch().WithDocuments().WithPayouts(fixtures.Payouts(201, "300")...).Build()

	result := svc.ValidateForCompliance(testContext(), batch, nil, defaultComplianceOptions())

	aml, ok := findIssue(result.Warnings, domain.CodeAMLRiskIndicators)
	require.True(t, ok)
	assert.Contains(t, aml.Message, "large total amount")
	assert.Contains(t, aml.Message, "high line item count")
	assert.False(t, result.HasWarning(domain.CodeHighRiskJurisdiction))
}

func TestValidateForCompliance_Documentation(t *testing.T) {
	svc, _ := newTestService(t)
	batch := fixtures.NewBatch().WithPayouts(fixtures.NewPayout("p1", "100").Build()).
		Modify(func(b *domain.PayoutBatch) {
			b.CreatedBy = ""
			b.CalculationMethod = ""
		}).Build()

	result := svc.ValidateForCompliance(testContext(), batch, nil, ports.ComplianceOptions{})

	assert.True(t, result.HasWarning(domain.CodeMissingCalculationReport))
	assert.True(t, result.HasWarning(domain.CodeMissingApprovalRecord))

	var fields []string
	for _, issue := range result.Warnings {
		if issue.Code == domain.CodeMissingAuditField {
			fields = append(fields, issue.Field)
		}
	}
	assert.Equal(t, []string{"created_by", "approved_by", "calculation_method"}, fields)
	assert.True(t, result.Valid)
}

func TestValidateForCompliance_ApprovalDate(t *testing.T) {
	tests := []struct {
		name     string
		date     string
		expected string
	}{
		{name: "missing", date: "", expected: domain.CodeMissingApprovalDate},
		{name: "malformed", date: "last tuesday", expected: domain.CodeInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t)
			batch := fixtures.NewBatch().Approved("manager@example.com").WithDocuments().
				WithPayouts(fixtures.NewPayout("p1", "100").Build()).
				Modify(func(b *domain.PayoutBatch) { b.ApprovalDate = tt.date }).Build()

			result := svc.ValidateForCompliance(testContext(), batch, nil, ports.ComplianceOptions{})

			assert.True(t, result.HasWarning(tt.expected))
			assert.False(t, result.HasError(tt.expected))
		})
	}

	t.Run("dated approval is quiet", func(t *testing.T) {
		svc, _ := newTestService(t)
		batch := fixtures.NewBatch().Approved("manager@example.com").WithDocuments().
			WithPayouts(fixtures.NewPayout("p1", "100").Build()).Build()

		result := svc.ValidateForCompliance(testContext(), batch, nil, ports.ComplianceOptions{})

		assert.False(t, result.HasWarning(domain.CodeMissingApprovalDate))
		assert.False(t, result.HasWarning(domain.CodeInvalidDate))
	})
}

func TestComplianceScore(t *testing.T) {
	policy := domain.DefaultPolicy()

	tests := []struct {
		name     string
		batch    *domain.PayoutBatch
		risk     int
		expected int
	}{
		{
			name:     "fully documented",
			batch:    fixtures.NewBatch().WithDocuments().Build(),
			expected: 100,
		},
		{
			name:     "no documents",
			batch:    fixtures.NewBatch().Build(),
			expected: 80,
		},
		{
			name:     "risk above fifty",
			batch:    fixtures.NewBatch().WithDocuments().Build(),
			risk:     51,
			expected: 85,
		},
		{
			name:     "risk of exactly fifty",
			batch:    fixtures.NewBatch().WithDocuments().Build(),
			risk:     50,
			expected: 100,
		},
		{
			name: "every penalty",
			batch: fixtures.NewBatch().Approved("").Modify(func(b *domain.PayoutBatch) {
				b.CreatedBy = ""
				b.TaxDocumentsRequired = true
			}).Build(),
			risk:     90,
			expected: 30,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, complianceScore(tt.batch, tt.risk, &policy))
		})
	}
}

func TestCheckBasicCompliance(t *testing.T) {
	t.Run("missing audit fields", func(t *testing.T) {
		batch := fixtures.NewBatch().Modify(func(b *domain.PayoutBatch) {
			b.CreatedBy = ""
			b.CalculationMethod = ""
			b.CalculationNotes = ""
		}).Build()

		acc := runComponents(batch, checkBasicCompliance)

		assert.Equal(t, 3, countCode(acc.warnings, domain.CodeMissingAuditField))
		assert.Empty(t, acc.errors)
	})

	t.Run("approver without approval date", func(t *testing.T) {
		batch := fixtures.NewBatch().Approved("manager@example.com").
			Modify(func(b *domain.PayoutBatch) { b.ApprovalDate = "" }).Build()

		acc := runComponents(batch, checkBasicCompliance)

		assert.Equal(t, []string{domain.CodeMissingApprovalDate}, codes(acc.warnings))
	})

	t.Run("malformed approval date", func(t *testing.T) {
		batch := fixtures.NewBatch().Approved("manager@example.com").
			Modify(func(b *domain.PayoutBatch) { b.ApprovalDate = "yesterday" }).Build()

		acc := runComponents(batch, checkBasicCompliance)

		assert.Equal(t, []string{domain.CodeInvalidDate}, codes(acc.warnings))
		assert.Empty(t, acc.errors)
	})
}
