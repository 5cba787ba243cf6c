package validation

import (
	"fmt"
	"sync"
	"testing"

	"github.com/kevin07696/payout-validation/internal/domain"
	"github.com/kevin07696/payout-validation/internal/domain/ports"
	"github.com/kevin07696/payout-validation/internal/testutil/fixtures"
	"github.com/kevin07696/payout-validation/internal/testutil/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewService_RejectsInvalidPolicy(t *testing.T) {
	policy := domain.DefaultPolicy()
	policy.GlobalMaximum = *fixtures.Dec("1")

	svc, err := NewService(policy, mocks.NewMockLogger())

	assert.Nil(t, svc)
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrorCodePolicyInvalid))
}

func TestNewService_NilLogger(t *testing.T) {
	svc, err := NewService(domain.DefaultPolicy(), nil)
	require.NoError(t, err)

	result := svc.ValidateForCreation(testContext(), scenarioABatch(), defaultCreationOptions())
	assert.True(t, result.Valid)
}

func TestService_PolicyIsTheConfiguredOne(t *testing.T) {
	policy := domain.DefaultPolicy()
	policy.MaxBatchSize = 250

	svc, err := NewService(policy, nil)
	require.NoError(t, err)

	assert.Equal(t, 250, svc.Policy().MaxBatchSize)
}

func TestValidateForCreation_ScenarioA_CleanBatch(t *testing.T) {
	svc, logger := newTestService(t)

	result := svc.ValidateForCreation(testContext(), scenarioABatch(), defaultCreationOptions())

	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, domain.ModeCreation, result.Mode)
	assert.Equal(t, "batch-001", result.BatchID)
	assert.NotEmpty(t, result.ID)
	assert.Equal(t, testNow, result.ValidatedAt)

	require.NotNil(t, result.Summary)
	assert.Equal(t, 1, result.Summary.TotalPayouts)
	assert.Equal(t, 1, result.Summary.PayeeCount)
	assert.Equal(t, "90.00", result.Summary.TotalAmount.StringFixed(2))
	assert.Equal(t, "USD", result.Summary.Currency)
	assert.Equal(t, 0, result.Summary.RiskScore)
	assert.Equal(t, 80, result.Summary.ComplianceScore)
	assert.True(t, result.Summary.ProcessingReadiness.Ready)
	assert.Empty(t, result.Summary.ProcessingReadiness.Issues)

	infos := logger.Infos()
	require.Len(t, infos, 1)
	assert.Equal(t, "batch validated", infos[0].Message)
	assert.Equal(t, "creation", infos[0].Field("mode"))
	assert.Equal(t, 0, infos[0].Field("errors"))
}

func TestValidateForCreation_ScenarioB_NetMismatch(t *testing.T) {
	svc, _ := newTestService(t)
	batch := scenarioABatch()
	batch.TotalNetAmount = fixtures.Dec("95")

	result := svc.ValidateForCreation(testContext(), batch, defaultCreationOptions())

	assert.False(t, result.Valid)
	assert.Equal(t, []string{domain.CodeNetTotalMismatch}, codes(result.Errors))
	require.NotNil(t, result.Summary)
	assert.False(t, result.Summary.ProcessingReadiness.Ready)
}

func TestValidateForCreation_ScenarioE_ApprovedWithoutApprover(t *testing.T) {
	svc, _ := newTestService(t)
	batch := fixtures.NewBatch().Approved("").WithPayouts(fixtures.NewPayout("p1", "100").Build()).Build()

	result := svc.ValidateForCreation(testContext(), batch, defaultCreationOptions())

	assert.True(t, result.HasError(domain.CodeMissingApprovalInfo))
	require.NotNil(t, result.Summary)
	assert.Equal(t, []string{domain.ReadinessMissingApproval}, result.Summary.ProcessingReadiness.Issues)
}

func TestValidateForCreation_OptionsSkipComponents(t *testing.T) {
	svc, _ := newTestService(t)
	batch := scenarioABatch()
	batch.TotalNetAmount = fixtures.Dec("95")
	batch.Payouts = append(batch.Payouts, fixtures.NewPayout("p1", "10").WithCurrency("EUR").Build())

	result := svc.ValidateForCreation(testContext(), batch, ports.CreationOptions{})

	assert.False(t, result.HasError(domain.CodeNetTotalMismatch), "calculations disabled")
	assert.False(t, result.HasWarning(domain.CodeMultipleCurrencies), "payee checks disabled")
}

func TestValidateForCreation_StrictPromotesWarnings(t *testing.T) {
	svc, logger := newTestService(t)
	build := func() *domain.PayoutBatch {
		return fixtures.NewBatch().
			WithPayouts(
				fixtures.NewPayout("p1", "100").Build(),
				fixtures.NewPayout("p2", "0.50").Build(),
				fixtures.NewPayout("p3", "50").WithCurrency("EUR").Build(),
			).
			WithExchangeRate("EUR", "1.1").
			WithDeclaredTotals().
			Build()
	}

	lenient := svc.ValidateForCreation(testContext(), build(), defaultCreationOptions())
	require.True(t, lenient.Valid)
	assert.ElementsMatch(t,
		[]string{domain.CodeVerySmallAmount, domain.CodeVerySmallTotalPayout},
		codes(lenient.WarningsOnly()))
	assert.Equal(t, []string{domain.CodeCurrencyConversionNeeded}, codes(lenient.Notices()))

	infos := logger.Infos()
	require.Len(t, infos, 1)
	assert.Equal(t, 2, infos[0].Field("warnings"))
	assert.Equal(t, 1, infos[0].Field("notices"))

	opts := defaultCreationOptions()
	opts.Strict = true
	strict := svc.ValidateForCreation(testContext(), build(), opts)

	assert.False(t, strict.Valid)
	assert.ElementsMatch(t, []string{domain.CodeVerySmallAmount, domain.CodeVerySmallTotalPayout}, codes(strict.Errors))
	for _, issue := range strict.Errors {
		assert.Empty(t, issue.Severity)
	}
	assert.Equal(t, []string{domain.CodeCurrencyConversionNeeded}, codes(strict.Warnings), "notices are never promoted")
	require.NotNil(t, strict.Summary)
	assert.False(t, strict.Summary.ProcessingReadiness.Ready)
}

func TestValidate_NilBatch(t *testing.T) {
	svc, _ := newTestService(t)

	results := []*domain.ValidationResult{
		svc.ValidateForCreation(testContext(), nil, defaultCreationOptions()),
		svc.ValidateForProcessing(testContext(), nil, defaultProcessingOptions()),
		svc.ValidateForCompliance(testContext(), nil, []string{"US"}, defaultComplianceOptions()),
	}

	for _, result := range results {
		require.NotNil(t, result)
		assert.False(t, result.Valid)
		assert.Equal(t, []string{domain.CodeMissingBatch}, codes(result.Errors))
		assert.Nil(t, result.Summary)
	}
}

func TestRun_RecoversFromPanic(t *testing.T) {
	svc, logger := newTestService(t)
	batch := scenarioABatch()

	result := svc.run(testContext(), domain.ModeCreation, batch, func(rc *runContext) {
		rc.acc.addWarning("found_before_fault", "", "recorded before the fault")
		panic("component exploded")
	})

	require.NotNil(t, result)
	assert.False(t, result.Valid)
	assert.Equal(t, []string{domain.CodeValidationError}, codes(result.Errors))
	assert.True(t, result.HasWarning("found_before_fault"), "partial findings are kept")
	assert.Nil(t, result.Summary)
	assert.Equal(t, "batch-001", result.BatchID)

	errs := logger.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, "validation run panicked", errs[0].Message)
	assert.Equal(t, "batch-001", errs[0].Field("batch_id"))
}

func TestValidate_DeterministicScores(t *testing.T) {
	svc, _ := newTestService(t)
	batch := fixtures.NewBatch().
		WithPayouts(fixtures.Payouts(120, "250")...).
		WithPayouts(fixtures.NewPayout("p-crypto", "75").Crypto("0xabc", "ethereum").Build()).
		Modify(func(b *domain.PayoutBatch) { b.TaxDocumentsRequired = true }).
		Build()

	first := svc.ValidateForProcessing(testContext(), batch, defaultProcessingOptions())
	second := svc.ValidateForProcessing(testContext(), batch, defaultProcessingOptions())
	compliance := svc.ValidateForCompliance(testContext(), batch, []string{"US"}, defaultComplianceOptions())

	require.NotNil(t, first.Summary)
	require.NotNil(t, second.Summary)
	require.NotNil(t, compliance.Summary)
	assert.Equal(t, first.Summary.RiskScore, second.Summary.RiskScore)
	assert.Equal(t, first.Summary.ComplianceScore, second.Summary.ComplianceScore)
	assert.Equal(t, first.Summary.RiskScore, compliance.Summary.RiskScore, "score does not depend on mode")
	assert.Equal(t, codes(first.Errors), codes(second.Errors))
	assert.Equal(t, codes(first.Warnings), codes(second.Warnings))
	assert.NotEqual(t, first.ID, second.ID)
}

func TestValidate_ConcurrentCallsDoNotShareState(t *testing.T) {
	svc, logger := newTestService(t)

	const workers = 32
	results := make([]*domain.ValidationResult, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			batch := scenarioABatch()
			batch.ID = fmt.Sprintf("batch-%02d", i)
			if i%2 == 1 {
				batch.TotalNetAmount = fixtures.Dec("95")
			}
			results[i] = svc.ValidateForCreation(testContext(), batch, defaultCreationOptions())
		}(i)
	}
	wg.Wait()

	for i, result := range results {
		assert.Equal(t, fmt.Sprintf("batch-%02d", i), result.BatchID)
		if i%2 == 1 {
			assert.Equal(t, []string{domain.CodeNetTotalMismatch}, codes(result.Errors), "batch %d", i)
		} else {
			assert.Empty(t, result.Errors, "batch %d", i)
		}
	}
	assert.Len(t, logger.Infos(), workers)
}

func TestValidateForProcessing_OptionsSkipComponents(t *testing.T) {
	svc, _ := newTestService(t)
	batch := fixtures.NewBatch().WithPayouts(
		fixtures.NewPayout("p1", "3").WithMethod(domain.PaymentMethodPayPal, nil).Build(),
	).Build()

	all := svc.ValidateForProcessing(testContext(), batch, defaultProcessingOptions())
	assert.True(t, all.HasError(domain.CodeMissingPayPalEmail))
	assert.True(t, all.HasError(domain.CodeBelowGlobalMinimum))

	none := svc.ValidateForProcessing(testContext(), batch, ports.ProcessingOptions{})
	assert.Empty(t, none.Errors)
}

func TestService_RejectMalformed(t *testing.T) {
	svc, logger := newTestService(t)

	result := svc.RejectMalformed(domain.ModeCreation, "payouts.0.gross_amount", "expected a decimal")

	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, domain.CodeInvalidFieldType, result.Errors[0].Code)
	assert.Equal(t, "payouts.0.gross_amount", result.Errors[0].Field)
	assert.Nil(t, result.Summary)
	assert.NotEmpty(t, result.ID)
	assert.Len(t, logger.Infos(), 1)
}
