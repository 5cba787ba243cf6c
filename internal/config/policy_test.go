package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kevin07696/payout-validation/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPolicy_EmptyPathIsDefault(t *testing.T) {
	p, err := LoadPolicy("")
	require.NoError(t, err)
	assert.True(t, p.Tolerance.Equal(domain.DefaultPolicy().Tolerance))
}

func TestLoadPolicy_NotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")
	_, err := LoadPolicy(path)
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrorCodePolicyNotFound))

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, path, domainErr.Details["path"])
}

func TestLoadPolicy_InvalidFileCarriesPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("global_maximum: lots"), 0o600))

	_, err := LoadPolicy(path)
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrorCodePolicyInvalid))

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, path, domainErr.Details["path"])
}

func TestLoadPolicy_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
tolerance: 0.05
global_minimum: "25"
max_batch_size: 250
method_bands:
  PayPal:
    min: 2
    max: 5000
risk_weights:
  crypto: 40
high_risk_countries: [ir, kp]
`), 0o600))

	p, err := LoadPolicy(path)
	require.NoError(t, err)

	assert.True(t, p.Tolerance.Equal(decimal.RequireFromString("0.05")))
	assert.True(t, p.GlobalMinimum.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, 250, p.MaxBatchSize)
	assert.True(t, p.MethodBands[domain.PaymentMethodPayPal].Max.Equal(decimal.NewFromInt(5000)))
	assert.True(t, p.MethodBands[domain.PaymentMethodCheck].Min.Equal(decimal.NewFromInt(25)), "untouched bands keep defaults")
	assert.Equal(t, 40, p.RiskWeights.Crypto)
	assert.Equal(t, 15, p.RiskWeights.Rush, "untouched weights keep defaults")
	assert.Equal(t, []string{"IR", "KP"}, p.HighRiskCountries)
	assert.Equal(t, domain.DefaultPolicy().EUJurisdictions, p.EUJurisdictions)
}

func TestParsePolicy_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "not yaml", yaml: "tolerance: [unclosed"},
		{name: "unknown key", yaml: "tolerence: 0.01"},
		{name: "bad decimal", yaml: "global_maximum: lots"},
		{name: "inconsistent", yaml: "global_minimum: 100\nglobal_maximum: 50"},
		{name: "unknown method band", yaml: "method_bands:\n  barter:\n    min: 1\n    max: 2"},
		{name: "negative tolerance", yaml: "tolerance: -0.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePolicy([]byte(tt.yaml))
			require.Error(t, err)
			assert.True(t, domain.IsDomainError(err, domain.ErrorCodePolicyInvalid), "got %v", err)
		})
	}
}

func TestParsePolicy_EmptyDocument(t *testing.T) {
	p, err := ParsePolicy(nil)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPolicy().MaxBatchSize, p.MaxBatchSize)
}
