package validation

import (
	"testing"

	"github.com/kevin07696/payout-validation/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestExceedsPrecision(t *testing.T) {
	tests := []struct {
		value    string
		places   int32
		expected bool
	}{
		{"10", 2, false},
		{"10.10", 2, false},
		{"10.100", 2, false},
		{"10.105", 2, true},
		{"1.123456", 6, false},
		{"1.1234567", 6, true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.expected, exceedsPrecision(decimal.RequireFromString(tt.value), tt.places))
		})
	}
}

func TestWithinTolerance(t *testing.T) {
	tol := decimal.RequireFromString("0.01")
	base := decimal.RequireFromString("100")

	assert.True(t, withinTolerance(base, decimal.RequireFromString("100.01"), tol))
	assert.True(t, withinTolerance(base, decimal.RequireFromString("99.99"), tol))
	assert.False(t, withinTolerance(base, decimal.RequireFromString("100.011"), tol))
	assert.False(t, withinTolerance(base, decimal.RequireFromString("99.989"), tol))
}

func TestIsValidPayeeID(t *testing.T) {
	valid := []string{"p1", "payee-001", "user@example.com", "acct_123:v2", "X"}
	invalid := []string{"", " p1", "-leading", "has space", "semi;colon"}

	for _, id := range valid {
		assert.True(t, isValidPayeeID(id), id)
	}
	for _, id := range invalid {
		assert.False(t, isValidPayeeID(id), id)
	}
}

func TestOrderedSet(t *testing.T) {
	s := newOrderedSet()
	s.add("USD")
	s.add("")
	s.add("EUR")
	s.add("USD")

	assert.Equal(t, 2, s.len())
	assert.Equal(t, "USD, EUR", s.String())
}

func TestAccumulator_PromoteWarnings(t *testing.T) {
	acc := newAccumulator()
	acc.addError("e1", "", "error")
	acc.addWarning("w1", "f1", "warning %d", 1)
	acc.addInfo("i1", "", "notice")
	acc.addWarning("w2", "", "warning")

	acc.promoteWarnings()

	assert.Equal(t, []string{"e1", "w1", "w2"}, codes(acc.errors))
	assert.Equal(t, "warning 1", acc.errors[1].Message)
	assert.Equal(t, "f1", acc.errors[1].Field)
	assert.Equal(t, []string{"i1"}, codes(acc.warnings))
	assert.Equal(t, domain.SeverityInfo, acc.warnings[0].Severity)
}

func TestAccumulator_ResultNeverNilSlices(t *testing.T) {
	result := newAccumulator().result(domain.ModeProcessing, nil, nil, testNow)

	assert.True(t, result.Valid)
	assert.NotNil(t, result.Errors)
	assert.NotNil(t, result.Warnings)
	assert.Empty(t, result.BatchID)
}
