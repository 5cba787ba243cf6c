package validation

import (
	"testing"
	"time"

	"github.com/kevin07696/payout-validation/internal/domain"
	"github.com/kevin07696/payout-validation/internal/testutil/fixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckDuplicates(t *testing.T) {
	batch := fixtures.NewBatch().WithPayouts(
		fixtures.NewPayout("p1", "100").Build(),
		fixtures.NewPayout("p1", "100").WithCurrency("USD").Build(),
		fixtures.NewPayout("p1", "100").WithCurrency("EUR").Build(),
		fixtures.NewPayout("p1", "100.00").Build(),
		fixtures.NewPayout("p2", "100").Build(),
	).Build()

	acc := runComponents(batch, checkDuplicates)

	var fields []string
	for _, issue := range acc.warnings {
		if issue.Code == domain.CodeDuplicatePayoutEntries {
			fields = append(fields, issue.Field)
		}
	}
	assert.Equal(t, []string{"payouts[1].payee_id", "payouts[3].payee_id"}, fields)
}

func TestCheckRapidSuccession(t *testing.T) {
	tests := []struct {
		name       string
		lastPayout *time.Time
		expectWarn bool
	}{
		{name: "no history", lastPayout: nil},
		{name: "paid two hours ago", lastPayout: fixtures.TimePtr(testNow.Add(-2 * time.Hour)), expectWarn: true},
		{name: "paid just under a day ago", lastPayout: fixtures.TimePtr(testNow.Add(-23*time.Hour - 59*time.Minute)), expectWarn: true},
		{name: "paid exactly a day ago", lastPayout: fixtures.TimePtr(testNow.Add(-24 * time.Hour))},
		{name: "paid two days ago", lastPayout: fixtures.TimePtr(testNow.Add(-48 * time.Hour))},
		{name: "timestamp in the future", lastPayout: fixtures.TimePtr(testNow.Add(time.Hour))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := fixtures.NewPayout("p1", "100").Modify(func(i *domain.PayoutLineItem) {
				i.LastPayoutAt = tt.lastPayout
			}).Build()
			batch := fixtures.NewBatch().WithPayouts(item).Build()

			acc := runComponents(batch, checkRapidSuccession)

			assert.Equal(t, tt.expectWarn, countCode(acc.warnings, domain.CodeRapidSuccessionPayouts) == 1)
		})
	}
}

func TestCheckPeriodEnded(t *testing.T) {
	open := fixtures.NewBatch().WithPeriod("2024-03-01", "2024-03-31").Build()
	closed := fixtures.NewBatch().WithPeriod("2024-02-01", "2024-02-29").Build()
	garbage := fixtures.NewBatch().WithPeriod("2024-03-01", "later").Build()

	assert.Contains(t, codes(runComponents(open, checkPeriodEnded).warnings), domain.CodePeriodNotEnded)
	assert.Empty(t, runComponents(closed, checkPeriodEnded).warnings)
	assert.Empty(t, runComponents(garbage, checkPeriodEnded).warnings, "structural check owns malformed dates")
}

func TestCheckRejectedIncluded(t *testing.T) {
	payouts := []domain.PayoutLineItem{
		fixtures.NewPayout("p1", "100").Build(),
		fixtures.NewPayout("p2", "100").WithStatus(domain.PayoutStatusRejected).Build(),
	}

	approved := fixtures.NewBatch().Approved("manager@example.com").WithPayouts(payouts...).Build()
	draft := fixtures.NewBatch().WithStatus(domain.BatchStatusDraft).WithPayouts(payouts...).Build()

	acc := runComponents(approved, checkRejectedIncluded)
	require.Len(t, acc.warnings, 1)
	assert.Equal(t, domain.CodeRejectedPayoutsIncluded, acc.warnings[0].Code)
	assert.Contains(t, acc.warnings[0].Message, "1 rejected")

	assert.Empty(t, runComponents(draft, checkRejectedIncluded).warnings)
}
