package validation

import (
	"context"
	"testing"
	"time"

	"github.com/kevin07696/payout-validation/internal/domain"
	"github.com/kevin07696/payout-validation/internal/domain/ports"
	"github.com/kevin07696/payout-validation/internal/testutil/fixtures"
	"github.com/kevin07696/payout-validation/internal/testutil/mocks"
	"github.com/stretchr/testify/require"
)

// testNow is a Friday, after the default fixture period has ended
var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *mocks.MockLogger) {
	t.Helper()
	logger := mocks.NewMockLogger()
	svc, err := NewService(domain.DefaultPolicy(), logger, WithClock(fixtures.FixedClock(testNow)))
	require.NoError(t, err)
	return svc, logger
}

// runComponents runs the given components against a fresh accumulator
func runComponents(batch *domain.PayoutBatch, components ...func(rc *runContext)) *accumulator {
	policy := domain.DefaultPolicy()
	acc := newAccumulator()
	rc := newRunContext(batch, &policy, testNow, acc)
	for _, c := range components {
		c(rc)
	}
	return acc
}

func codes(issues []domain.Issue) []string {
	out := make([]string, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issue.Code)
	}
	return out
}

func countCode(issues []domain.Issue, code string) int {
	n := 0
	for _, issue := range issues {
		if issue.Code == code {
			n++
		}
	}
	return n
}

func findIssue(issues []domain.Issue, code string) (domain.Issue, bool) {
	for _, issue := range issues {
		if issue.Code == code {
			return issue, true
		}
	}
	return domain.Issue{}, false
}

func testContext() context.Context {
	return context.Background()
}

func defaultCreationOptions() ports.CreationOptions {
	return ports.DefaultCreationOptions()
}

func defaultProcessingOptions() ports.ProcessingOptions {
	return ports.DefaultProcessingOptions()
}

func defaultComplianceOptions() ports.ComplianceOptions {
	return ports.DefaultComplianceOptions()
}
