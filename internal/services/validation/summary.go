package validation

import (
	"github.com/kevin07696/payout-validation/internal/domain"
)

// complianceScore starts at 100 and subtracts a penalty per documentation gap.
// It depends on batch content and the risk score only.
func complianceScore(b *domain.PayoutBatch, riskScore int, policy *domain.ValidationPolicy) int {
	score := 100
	if b.CalculationReport == nil {
		score -= 10
	}
	if b.ApprovalRecord == nil {
		score -= 10
	}
	if b.TaxDocumentsRequired && !b.TaxDocumentsCollected {
		score -= 20
	}
	if riskScore > policy.ComplianceRiskScore {
		score -= 15
	}
	if b.CreatedBy == "" {
		score -= 5
	}
	if b.Status == domain.BatchStatusApproved && b.ApprovedBy == "" {
		score -= 10
	}
	if score < 0 {
		return 0
	}
	return score
}

// readinessIssues lists the processing gates the batch fails
func readinessIssues(b *domain.PayoutBatch) []string {
	issues := []string{}
	if !b.Status.IsProcessable() {
		issues = append(issues, domain.ReadinessInvalidStatus)
	}
	if needsApprover(b) {
		issues = append(issues, domain.ReadinessMissingApproval)
	}
	if len(b.Payouts) == 0 {
		issues = append(issues, domain.ReadinessNoPayouts)
	}
	return issues
}

// summarize builds the summary once every component has run
func summarize(rc *runContext) *domain.BatchSummary {
	b := rc.batch
	risk := assessRisk(b, rc.policy)
	issues := readinessIssues(b)

	return &domain.BatchSummary{
		TotalPayouts:    len(b.Payouts),
		PayeeCount:      rc.payeeIndex().len(),
		TotalAmount:     b.EffectiveNetTotal(),
		Currency:        b.Currency,
		RiskScore:       risk,
		ComplianceScore: complianceScore(b, risk, rc.policy),
		ProcessingReadiness: domain.ProcessingReadiness{
			Ready:  len(issues) == 0 && len(rc.acc.errors) == 0,
			Issues: issues,
		},
	}
}
