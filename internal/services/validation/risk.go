package validation

import (
	"github.com/kevin07696/payout-validation/internal/domain"
	"github.com/shopspring/decimal"
)

const maxRiskScore = 100

var hundred = decimal.NewFromInt(100)

// assessRisk returns the additive risk score for a batch, capped at 100.
// It depends on batch content and policy only.
func assessRisk(b *domain.PayoutBatch, policy *domain.ValidationPolicy) int {
	if b == nil {
		return 0
	}
	weights := policy.RiskWeights
	score := 0

	if b.EffectiveNetTotal().GreaterThan(policy.LargeAmountRisk) {
		score += weights.LargeAmount
	}
	if len(b.Payouts) > policy.HighVolumeRisk {
		score += weights.HighVolume
	}
	if isInternational(b) {
		score += weights.International
	}
	if b.IsExpedited() {
		score += weights.Rush
	}
	if usesMethod(b, domain.PaymentMethodCrypto) {
		score += weights.Crypto
	}

	if score > maxRiskScore {
		return maxRiskScore
	}
	return score
}

// isInternational reports whether any line item crosses a border:
// a wire transfer or a currency other than the batch currency.
func isInternational(b *domain.PayoutBatch) bool {
	for i := range b.Payouts {
		item := &b.Payouts[i]
		if item.PaymentMethod == domain.PaymentMethodWireTransfer {
			return true
		}
		if item.IsForeignCurrency(b.Currency) {
			return true
		}
	}
	return false
}

func usesMethod(b *domain.PayoutBatch, method domain.PaymentMethod) bool {
	for i := range b.Payouts {
		if b.Payouts[i].PaymentMethod == method {
			return true
		}
	}
	return false
}

// checkRisk records the high-risk warning and the amount pattern notices
func checkRisk(rc *runContext, score int) {
	if score > rc.policy.HighRiskScore {
		rc.acc.addWarning(domain.CodeHighRiskTransaction, "",
			"batch risk score %d exceeds %d", score, rc.policy.HighRiskScore)
	}
	checkAmountPatterns(rc)
}

func checkAmountPatterns(rc *runContext) {
	payouts := rc.batch.Payouts
	if len(payouts) == 0 {
		return
	}
	policy := rc.policy

	round := 0
	for i := range payouts {
		net := payouts[i].Net()
		if net.GreaterThanOrEqual(policy.RoundAmountMinimum) && net.Mod(hundred).IsZero() {
			round++
		}
	}
	ratio := decimal.NewFromInt(int64(round)).Div(decimal.NewFromInt(int64(len(payouts))))
	if ratio.GreaterThan(policy.RoundAmountRatio) {
		rc.acc.addInfo(domain.CodeRoundAmountPattern, "payouts",
			"%d of %d line items are round amounts of %s or more", round, len(payouts), policy.RoundAmountMinimum.String())
	}

	if len(payouts) > policy.EqualAmountMinimumSize && allEqualNet(payouts) {
		rc.acc.addInfo(domain.CodeEqualAmountPattern, "payouts",
			"all %d line items share the amount %s", len(payouts), payouts[0].Net().String())
	}
}

func allEqualNet(payouts []domain.PayoutLineItem) bool {
	first := payouts[0].Net()
	for i := 1; i < len(payouts); i++ {
		if !payouts[i].Net().Equal(first) {
			return false
		}
	}
	return true
}
