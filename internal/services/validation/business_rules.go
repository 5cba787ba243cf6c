package validation

import (
	"strings"
	"time"

	"github.com/kevin07696/payout-validation/internal/domain"
	"github.com/kevin07696/payout-validation/pkg/timeutil"
)

// checkBusinessRules applies the creation-time rules that look across line
// items and at payout history.
func checkBusinessRules(rc *runContext) {
	checkDuplicates(rc)
	checkRapidSuccession(rc)
	checkPeriodEnded(rc)
	checkRejectedIncluded(rc)
}

func duplicateKey(item *domain.PayoutLineItem, batchCurrency string) string {
	return strings.Join([]string{
		item.PayeeID,
		string(item.PaymentMethod),
		item.EffectiveCurrency(batchCurrency),
		item.Net().String(),
	}, "|")
}

func checkDuplicates(rc *runContext) {
	b := rc.batch
	first := make(map[string]int, len(b.Payouts))
	for i := range b.Payouts {
		item := &b.Payouts[i]
		if item.PayeeID == "" || item.NetAmount == nil {
			continue
		}
		key := duplicateKey(item, b.Currency)
		if j, ok := first[key]; ok {
			rc.acc.addWarning(domain.CodeDuplicatePayoutEntries, itemField(i, "payee_id"),
				"payout %d duplicates payout %d for payee %s (%s %s)",
				i, j, item.PayeeID, item.NetAmount.String(), item.EffectiveCurrency(b.Currency))
			continue
		}
		first[key] = i
	}
}

// checkRapidSuccession warns when a payee was paid too recently.
// Items without payout history are skipped.
func checkRapidSuccession(rc *runContext) {
	window := time.Duration(rc.policy.MinHoursBetweenPayouts) * time.Hour
	if window <= 0 {
		return
	}
	for i := range rc.batch.Payouts {
		item := &rc.batch.Payouts[i]
		if item.LastPayoutAt == nil {
			continue
		}
		since := rc.now.Sub(*item.LastPayoutAt)
		if since < 0 || since >= window {
			continue
		}
		rc.acc.addWarning(domain.CodeRapidSuccessionPayouts, itemField(i, "last_payout_at"),
			"payee %s was last paid %.1f hours ago, less than %d hours",
			item.PayeeID, since.Hours(), rc.policy.MinHoursBetweenPayouts)
	}
}

func checkPeriodEnded(rc *runContext) {
	if rc.batch.PeriodEnd == "" {
		return
	}
	end, err := timeutil.ParseDate(rc.batch.PeriodEnd)
	if err != nil {
		return
	}
	if end.After(rc.now) {
		rc.acc.addWarning(domain.CodePeriodNotEnded, "period_end",
			"payout period ends %s, which is still in the future", rc.batch.PeriodEnd)
	}
}

func checkRejectedIncluded(rc *runContext) {
	b := rc.batch
	if b.Status != domain.BatchStatusApproved && b.Status != domain.BatchStatusCalculated {
		return
	}
	rejected := 0
	for i := range b.Payouts {
		if b.Payouts[i].Status == domain.PayoutStatusRejected {
			rejected++
		}
	}
	if rejected > 0 {
		rc.acc.addWarning(domain.CodeRejectedPayoutsIncluded, "payouts",
			"%s batch still contains %d rejected line items", b.Status, rejected)
	}
}
