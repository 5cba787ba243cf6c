package validation

import (
	"github.com/kevin07696/payout-validation/internal/domain"
	"github.com/shopspring/decimal"
)

// payeeAggregate is the grouped view of every line item sharing a payee id
type payeeAggregate struct {
	PayeeID        string
	Count          int
	TotalGross     decimal.Decimal
	TotalNet       decimal.Decimal
	Currencies     *orderedSet
	PaymentMethods *orderedSet
	Indexes        []int

	// MinimumThreshold is the largest per-item override, nil when none was given
	MinimumThreshold *decimal.Decimal
}

// payeeIndex holds aggregates in first-seen order
type payeeIndex struct {
	order []string
	byID  map[string]*payeeAggregate
}

func (p *payeeIndex) len() int {
	return len(p.order)
}

// each visits aggregates in first-seen order
func (p *payeeIndex) each(fn func(agg *payeeAggregate)) {
	for _, id := range p.order {
		fn(p.byID[id])
	}
}

func (p *payeeIndex) get(payeeID string) (*payeeAggregate, bool) {
	agg, ok := p.byID[payeeID]
	return agg, ok
}

// aggregatePayees groups line items by payee id.
// Items without a payee id are skipped; the structural check reports them.
func aggregatePayees(payouts []domain.PayoutLineItem, batchCurrency string) *payeeIndex {
	index := &payeeIndex{byID: make(map[string]*payeeAggregate)}

	for i := range payouts {
		item := &payouts[i]
		if item.PayeeID == "" {
			continue
		}

		agg, ok := index.byID[item.PayeeID]
		if !ok {
			agg = &payeeAggregate{
				PayeeID:        item.PayeeID,
				TotalGross:     decimal.Zero,
				TotalNet:       decimal.Zero,
				Currencies:     newOrderedSet(),
				PaymentMethods: newOrderedSet(),
			}
			index.byID[item.PayeeID] = agg
			index.order = append(index.order, item.PayeeID)
		}

		agg.Count++
		agg.Indexes = append(agg.Indexes, i)
		agg.TotalGross = agg.TotalGross.Add(item.Gross())
		agg.TotalNet = agg.TotalNet.Add(item.Net())
		agg.Currencies.add(item.EffectiveCurrency(batchCurrency))
		agg.PaymentMethods.add(string(item.PaymentMethod))

		if item.MinimumThreshold != nil &&
			(agg.MinimumThreshold == nil || item.MinimumThreshold.GreaterThan(*agg.MinimumThreshold)) {
			threshold := *item.MinimumThreshold
			agg.MinimumThreshold = &threshold
		}
	}

	return index
}

// checkPayees reports per-payee anomalies from the grouped view
func checkPayees(rc *runContext) {
	if rc.batch.Payouts == nil {
		return
	}

	for i := range rc.batch.Payouts {
		id := rc.batch.Payouts[i].PayeeID
		if id != "" && !isValidPayeeID(id) {
			rc.acc.addError(domain.CodeInvalidPayeeID, itemField(i, "payee_id"),
				"payout %d payee_id %q is not a valid identifier", i, id)
		}
	}

	policy := rc.policy
	rc.payeeIndex().each(func(agg *payeeAggregate) {
		field := payeeField(agg.PayeeID)

		if agg.Currencies.len() > 1 {
			rc.acc.addWarning(domain.CodeMultipleCurrencies, field,
				"payee %s is paid in multiple currencies: %s", agg.PayeeID, agg.Currencies)
		}
		if agg.PaymentMethods.len() > 1 {
			rc.acc.addWarning(domain.CodeInconsistentMethods, field,
				"payee %s uses multiple payment methods: %s", agg.PayeeID, agg.PaymentMethods)
		}
		if agg.Count > policy.MaxTransactionsPerPayee {
			rc.acc.addWarning(domain.CodeHighTransactionCount, field,
				"payee %s has %d line items, more than %d", agg.PayeeID, agg.Count, policy.MaxTransactionsPerPayee)
		}
		if agg.TotalNet.IsPositive() && agg.TotalNet.LessThan(policy.PayeeMinimum) {
			rc.acc.addWarning(domain.CodeVerySmallTotalPayout, field,
				"payee %s total payout %s is below %s", agg.PayeeID, agg.TotalNet.StringFixed(2), policy.PayeeMinimum.String())
		}
	})
}
