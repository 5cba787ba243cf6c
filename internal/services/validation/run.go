package validation

import (
	"time"

	"github.com/kevin07696/payout-validation/internal/domain"
)

// runContext is the per-call state handed to every component
type runContext struct {
	batch  *domain.PayoutBatch
	policy *domain.ValidationPolicy
	now    time.Time
	acc    *accumulator

	payees *payeeIndex
}

func newRunContext(batch *domain.PayoutBatch, policy *domain.ValidationPolicy, now time.Time, acc *accumulator) *runContext {
	return &runContext{
		batch:  batch,
		policy: policy,
		now:    now,
		acc:    acc,
	}
}

// payeeIndex returns the grouped view, building it on first use
func (rc *runContext) payeeIndex() *payeeIndex {
	if rc.payees == nil {
		rc.payees = aggregatePayees(rc.batch.Payouts, rc.batch.Currency)
	}
	return rc.payees
}
