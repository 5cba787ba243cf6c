package validation

import (
	"strings"

	"github.com/kevin07696/payout-validation/internal/domain"
	"github.com/kevin07696/payout-validation/pkg/timeutil"
)

// checkProcessingReadiness applies the gates a batch must pass before disbursement
func checkProcessingReadiness(rc *runContext) {
	b := rc.batch
	acc := rc.acc

	if !b.Status.IsProcessable() {
		acc.addError(domain.CodeInvalidStatusForProcessing, "status",
			"batch status %q cannot be processed; expected calculated or approved", b.Status)
	}

	if needsApprover(b) {
		acc.addError(domain.CodeMissingApprovalInfo, "approved_by",
			"approved_by is required before this batch can be processed")
	}

	if len(b.Payouts) == 0 {
		acc.addError(domain.CodeNoPayouts, "payouts", "batch contains no payouts")
		return
	}

	checkSchedule(rc)

	if len(b.Payouts) > rc.policy.MaxBatchSize {
		acc.addWarning(domain.CodeLargeBatchSize, "payouts",
			"batch has %d line items, more than %d", len(b.Payouts), rc.policy.MaxBatchSize)
	}

	currencies := newOrderedSet()
	methods := newOrderedSet()
	nonProcessable := 0
	for i := range b.Payouts {
		item := &b.Payouts[i]
		currencies.add(item.EffectiveCurrency(b.Currency))
		methods.add(string(item.PaymentMethod))
		if item.Status.IsTerminalFailure() {
			nonProcessable++
		}
	}

	if currencies.len() > rc.policy.CurrencyDiversity {
		acc.addInfo(domain.CodeCurrencyDiversity, "payouts",
			"batch pays out in %d currencies: %s", currencies.len(), currencies)
	}
	if methods.len() > rc.policy.MethodDiversity {
		acc.addInfo(domain.CodePaymentMethodDiversity, "payouts",
			"batch uses %d payment methods: %s", methods.len(), methods)
	}
	if nonProcessable > 0 {
		acc.addWarning(domain.CodeNonProcessablePayouts, "payouts",
			"%d line items are rejected, failed or cancelled and will be skipped", nonProcessable)
	}
}

func needsApprover(b *domain.PayoutBatch) bool {
	if strings.TrimSpace(b.ApprovedBy) != "" {
		return false
	}
	return b.RequiresApproval || b.Status == domain.BatchStatusApproved
}

func checkSchedule(rc *runContext) {
	b := rc.batch
	if b.ScheduledProcessingDate == "" {
		return
	}

	scheduled, ok := parseDateField(rc.acc, b.ScheduledProcessingDate, "scheduled_processing_date")
	if !ok {
		return
	}

	today := timeutil.StartOfDay(rc.now)
	if timeutil.StartOfDay(scheduled).Before(today) {
		rc.acc.addWarning(domain.CodeScheduledDateInPast, "scheduled_processing_date",
			"scheduled processing date %s is in the past", b.ScheduledProcessingDate)
	}
	if timeutil.IsWeekend(scheduled) {
		rc.acc.addWarning(domain.CodeWeekendProcessing, "scheduled_processing_date",
			"scheduled processing date %s falls on a %s", b.ScheduledProcessingDate, scheduled.Weekday())
	}
	if timeutil.SameDay(scheduled, rc.now) {
		if total := b.EffectiveNetTotal(); total.GreaterThan(rc.policy.SameDayLimit) {
			rc.acc.addWarning(domain.CodeSameDayLargeAmount, "scheduled_processing_date",
				"same-day processing of %s exceeds %s", total.StringFixed(2), rc.policy.SameDayLimit.String())
		}
	}
}

// checkPaymentMethods verifies method-specific destination data and amount bands
func checkPaymentMethods(rc *runContext) {
	for i := range rc.batch.Payouts {
		item := &rc.batch.Payouts[i]
		if !checkMethodDetails(rc, i, item) {
			continue
		}
		checkMethodBand(rc, i, item)
	}
}

// checkMethodDetails records errors for missing destination data.
// It returns false when the method itself is unusable.
func checkMethodDetails(rc *runContext, i int, item *domain.PayoutLineItem) bool {
	acc := rc.acc
	field := itemField(i, "payment_details")

	switch {
	case item.PaymentMethod == "":
		acc.addError(domain.CodeMissingPaymentMethod, itemField(i, "payment_method"),
			"payout %d has no payment method", i)
		return false
	case !item.PaymentMethod.IsValid():
		acc.addError(domain.CodeInvalidPaymentMethod, itemField(i, "payment_method"),
			"payout %d has unsupported payment method %q", i, item.PaymentMethod)
		return false
	}

	details := item.PaymentDetails
	if details == nil {
		details = &domain.PaymentDetails{}
	}

	switch item.PaymentMethod {
	case domain.PaymentMethodBankTransfer:
		if details.IBAN == "" && (details.AccountNumber == "" || details.RoutingNumber == "") {
			acc.addError(domain.CodeMissingBankDetails, field,
				"payout %d bank transfer requires an account and routing number or an IBAN", i)
		}

	case domain.PaymentMethodACH:
		if details.AccountNumber == "" || details.RoutingNumber == "" {
			acc.addError(domain.CodeMissingBankDetails, field,
				"payout %d ACH requires an account and routing number", i)
		} else if !isDigits(details.RoutingNumber, 9) {
			acc.addError(domain.CodeInvalidRoutingNumber, field+".routing_number",
				"payout %d ACH routing number must be 9 digits", i)
		}

	case domain.PaymentMethodWireTransfer:
		if details.AccountNumber == "" && details.IBAN == "" {
			acc.addError(domain.CodeMissingBankDetails, field,
				"payout %d wire transfer requires an account number or IBAN", i)
		}
		if details.SwiftCode == "" {
			acc.addError(domain.CodeMissingSwiftCode, field+".swift_code",
				"payout %d wire transfer requires a SWIFT/BIC code", i)
		}

	case domain.PaymentMethodPayPal:
		if details.Email == "" {
			acc.addError(domain.CodeMissingPayPalEmail, field+".email",
				"payout %d PayPal payout requires an email address", i)
		} else if !isValidEmail(details.Email) {
			acc.addError(domain.CodeInvalidPayPalEmail, field+".email",
				"payout %d PayPal email %q is not valid", i, details.Email)
		}

	case domain.PaymentMethodStripe:
		if details.StripeAccountID == "" {
			acc.addError(domain.CodeMissingStripeAccount, field+".stripe_account_id",
				"payout %d Stripe payout requires a connected account id", i)
		}

	case domain.PaymentMethodCheck:
		if !details.MailingAddress.IsComplete() {
			acc.addError(domain.CodeMissingMailingAddress, field+".mailing_address",
				"payout %d check payout requires a complete mailing address", i)
		}

	case domain.PaymentMethodCrypto:
		if item.CryptoWallet() == "" {
			acc.addError(domain.CodeMissingWalletAddress, itemField(i, "wallet_address"),
				"payout %d crypto payout requires a wallet address", i)
		}
		if details.Network == "" {
			acc.addError(domain.CodeMissingCryptoNetwork, field+".network",
				"payout %d crypto payout requires a network", i)
		}

	case domain.PaymentMethodDigitalWallet:
		if details.WalletID == "" && details.Email == "" {
			acc.addError(domain.CodeMissingWalletID, field+".wallet_id",
				"payout %d digital wallet payout requires a wallet id or email", i)
		}
	}
	return true
}

// checkMethodBand warns when an amount falls outside its method's band.
// Bands are advisory; the business may override them.
func checkMethodBand(rc *runContext, i int, item *domain.PayoutLineItem) {
	band, ok := rc.policy.MethodBands[item.PaymentMethod]
	if !ok || item.NetAmount == nil {
		return
	}
	net := *item.NetAmount
	if net.LessThan(band.Min) {
		rc.acc.addWarning(domain.CodeBelowMethodMinimum, itemField(i, "net_amount"),
			"payout %d amount %s is below the %s minimum of %s", i, net.String(), item.PaymentMethod, band.Min.String())
	}
	if net.GreaterThan(band.Max) {
		rc.acc.addWarning(domain.CodeAboveMethodMaximum, itemField(i, "net_amount"),
			"payout %d amount %s exceeds the %s maximum of %s", i, net.String(), item.PaymentMethod, band.Max.String())
	}
}

// checkThresholds applies the global and per-payee amount limits
func checkThresholds(rc *runContext) {
	b := rc.batch
	policy := rc.policy

	total := b.EffectiveNetTotal()
	if total.LessThan(policy.GlobalMinimum) {
		rc.acc.addError(domain.CodeBelowGlobalMinimum, "total_net_amount",
			"batch total %s is below the minimum of %s", total.StringFixed(2), policy.GlobalMinimum.String())
	}
	if total.GreaterThan(policy.GlobalMaximum) {
		rc.acc.addWarning(domain.CodeAboveGlobalMaximum, "total_net_amount",
			"batch total %s exceeds the maximum of %s", total.StringFixed(2), policy.GlobalMaximum.String())
	}

	rc.payeeIndex().each(func(agg *payeeAggregate) {
		minimum := policy.PayeeMinimum
		if agg.MinimumThreshold != nil {
			minimum = *agg.MinimumThreshold
		}
		if agg.TotalNet.IsPositive() && agg.TotalNet.LessThan(minimum) {
			rc.acc.addWarning(domain.CodeBelowPayeeMinimum, payeeField(agg.PayeeID),
				"payee %s total %s is below the payout minimum of %s",
				agg.PayeeID, agg.TotalNet.StringFixed(2), minimum.String())
		}
	})
}
