package validation

import (
	"strings"
	"time"

	"github.com/kevin07696/payout-validation/internal/domain"
	"github.com/kevin07696/payout-validation/pkg/timeutil"
	"github.com/shopspring/decimal"
)

// validateStructure checks batch and line-item schema.
// It never stops early: every malformed field is reported and later
// components still run against whatever data is present.
func validateStructure(rc *runContext) {
	b := rc.batch

	validatePeriod(rc)

	if requireString(rc.acc, b.Currency, "currency") && !rc.policy.IsSupportedCurrency(b.Currency) {
		rc.acc.addWarning(domain.CodeUnrecognizedCurrency, "currency",
			"currency %q is not a recognized ISO-4217 code", b.Currency)
	}

	if b.Status != "" && !b.Status.IsValid() {
		rc.acc.addError(domain.CodeInvalidBatchStatus, "status", "invalid batch status %q", b.Status)
	}

	nonNegative(rc.acc, b.TotalGrossAmount, "total_gross_amount")
	nonNegative(rc.acc, b.TotalNetAmount, "total_net_amount")
	nonNegative(rc.acc, b.TotalDeductions, "total_deductions")
	nonNegative(rc.acc, b.TotalFees, "total_fees")
	nonNegative(rc.acc, b.TotalTaxes, "total_taxes")

	validateExchangeRates(rc)

	if b.Status == domain.BatchStatusApproved && strings.TrimSpace(b.ApprovedBy) == "" {
		rc.acc.addError(domain.CodeMissingApprovalInfo, "approved_by",
			"approved_by is required when batch status is approved")
	}

	if b.Payouts == nil {
		rc.acc.addError(domain.CodeMissingRequiredField, "payouts", "payouts is required")
		return
	}
	if len(b.Payouts) == 0 {
		rc.acc.addError(domain.CodeNoPayouts, "payouts", "batch contains no payouts")
		return
	}

	for i := range b.Payouts {
		validateLineItem(rc, i, &b.Payouts[i])
	}
}

func validatePeriod(rc *runContext) {
	b := rc.batch

	var start, end time.Time
	startOK := requireString(rc.acc, b.PeriodStart, "period_start")
	if startOK {
		start, startOK = parseDateField(rc.acc, b.PeriodStart, "period_start")
	}
	endOK := requireString(rc.acc, b.PeriodEnd, "period_end")
	if endOK {
		end, endOK = parseDateField(rc.acc, b.PeriodEnd, "period_end")
	}
	if !startOK || !endOK {
		return
	}

	if !end.After(start) {
		rc.acc.addError(domain.CodeInvalidPeriod, "period_end",
			"period_end (%s) must be after period_start (%s)", b.PeriodEnd, b.PeriodStart)
		return
	}

	span := end.Sub(start)
	if span < 24*time.Hour {
		rc.acc.addError(domain.CodePeriodTooShort, "period_end",
			"payout period must cover at least one day (got %s)", span)
		return
	}
	if days := timeutil.Days(span); days > float64(rc.policy.MaxPeriodDays) {
		rc.acc.addWarning(domain.CodePeriodTooLong, "period_end",
			"payout period spans %.0f days, more than %d", days, rc.policy.MaxPeriodDays)
	}
}

func validateExchangeRates(rc *runContext) {
	b := rc.batch
	if b.ExchangeRate != nil {
		checkRate(rc, *b.ExchangeRate, "exchange_rate")
	}
	for _, currency := range sortedKeys(b.ExchangeRates) {
		checkRate(rc, b.ExchangeRates[currency], "exchange_rates."+currency)
	}
}

func checkRate(rc *runContext, rate decimal.Decimal, field string) {
	if !rate.IsPositive() {
		rc.acc.addError(domain.CodeInvalidExchangeRate, field,
			"exchange rate must be greater than zero (got %s)", rate.String())
		return
	}
	if !inRange(rate, rc.policy.MinExchangeRate, rc.policy.MaxExchangeRate) {
		rc.acc.addWarning(domain.CodeUnusualExchangeRate, field,
			"exchange rate %s is outside the usual range [%s, %s]",
			rate.String(), rc.policy.MinExchangeRate.String(), rc.policy.MaxExchangeRate.String())
	}
}

func validateLineItem(rc *runContext, i int, item *domain.PayoutLineItem) {
	acc := rc.acc

	if strings.TrimSpace(item.PayeeID) == "" {
		acc.addError(domain.CodeMissingPayeeID, itemField(i, "payee_id"), "payout %d has no payee_id", i)
	}

	grossOK := requireDecimal(acc, item.GrossAmount, itemField(i, "gross_amount"))
	netOK := requireDecimal(acc, item.NetAmount, itemField(i, "net_amount"))

	grossOK = nonNegative(acc, item.GrossAmount, itemField(i, "gross_amount")) && grossOK
	netOK = nonNegative(acc, item.NetAmount, itemField(i, "net_amount")) && netOK
	nonNegative(acc, item.Deductions, itemField(i, "deductions"))
	nonNegative(acc, item.Fees, itemField(i, "fees"))
	nonNegative(acc, item.Taxes, itemField(i, "taxes"))
	nonNegative(acc, item.WithholdingTax, itemField(i, "withholding_tax"))
	nonNegative(acc, item.BackupWithholding, itemField(i, "backup_withholding"))
	nonNegative(acc, item.MinimumThreshold, itemField(i, "minimum_threshold"))

	if grossOK && netOK && item.NetAmount.GreaterThan(*item.GrossAmount) {
		acc.addError(domain.CodeNetExceedsGross, itemField(i, "net_amount"),
			"payout %d net amount %s exceeds gross amount %s", i, item.NetAmount.String(), item.GrossAmount.String())
	}

	if item.PaymentMethod != "" && !item.PaymentMethod.IsValid() {
		acc.addError(domain.CodeInvalidPaymentMethod, itemField(i, "payment_method"),
			"payout %d has unsupported payment method %q", i, item.PaymentMethod)
	}
	if item.Status != "" && !item.Status.IsValid() {
		acc.addError(domain.CodeInvalidPayoutStatus, itemField(i, "status"),
			"payout %d has invalid status %q", i, item.Status)
	}
	if item.Currency != "" && !rc.policy.IsSupportedCurrency(item.Currency) {
		acc.addWarning(domain.CodeUnrecognizedCurrency, itemField(i, "currency"),
			"payout %d currency %q is not a recognized ISO-4217 code", i, item.Currency)
	}

	if netOK {
		net := *item.NetAmount
		if net.IsPositive() && net.LessThan(rc.policy.SmallAmountThreshold) {
			acc.addWarning(domain.CodeVerySmallAmount, itemField(i, "net_amount"),
				"payout %d net amount %s is below %s", i, net.String(), rc.policy.SmallAmountThreshold.String())
		}
		if net.GreaterThan(rc.policy.LargeAmountThreshold) {
			acc.addWarning(domain.CodeVeryLargeAmount, itemField(i, "net_amount"),
				"payout %d net amount %s exceeds %s", i, net.String(), rc.policy.LargeAmountThreshold.String())
		}
	}
}
