package validation

import (
	"github.com/kevin07696/payout-validation/internal/domain"
	"github.com/shopspring/decimal"
)

// batchTotals are the totals recomputed from line items
type batchTotals struct {
	Gross      decimal.Decimal
	Net        decimal.Decimal
	Deductions decimal.Decimal
	Fees       decimal.Decimal
	Taxes      decimal.Decimal
}

func calculateTotals(payouts []domain.PayoutLineItem) batchTotals {
	totals := batchTotals{
		Gross:      decimal.Zero,
		Net:        decimal.Zero,
		Deductions: decimal.Zero,
		Fees:       decimal.Zero,
		Taxes:      decimal.Zero,
	}
	for i := range payouts {
		item := &payouts[i]
		totals.Gross = totals.Gross.Add(item.Gross())
		totals.Net = totals.Net.Add(item.Net())
		totals.Deductions = totals.Deductions.Add(valueOr(item.Deductions))
		totals.Fees = totals.Fees.Add(valueOr(item.Fees))
		totals.Taxes = totals.Taxes.Add(valueOr(item.Taxes))
	}
	return totals
}

// reconcile recomputes batch totals from the line items and compares them to
// the declared ones. It reads the batch only, so repeated runs agree.
func reconcile(rc *runContext) {
	b := rc.batch
	if b.Payouts == nil {
		return
	}

	totals := calculateTotals(b.Payouts)

	// Gross and net drive disbursement, so they block; the rest are advisory.
	compareTotal(rc, b.TotalGrossAmount, totals.Gross, "total_gross_amount", domain.CodeGrossTotalMismatch, true)
	compareTotal(rc, b.TotalNetAmount, totals.Net, "total_net_amount", domain.CodeNetTotalMismatch, true)
	compareTotal(rc, b.TotalDeductions, totals.Deductions, "total_deductions", domain.CodeDeductionsTotalMismatch, false)
	compareTotal(rc, b.TotalFees, totals.Fees, "total_fees", domain.CodeFeesTotalMismatch, false)
	compareTotal(rc, b.TotalTaxes, totals.Taxes, "total_taxes", domain.CodeTaxesTotalMismatch, false)

	if b.TotalGrossAmount != nil && b.TotalNetAmount != nil && b.TotalNetAmount.GreaterThan(*b.TotalGrossAmount) {
		rc.acc.addError(domain.CodeNetExceedsGrossTotal, "total_net_amount",
			"declared net total %s exceeds declared gross total %s",
			b.TotalNetAmount.String(), b.TotalGrossAmount.String())
	}

	for i := range b.Payouts {
		reconcileLineItem(rc, i, &b.Payouts[i])
	}

	checkCurrencyConversion(rc)
	checkPrecision(rc)
}

func compareTotal(rc *runContext, declared *decimal.Decimal, calculated decimal.Decimal, field, code string, blocking bool) {
	if declared == nil {
		return
	}
	if withinTolerance(*declared, calculated, rc.policy.Tolerance) {
		return
	}

	diff := declared.Sub(calculated)
	if blocking {
		rc.acc.addError(code, field, "%s %s does not match calculated %s (difference %s)",
			field, declared.String(), calculated.String(), diff.String())
		return
	}
	rc.acc.addWarning(code, field, "%s %s does not match calculated %s (difference %s)",
		field, declared.String(), calculated.String(), diff.String())
}

func reconcileLineItem(rc *runContext, i int, item *domain.PayoutLineItem) {
	if item.GrossAmount != nil && item.NetAmount != nil {
		expected := item.GrossAmount.Sub(item.TotalDeducted())
		if !withinTolerance(*item.NetAmount, expected, rc.policy.Tolerance) {
			// Manual adjustments are legitimate, so this never blocks.
			rc.acc.addWarning(domain.CodeCalculationMismatch, itemField(i, "net_amount"),
				"payout %d net amount %s differs from gross minus deductions (%s)",
				i, item.NetAmount.String(), expected.String())
		}
	}

	checkRateRange(rc, item.FeeRate, itemField(i, "fee_rate"))
	checkRateRange(rc, item.TaxRate, itemField(i, "tax_rate"))
	checkRateRange(rc, item.WithholdingRate, itemField(i, "withholding_rate"))

	if item.FeeRate != nil && item.FeeRate.GreaterThan(rc.policy.HighFeeRate) && item.FeeRate.LessThanOrEqual(decimal.NewFromInt(1)) {
		rc.acc.addWarning(domain.CodeHighFeeRate, itemField(i, "fee_rate"),
			"payout %d fee rate %s is above %s", i, item.FeeRate.String(), rc.policy.HighFeeRate.String())
	}
}

func checkRateRange(rc *runContext, rate *decimal.Decimal, field string) {
	if rate == nil {
		return
	}
	if !inRange(*rate, decimal.Zero, decimal.NewFromInt(1)) {
		rc.acc.addError(domain.CodeInvalidRate, field, "%s must be between 0 and 1 (got %s)", field, rate.String())
	}
}

// checkCurrencyConversion requires an exchange rate for every foreign currency
func checkCurrencyConversion(rc *runContext) {
	b := rc.batch
	foreign := newOrderedSet()
	count := 0
	for i := range b.Payouts {
		item := &b.Payouts[i]
		if item.IsForeignCurrency(b.Currency) {
			foreign.add(item.EffectiveCurrency(b.Currency))
			count++
		}
	}
	if count == 0 {
		return
	}

	rc.acc.addInfo(domain.CodeCurrencyConversionNeeded, "payouts",
		"%d line items require conversion to %s from %s", count, b.Currency, foreign)

	for _, currency := range foreign.items {
		if _, ok := b.RateFor(currency); !ok {
			rc.acc.addError(domain.CodeMissingExchangeRate, "exchange_rates."+currency,
				"no exchange rate provided for %s to %s", currency, b.Currency)
		}
	}
}

// checkPrecision flags monetary values with more than 2 decimals and rates with more than 6
func checkPrecision(rc *runContext) {
	b := rc.batch
	money := rc.policy.MoneyPrecision

	precisionCheck(rc, b.TotalGrossAmount, "total_gross_amount", money)
	precisionCheck(rc, b.TotalNetAmount, "total_net_amount", money)
	precisionCheck(rc, b.TotalDeductions, "total_deductions", money)
	precisionCheck(rc, b.TotalFees, "total_fees", money)
	precisionCheck(rc, b.TotalTaxes, "total_taxes", money)

	for i := range b.Payouts {
		item := &b.Payouts[i]
		precisionCheck(rc, item.GrossAmount, itemField(i, "gross_amount"), money)
		precisionCheck(rc, item.NetAmount, itemField(i, "net_amount"), money)
		precisionCheck(rc, item.Deductions, itemField(i, "deductions"), money)
		precisionCheck(rc, item.Fees, itemField(i, "fees"), money)
		precisionCheck(rc, item.Taxes, itemField(i, "taxes"), money)
		precisionCheck(rc, item.WithholdingTax, itemField(i, "withholding_tax"), money)
		precisionCheck(rc, item.BackupWithholding, itemField(i, "backup_withholding"), money)
	}

	rates := rc.policy.ExchangeRatePrecision
	precisionCheck(rc, b.ExchangeRate, "exchange_rate", rates)
	for _, currency := range sortedKeys(b.ExchangeRates) {
		rate := b.ExchangeRates[currency]
		precisionCheck(rc, &rate, "exchange_rates."+currency, rates)
	}
}

func precisionCheck(rc *runContext, value *decimal.Decimal, field string, places int32) {
	if value == nil || !exceedsPrecision(*value, places) {
		return
	}
	rc.acc.addWarning(domain.CodeExcessivePrecision, field,
		"%s has more than %d decimal places (%s)", field, places, value.String())
}

func valueOr(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
