package domain

// Issue codes emitted by the validation engine and its callers.
const (
	// Structural
	CodeMissingBatch         = "missing_batch"
	CodeMissingRequiredField = "missing_required_field"
	CodeInvalidFieldType     = "invalid_field_type"
	CodeInvalidDate          = "invalid_date"
	CodeInvalidPeriod        = "invalid_period"
	CodePeriodTooShort       = "period_too_short"
	CodePeriodTooLong        = "period_too_long"
	CodeUnrecognizedCurrency = "unrecognized_currency"
	CodeInvalidBatchStatus   = "invalid_batch_status"
	CodeInvalidPayoutStatus  = "invalid_payout_status"
	CodeInvalidPaymentMethod = "invalid_payment_method"
	CodeMissingPayeeID       = "missing_payee_id"
	CodeInvalidPayeeID       = "invalid_payee_id"
	CodeNegativeAmount       = "negative_amount"
	CodeNetExceedsGross      = "net_exceeds_gross"
	CodeVerySmallAmount      = "very_small_amount"
	CodeVeryLargeAmount      = "very_large_amount"
	CodeInvalidExchangeRate  = "invalid_exchange_rate"
	CodeUnusualExchangeRate  = "unusual_exchange_rate"
	CodeMissingApprovalInfo  = "missing_approval_info"
	CodeNoPayouts            = "no_payouts"

	// Payee aggregation
	CodeMultipleCurrencies     = "multiple_currencies_per_payee"
	CodeInconsistentMethods    = "inconsistent_payment_methods"
	CodeHighTransactionCount   = "high_transaction_count"
	CodeVerySmallTotalPayout   = "very_small_total_payout"
	CodePayeeNotFound          = "payee_not_found"
	CodePayeeLookupUnavailable = "payee_lookup_unavailable"

	// Reconciliation
	CodeGrossTotalMismatch       = "gross_total_mismatch"
	CodeNetTotalMismatch         = "net_total_mismatch"
	CodeDeductionsTotalMismatch  = "deductions_total_mismatch"
	CodeFeesTotalMismatch        = "fees_total_mismatch"
	CodeTaxesTotalMismatch       = "taxes_total_mismatch"
	CodeNetExceedsGrossTotal     = "net_exceeds_gross_total"
	CodeCalculationMismatch      = "calculation_mismatch"
	CodeMissingExchangeRate      = "missing_exchange_rate"
	CodeCurrencyConversionNeeded = "currency_conversion_required"
	CodeExcessivePrecision       = "excessive_precision"
	CodeInvalidRate              = "invalid_rate"
	CodeHighFeeRate              = "high_fee_rate"

	// Thresholds and readiness
	CodeBelowGlobalMinimum         = "below_global_minimum"
	CodeAboveGlobalMaximum         = "above_global_maximum"
	CodeBelowPayeeMinimum          = "below_payee_minimum"
	CodeBelowMethodMinimum         = "below_method_minimum"
	CodeAboveMethodMaximum         = "above_method_maximum"
	CodeMissingPaymentMethod       = "missing_payment_method"
	CodeMissingBankDetails         = "missing_bank_details"
	CodeInvalidRoutingNumber       = "invalid_routing_number"
	CodeMissingSwiftCode           = "missing_swift_code"
	CodeMissingPayPalEmail         = "missing_paypal_email"
	CodeInvalidPayPalEmail         = "invalid_paypal_email"
	CodeMissingStripeAccount       = "missing_stripe_account"
	CodeMissingMailingAddress      = "missing_mailing_address"
	CodeMissingWalletAddress       = "missing_wallet_address"
	CodeMissingCryptoNetwork       = "missing_crypto_network"
	CodeMissingWalletID            = "missing_wallet_id"
	CodeInvalidStatusForProcessing = "invalid_status_for_processing"
	CodeScheduledDateInPast        = "scheduled_date_in_past"
	CodeWeekendProcessing          = "weekend_processing"
	CodeSameDayLargeAmount         = "same_day_large_amount"
	CodeLargeBatchSize             = "large_batch_size"
	CodeCurrencyDiversity          = "currency_diversity"
	CodePaymentMethodDiversity     = "payment_method_diversity"
	CodeNonProcessablePayouts      = "non_processable_payouts"

	// Risk
	CodeHighRiskTransaction = "high_risk_transaction"
	CodeRoundAmountPattern  = "round_amount_pattern"
	CodeEqualAmountPattern  = "equal_amount_pattern"

	// Compliance
	CodeForm1099Required          = "form_1099_required"
	CodeBackupWithholdingMismatch = "backup_withholding_mismatch"
	CodeDAC7Reporting             = "dac7_reporting"
	CodeVATConsiderations         = "vat_considerations"
	CodeTaxDocumentsMissing       = "tax_documents_missing"
	CodeUnsupportedJurisdiction   = "unsupported_jurisdiction"
	CodeCTRReportingRequired      = "ctr_reporting_required"
	CodeCrossBorderCompliance     = "cross_border_compliance"
	CodeAMLRiskIndicators         = "aml_risk_indicators"
	CodeHighRiskJurisdiction      = "high_risk_jurisdiction"
	CodeMissingCalculationReport  = "missing_calculation_report"
	CodeMissingApprovalRecord     = "missing_approval_record"
	CodeMissingAuditField         = "missing_audit_field"
	CodeMissingApprovalDate       = "missing_approval_date"

	// Business rules
	CodeDuplicatePayoutEntries  = "duplicate_payout_entries"
	CodeRapidSuccessionPayouts  = "rapid_succession_payouts"
	CodePeriodNotEnded          = "period_not_ended"
	CodeRejectedPayoutsIncluded = "rejected_payouts_included"

	// Catch-all for faults inside the engine
	CodeValidationError = "validation_error"
)
