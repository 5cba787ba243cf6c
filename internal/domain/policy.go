package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AmountBand is an inclusive [Min, Max] range for a payment method
type AmountBand struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// RiskWeights holds the additive weights of the risk model
type RiskWeights struct {
	LargeAmount   int
	HighVolume    int
	International int
	Rush          int
	Crypto        int
}

// ValidationPolicy holds every threshold the engine applies.
// Tables are data so deployments and tests can inject their own values.
type ValidationPolicy struct {
	// Reconciliation
	Tolerance             decimal.Decimal
	MoneyPrecision        int32
	ExchangeRatePrecision int32
	MinExchangeRate       decimal.Decimal
	MaxExchangeRate       decimal.Decimal
	HighFeeRate           decimal.Decimal

	// Structural
	MaxPeriodDays        int
	SmallAmountThreshold decimal.Decimal
	LargeAmountThreshold decimal.Decimal
	SupportedCurrencies  []string

	// Payee aggregation
	PayeeMinimum            decimal.Decimal
	MaxTransactionsPerPayee int

	// Thresholds
	GlobalMinimum     decimal.Decimal
	GlobalMaximum     decimal.Decimal
	MethodBands       map[PaymentMethod]AmountBand
	SameDayLimit      decimal.Decimal
	MaxBatchSize      int
	CurrencyDiversity int
	MethodDiversity   int

	// Risk
	RiskWeights            RiskWeights
	LargeAmountRisk        decimal.Decimal
	HighVolumeRisk         int
	HighRiskScore          int
	ComplianceRiskScore    int
	RoundAmountMinimum     decimal.Decimal
	RoundAmountRatio       decimal.Decimal
	EqualAmountMinimumSize int

	// Compliance
	Form1099Threshold      decimal.Decimal
	BackupWithholdingRate  decimal.Decimal
	CTRThreshold           decimal.Decimal
	AMLAmountThreshold     decimal.Decimal
	AMLCountThreshold      int
	HighRiskCountries      []string
	EUJurisdictions        []string
	MinHoursBetweenPayouts int
}

// DefaultPolicy returns the stock thresholds
func DefaultPolicy() ValidationPolicy {
	return ValidationPolicy{
		Tolerance:             decimal.RequireFromString("0.01"),
		MoneyPrecision:        2,
		ExchangeRatePrecision: 6,
		MinExchangeRate:       decimal.RequireFromString("0.001"),
		MaxExchangeRate:       decimal.NewFromInt(1000),
		HighFeeRate:           decimal.RequireFromString("0.5"),

		MaxPeriodDays:        366,
		SmallAmountThreshold: decimal.NewFromInt(1),
		LargeAmountThreshold: decimal.NewFromInt(100000),
		SupportedCurrencies: []string{
			"USD", "EUR", "GBP", "CAD", "AUD", "JPY", "CHF", "SEK", "NOK", "DKK",
			"NZD", "MXN", "BRL", "INR", "CNY", "KRW", "SGD", "HKD", "ZAR", "PLN",
		},

		PayeeMinimum:            decimal.NewFromInt(5),
		MaxTransactionsPerPayee: 50,

		GlobalMinimum: decimal.NewFromInt(10),
		GlobalMaximum: decimal.NewFromInt(50000),
		MethodBands: map[PaymentMethod]AmountBand{
			PaymentMethodBankTransfer: {Min: decimal.NewFromInt(1), Max: decimal.NewFromInt(100000)},
			PaymentMethodWireTransfer: {Min: decimal.NewFromInt(10), Max: decimal.NewFromInt(500000)},
			PaymentMethodPayPal:       {Min: decimal.NewFromInt(1), Max: decimal.NewFromInt(10000)},
			PaymentMethodCheck:        {Min: decimal.NewFromInt(25), Max: decimal.NewFromInt(25000)},
			PaymentMethodCrypto:       {Min: decimal.NewFromInt(5), Max: decimal.NewFromInt(50000)},
		},
		SameDayLimit:      decimal.NewFromInt(10000),
		MaxBatchSize:      1000,
		CurrencyDiversity: 3,
		MethodDiversity:   3,

		RiskWeights: RiskWeights{
			LargeAmount:   20,
			HighVolume:    15,
			International: 10,
			Rush:          15,
			Crypto:        25,
		},
		LargeAmountRisk:        decimal.NewFromInt(25000),
		HighVolumeRisk:         100,
		HighRiskScore:          75,
		ComplianceRiskScore:    50,
		RoundAmountMinimum:     decimal.NewFromInt(500),
		RoundAmountRatio:       decimal.RequireFromString("0.8"),
		EqualAmountMinimumSize: 10,

		Form1099Threshold:      decimal.NewFromInt(600),
		BackupWithholdingRate:  decimal.RequireFromString("0.24"),
		CTRThreshold:           decimal.NewFromInt(10000),
		AMLAmountThreshold:     decimal.NewFromInt(50000),
		AMLCountThreshold:      200,
		HighRiskCountries:      []string{"AF", "IR", "KP", "MM", "SY", "YE"},
		EUJurisdictions:        []string{"DE", "FR", "GB", "IT", "ES"},
		MinHoursBetweenPayouts: 24,
	}
}

// Validate checks the policy for internally inconsistent values
func (p ValidationPolicy) Validate() error {
	if p.Tolerance.IsNegative() {
		return fmt.Errorf("tolerance must not be negative")
	}
	if p.GlobalMaximum.LessThan(p.GlobalMinimum) {
		return fmt.Errorf("global maximum %s is below global minimum %s", p.GlobalMaximum, p.GlobalMinimum)
	}
	if !p.MinExchangeRate.IsPositive() || p.MaxExchangeRate.LessThan(p.MinExchangeRate) {
		return fmt.Errorf("exchange rate range [%s, %s] is invalid", p.MinExchangeRate, p.MaxExchangeRate)
	}
	for method, band := range p.MethodBands {
		if !method.IsValid() {
			return fmt.Errorf("unknown payment method %q in method bands", method)
		}
		if band.Max.LessThan(band.Min) {
			return fmt.Errorf("band for %s has max %s below min %s", method, band.Max, band.Min)
		}
	}
	if p.MaxPeriodDays <= 0 {
		return fmt.Errorf("max period days must be positive")
	}
	return nil
}

// IsSupportedCurrency reports whether the currency appears in the policy list
func (p ValidationPolicy) IsSupportedCurrency(code string) bool {
	code = NormalizeCurrency(code)
	for _, c := range p.SupportedCurrencies {
		if NormalizeCurrency(c) == code {
			return true
		}
	}
	return false
}

// IsHighRiskCountry reports whether the country is on the AML watch list
func (p ValidationPolicy) IsHighRiskCountry(code string) bool {
	return containsString(p.HighRiskCountries, code)
}

// IsEUJurisdiction reports whether the jurisdiction gets DAC/VAT notices
func (p ValidationPolicy) IsEUJurisdiction(code string) bool {
	return containsString(p.EUJurisdictions, code)
}

func containsString(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
