package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/kevin07696/payout-validation/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// policyFile mirrors domain.ValidationPolicy with every field optional.
// Amounts and rates are quoted or bare YAML numbers parsed as decimals.
type policyFile struct {
	Tolerance             *string `yaml:"tolerance"`
	MoneyPrecision        *int32  `yaml:"money_precision"`
	ExchangeRatePrecision *int32  `yaml:"exchange_rate_precision"`
	MinExchangeRate       *string `yaml:"min_exchange_rate"`
	MaxExchangeRate       *string `yaml:"max_exchange_rate"`
	HighFeeRate           *string `yaml:"high_fee_rate"`

	MaxPeriodDays        *int     `yaml:"max_period_days"`
	SmallAmountThreshold *string  `yaml:"small_amount_threshold"`
	LargeAmountThreshold *string  `yaml:"large_amount_threshold"`
	SupportedCurrencies  []string `yaml:"supported_currencies"`

	PayeeMinimum            *string `yaml:"payee_minimum"`
	MaxTransactionsPerPayee *int    `yaml:"max_transactions_per_payee"`

	GlobalMinimum     *string             `yaml:"global_minimum"`
	GlobalMaximum     *string             `yaml:"global_maximum"`
	MethodBands       map[string]bandFile `yaml:"method_bands"`
	SameDayLimit      *string             `yaml:"same_day_limit"`
	MaxBatchSize      *int                `yaml:"max_batch_size"`
	CurrencyDiversity *int                `yaml:"currency_diversity"`
	MethodDiversity   *int                `yaml:"method_diversity"`

	RiskWeights            *riskWeightsFile `yaml:"risk_weights"`
	LargeAmountRisk        *string          `yaml:"large_amount_risk"`
	HighVolumeRisk         *int             `yaml:"high_volume_risk"`
	HighRiskScore          *int             `yaml:"high_risk_score"`
	ComplianceRiskScore    *int             `yaml:"compliance_risk_score"`
	RoundAmountMinimum     *string          `yaml:"round_amount_minimum"`
	RoundAmountRatio       *string          `yaml:"round_amount_ratio"`
	EqualAmountMinimumSize *int             `yaml:"equal_amount_minimum_size"`

	Form1099Threshold      *string  `yaml:"form_1099_threshold"`
	BackupWithholdingRate  *string  `yaml:"backup_withholding_rate"`
	CTRThreshold           *string  `yaml:"ctr_threshold"`
	AMLAmountThreshold     *string  `yaml:"aml_amount_threshold"`
	AMLCountThreshold      *int     `yaml:"aml_count_threshold"`
	HighRiskCountries      []string `yaml:"high_risk_countries"`
	EUJurisdictions        []string `yaml:"eu_jurisdictions"`
	MinHoursBetweenPayouts *int     `yaml:"min_hours_between_payouts"`
}

type bandFile struct {
	Min string `yaml:"min"`
	Max string `yaml:"max"`
}

type riskWeightsFile struct {
	LargeAmount   *int `yaml:"large_amount"`
	HighVolume    *int `yaml:"high_volume"`
	International *int `yaml:"international"`
	Rush          *int `yaml:"rush"`
	Crypto        *int `yaml:"crypto"`
}

// LoadPolicy returns the default policy, overlaid with the YAML file at path
// when path is non-empty.
func LoadPolicy(path string) (domain.ValidationPolicy, error) {
	if path == "" {
		return domain.DefaultPolicy(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.ValidationPolicy{}, domain.WrapError(domain.ErrorCodePolicyNotFound,
				fmt.Sprintf("policy file %s not found", path), err).WithDetail("path", path)
		}
		return domain.ValidationPolicy{}, fmt.Errorf("failed to read policy file: %w", err)
	}
	p, err := ParsePolicy(data)
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		domainErr.WithDetail("path", path)
	}
	return p, err
}

// ParsePolicy overlays a YAML document on the default policy. Unknown keys,
// malformed numbers and inconsistent thresholds fail with POLICY_INVALID.
func ParsePolicy(data []byte) (domain.ValidationPolicy, error) {
	var f policyFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return domain.ValidationPolicy{}, domain.WrapError(domain.ErrorCodePolicyInvalid, "policy file is not valid YAML", err)
	}

	p := domain.DefaultPolicy()
	o := overlay{}

	o.decimal(&p.Tolerance, f.Tolerance, "tolerance")
	setValue(&p.MoneyPrecision, f.MoneyPrecision)
	setValue(&p.ExchangeRatePrecision, f.ExchangeRatePrecision)
	o.decimal(&p.MinExchangeRate, f.MinExchangeRate, "min_exchange_rate")
	o.decimal(&p.MaxExchangeRate, f.MaxExchangeRate, "max_exchange_rate")
	o.decimal(&p.HighFeeRate, f.HighFeeRate, "high_fee_rate")

	setValue(&p.MaxPeriodDays, f.MaxPeriodDays)
	o.decimal(&p.SmallAmountThreshold, f.SmallAmountThreshold, "small_amount_threshold")
	o.decimal(&p.LargeAmountThreshold, f.LargeAmountThreshold, "large_amount_threshold")
	setList(&p.SupportedCurrencies, f.SupportedCurrencies)

	o.decimal(&p.PayeeMinimum, f.PayeeMinimum, "payee_minimum")
	setValue(&p.MaxTransactionsPerPayee, f.MaxTransactionsPerPayee)

	o.decimal(&p.GlobalMinimum, f.GlobalMinimum, "global_minimum")
	o.decimal(&p.GlobalMaximum, f.GlobalMaximum, "global_maximum")
	for name, band := range f.MethodBands {
		method := domain.PaymentMethod(strings.ToLower(name))
		parsed := domain.AmountBand{}
		o.decimal(&parsed.Min, &band.Min, "method_bands."+name+".min")
		o.decimal(&parsed.Max, &band.Max, "method_bands."+name+".max")
		p.MethodBands[method] = parsed
	}
	o.decimal(&p.SameDayLimit, f.SameDayLimit, "same_day_limit")
	setValue(&p.MaxBatchSize, f.MaxBatchSize)
	setValue(&p.CurrencyDiversity, f.CurrencyDiversity)
	setValue(&p.MethodDiversity, f.MethodDiversity)

	if w := f.RiskWeights; w != nil {
		setValue(&p.RiskWeights.LargeAmount, w.LargeAmount)
		setValue(&p.RiskWeights.HighVolume, w.HighVolume)
		setValue(&p.RiskWeights.International, w.International)
		setValue(&p.RiskWeights.Rush, w.Rush)
		setValue(&p.RiskWeights.Crypto, w.Crypto)
	}
	o.decimal(&p.LargeAmountRisk, f.LargeAmountRisk, "large_amount_risk")
	setValue(&p.HighVolumeRisk, f.HighVolumeRisk)
	setValue(&p.HighRiskScore, f.HighRiskScore)
	setValue(&p.ComplianceRiskScore, f.ComplianceRiskScore)
	o.decimal(&p.RoundAmountMinimum, f.RoundAmountMinimum, "round_amount_minimum")
	o.decimal(&p.RoundAmountRatio, f.RoundAmountRatio, "round_amount_ratio")
	setValue(&p.EqualAmountMinimumSize, f.EqualAmountMinimumSize)

	o.decimal(&p.Form1099Threshold, f.Form1099Threshold, "form_1099_threshold")
	o.decimal(&p.BackupWithholdingRate, f.BackupWithholdingRate, "backup_withholding_rate")
	o.decimal(&p.CTRThreshold, f.CTRThreshold, "ctr_threshold")
	o.decimal(&p.AMLAmountThreshold, f.AMLAmountThreshold, "aml_amount_threshold")
	setValue(&p.AMLCountThreshold, f.AMLCountThreshold)
	setList(&p.HighRiskCountries, upper(f.HighRiskCountries))
	setList(&p.EUJurisdictions, upper(f.EUJurisdictions))
	setValue(&p.MinHoursBetweenPayouts, f.MinHoursBetweenPayouts)

	if len(o.errs) > 0 {
		return domain.ValidationPolicy{}, domain.WrapError(domain.ErrorCodePolicyInvalid,
			"policy file has malformed values", errors.Join(o.errs...))
	}
	if err := p.Validate(); err != nil {
		return domain.ValidationPolicy{}, domain.WrapError(domain.ErrorCodePolicyInvalid, "policy is inconsistent", err)
	}
	return p, nil
}

// overlay collects parse errors so one load reports every bad key
type overlay struct {
	errs []error
}

func (o *overlay) decimal(dst *decimal.Decimal, src *string, key string) {
	if src == nil {
		return
	}
	d, err := decimal.NewFromString(strings.TrimSpace(*src))
	if err != nil {
		o.errs = append(o.errs, fmt.Errorf("%s: %q is not a decimal", key, *src))
		return
	}
	*dst = d
}

func setValue[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func setList(dst *[]string, src []string) {
	if src != nil {
		*dst = src
	}
}

func upper(list []string) []string {
	if list == nil {
		return nil
	}
	out := make([]string, len(list))
	for i, v := range list {
		out[i] = strings.ToUpper(strings.TrimSpace(v))
	}
	return out
}
