package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BatchStatus represents the lifecycle status of a payout batch
type BatchStatus string

const (
	BatchStatusDraft      BatchStatus = "draft"
	BatchStatusCalculated BatchStatus = "calculated"
	BatchStatusApproved   BatchStatus = "approved"
	BatchStatusProcessing BatchStatus = "processing"
	BatchStatusSent       BatchStatus = "sent"
	BatchStatusCompleted  BatchStatus = "completed"
	BatchStatusFailed     BatchStatus = "failed"
	BatchStatusCancelled  BatchStatus = "cancelled"
	BatchStatusDisputed   BatchStatus = "disputed"
)

// IsValid reports whether the status is a known batch status
func (s BatchStatus) IsValid() bool {
	switch s {
	case BatchStatusDraft, BatchStatusCalculated, BatchStatusApproved,
		BatchStatusProcessing, BatchStatusSent, BatchStatusCompleted,
		BatchStatusFailed, BatchStatusCancelled, BatchStatusDisputed:
		return true
	}
	return false
}

// IsProcessable reports whether a batch in this status may be sent for processing
func (s BatchStatus) IsProcessable() bool {
	return s == BatchStatusCalculated || s == BatchStatusApproved
}

// PayoutStatus represents the status of a single line item
type PayoutStatus string

const (
	PayoutStatusPending    PayoutStatus = "pending"
	PayoutStatusApproved   PayoutStatus = "approved"
	PayoutStatusRejected   PayoutStatus = "rejected"
	PayoutStatusProcessing PayoutStatus = "processing"
	PayoutStatusSent       PayoutStatus = "sent"
	PayoutStatusCompleted  PayoutStatus = "completed"
	PayoutStatusFailed     PayoutStatus = "failed"
	PayoutStatusDisputed   PayoutStatus = "disputed"
	PayoutStatusCancelled  PayoutStatus = "cancelled"
)

// IsValid reports whether the status is a known line item status
func (s PayoutStatus) IsValid() bool {
	switch s {
	case PayoutStatusPending, PayoutStatusApproved, PayoutStatusRejected,
		PayoutStatusProcessing, PayoutStatusSent, PayoutStatusCompleted,
		PayoutStatusFailed, PayoutStatusDisputed, PayoutStatusCancelled:
		return true
	}
	return false
}

// IsTerminalFailure reports whether the line item can no longer be paid out
func (s PayoutStatus) IsTerminalFailure() bool {
	return s == PayoutStatusRejected || s == PayoutStatusFailed || s == PayoutStatusCancelled
}

// PaymentMethod represents how a payee receives funds
type PaymentMethod string

const (
	PaymentMethodBankTransfer  PaymentMethod = "bank_transfer"
	PaymentMethodWireTransfer  PaymentMethod = "wire_transfer"
	PaymentMethodACH           PaymentMethod = "ach"
	PaymentMethodPayPal        PaymentMethod = "paypal"
	PaymentMethodStripe        PaymentMethod = "stripe"
	PaymentMethodCheck         PaymentMethod = "check"
	PaymentMethodCrypto        PaymentMethod = "crypto"
	PaymentMethodDigitalWallet PaymentMethod = "digital_wallet"
)

// IsValid reports whether the payment method is supported
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodBankTransfer, PaymentMethodWireTransfer, PaymentMethodACH,
		PaymentMethodPayPal, PaymentMethodStripe, PaymentMethodCheck,
		PaymentMethodCrypto, PaymentMethodDigitalWallet:
		return true
	}
	return false
}

// MailingAddress is the postal destination for check payouts
type MailingAddress struct {
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// IsComplete reports whether the address carries enough to deliver a check
func (a *MailingAddress) IsComplete() bool {
	return a != nil && a.Line1 != "" && a.City != "" && a.PostalCode != "" && a.Country != ""
}

// PaymentDetails holds method-specific destination data.
// Only the fields relevant to the line item's payment method are expected.
type PaymentDetails struct {
	// Bank transfer, ACH, wire
	AccountNumber     string `json:"account_number,omitempty"`
	RoutingNumber     string `json:"routing_number,omitempty"`
	IBAN              string `json:"iban,omitempty"`
	SwiftCode         string `json:"swift_code,omitempty"`
	BankName          string `json:"bank_name,omitempty"`
	AccountHolderName string `json:"account_holder_name,omitempty"`

	// PayPal / digital wallets
	Email    string `json:"email,omitempty"`
	WalletID string `json:"wallet_id,omitempty"`
	Provider string `json:"provider,omitempty"`

	// Stripe Connect
	StripeAccountID string `json:"stripe_account_id,omitempty"`

	// Check
	MailingAddress *MailingAddress `json:"mailing_address,omitempty"`

	// Crypto
	WalletAddress string `json:"wallet_address,omitempty"`
	Network       string `json:"network,omitempty"`
}

// PayoutLineItem is one payee's entry within a batch.
// Amounts are pointers so that absent values can be told apart from zero.
type PayoutLineItem struct {
	PayeeID string `json:"payee_id"`

	GrossAmount       *decimal.Decimal `json:"gross_amount,omitempty"`
	NetAmount         *decimal.Decimal `json:"net_amount,omitempty"`
	Deductions        *decimal.Decimal `json:"deductions,omitempty"`
	Fees              *decimal.Decimal `json:"fees,omitempty"`
	Taxes             *decimal.Decimal `json:"taxes,omitempty"`
	WithholdingTax    *decimal.Decimal `json:"withholding_tax,omitempty"`
	BackupWithholding *decimal.Decimal `json:"backup_withholding,omitempty"`

	FeeRate         *decimal.Decimal `json:"fee_rate,omitempty"`
	TaxRate         *decimal.Decimal `json:"tax_rate,omitempty"`
	WithholdingRate *decimal.Decimal `json:"withholding_rate,omitempty"`

	PaymentMethod  PaymentMethod   `json:"payment_method,omitempty"`
	PaymentDetails *PaymentDetails `json:"payment_details,omitempty"`
	WalletAddress  string          `json:"wallet_address,omitempty"`

	Currency           string           `json:"currency,omitempty"`
	Status             PayoutStatus     `json:"status,omitempty"`
	MinimumThreshold   *decimal.Decimal `json:"minimum_threshold,omitempty"`
	BeneficiaryCountry string           `json:"beneficiary_country,omitempty"`
	LastPayoutAt       *time.Time       `json:"last_payout_at,omitempty"`
}

// Gross returns the gross amount or zero when absent
func (p *PayoutLineItem) Gross() decimal.Decimal {
	return valueOrZero(p.GrossAmount)
}

// Net returns the net amount or zero when absent
func (p *PayoutLineItem) Net() decimal.Decimal {
	return valueOrZero(p.NetAmount)
}

// TotalDeducted returns deductions + fees + taxes + withholding tax
func (p *PayoutLineItem) TotalDeducted() decimal.Decimal {
	return valueOrZero(p.Deductions).
		Add(valueOrZero(p.Fees)).
		Add(valueOrZero(p.Taxes)).
		Add(valueOrZero(p.WithholdingTax))
}

// NormalizeCurrency upper-cases and trims an ISO-4217 code
func NormalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// EffectiveCurrency returns the normalized line item currency, falling back to the batch currency
func (p *PayoutLineItem) EffectiveCurrency(batchCurrency string) string {
	if c := NormalizeCurrency(p.Currency); c != "" {
		return c
	}
	return NormalizeCurrency(batchCurrency)
}

// IsForeignCurrency reports whether the line item names a currency other than the batch's
func (p *PayoutLineItem) IsForeignCurrency(batchCurrency string) bool {
	return NormalizeCurrency(p.Currency) != "" && p.EffectiveCurrency(batchCurrency) != NormalizeCurrency(batchCurrency)
}

// CryptoWallet returns the wallet address from payment details or the top-level field
func (p *PayoutLineItem) CryptoWallet() string {
	if p.PaymentDetails != nil && p.PaymentDetails.WalletAddress != "" {
		return p.PaymentDetails.WalletAddress
	}
	return p.WalletAddress
}

// DocumentRef points at an externally stored audit document
type DocumentRef struct {
	ID        string     `json:"id,omitempty"`
	URL       string     `json:"url,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// PayoutBatch is the unit of work submitted for validation.
// Dates are kept as strings so malformed input reaches the validator instead of
// failing at decode time.
type PayoutBatch struct {
	ID string `json:"id,omitempty"`

	PeriodStart string      `json:"period_start,omitempty"`
	PeriodEnd   string      `json:"period_end,omitempty"`
	Currency    string      `json:"currency,omitempty"`
	Status      BatchStatus `json:"status,omitempty"`

	TotalGrossAmount *decimal.Decimal `json:"total_gross_amount,omitempty"`
	TotalNetAmount   *decimal.Decimal `json:"total_net_amount,omitempty"`
	TotalDeductions  *decimal.Decimal `json:"total_deductions,omitempty"`
	TotalFees        *decimal.Decimal `json:"total_fees,omitempty"`
	TotalTaxes       *decimal.Decimal `json:"total_taxes,omitempty"`

	ExchangeRate  *decimal.Decimal           `json:"exchange_rate,omitempty"`
	ExchangeRates map[string]decimal.Decimal `json:"exchange_rates,omitempty"`

	Payouts []PayoutLineItem `json:"payouts"`

	// Audit trail
	CreatedBy         string `json:"created_by,omitempty"`
	ApprovedBy        string `json:"approved_by,omitempty"`
	ApprovalDate      string `json:"approval_date,omitempty"`
	CalculationNotes  string `json:"calculation_notes,omitempty"`
	CalculationMethod string `json:"calculation_method,omitempty"`

	CalculationReport *DocumentRef `json:"calculation_report,omitempty"`
	ApprovalRecord    *DocumentRef `json:"approval_record,omitempty"`

	// Processing
	RequiresApproval        bool   `json:"requires_approval,omitempty"`
	ScheduledProcessingDate string `json:"scheduled_processing_date,omitempty"`
	Urgent                  bool   `json:"urgent,omitempty"`
	RushProcessing          bool   `json:"rush_processing,omitempty"`

	// Tax
	BackupWithholdingRequired bool `json:"backup_withholding_required,omitempty"`
	TaxDocumentsRequired      bool `json:"tax_documents_required,omitempty"`
	TaxDocumentsCollected     bool `json:"tax_documents_collected,omitempty"`
}

// CalculatedNet sums line item net amounts
func (b *PayoutBatch) CalculatedNet() decimal.Decimal {
	total := decimal.Zero
	for i := range b.Payouts {
		total = total.Add(b.Payouts[i].Net())
	}
	return total
}

// EffectiveNetTotal returns the declared net total, or the calculated one when undeclared
func (b *PayoutBatch) EffectiveNetTotal() decimal.Decimal {
	if b.TotalNetAmount != nil {
		return *b.TotalNetAmount
	}
	return b.CalculatedNet()
}

// RateFor returns the exchange rate for a currency, falling back to the global rate
func (b *PayoutBatch) RateFor(currency string) (decimal.Decimal, bool) {
	if rate, ok := b.ExchangeRates[currency]; ok {
		return rate, true
	}
	for code, rate := range b.ExchangeRates {
		if NormalizeCurrency(code) == NormalizeCurrency(currency) {
			return rate, true
		}
	}
	if b.ExchangeRate != nil {
		return *b.ExchangeRate, true
	}
	return decimal.Zero, false
}

// IsExpedited reports whether the batch asks for rush handling
func (b *PayoutBatch) IsExpedited() bool {
	return b.Urgent || b.RushProcessing
}

func valueOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
