package fixtures

import (
	"fmt"

	"github.com/kevin07696/payout-validation/internal/domain"
	"github.com/shopspring/decimal"
)

// BatchBuilder provides fluent API for building test payout batches.
// Totals are left undeclared until WithDeclaredTotals or an explicit setter is used.
type BatchBuilder struct {
	batch *domain.PayoutBatch
}

// NewBatch creates a new batch builder with sensible defaults:
// a January 2024 USD batch in calculated status with a complete audit trail.
func NewBatch() *BatchBuilder {
	return &BatchBuilder{
		batch: &domain.PayoutBatch{
			ID:                "batch-001",
			PeriodStart:       "2024-01-01",
			PeriodEnd:         "2024-01-31",
			Currency:          "USD",
			Status:            domain.BatchStatusCalculated,
			Payouts:           []domain.PayoutLineItem{},
			CreatedBy:         "ops@example.com",
			CalculationMethod: "revenue_share",
			CalculationNotes:  "monthly creator payouts",
		},
	}
}

func (b *BatchBuilder) WithID(id string) *BatchBuilder {
	b.batch.ID = id
	return b
}

func (b *BatchBuilder) WithPeriod(start, end string) *BatchBuilder {
	b.batch.PeriodStart = start
	b.batch.PeriodEnd = end
	return b
}

func (b *BatchBuilder) WithCurrency(currency string) *BatchBuilder {
	b.batch.Currency = currency
	return b
}

func (b *BatchBuilder) WithStatus(status domain.BatchStatus) *BatchBuilder {
	b.batch.Status = status
	return b
}

func (b *BatchBuilder) Approved(by string) *BatchBuilder {
	b.batch.Status = domain.BatchStatusApproved
	b.batch.ApprovedBy = by
	if by != "" {
		b.batch.ApprovalDate = "2024-02-01"
	}
	return b
}

func (b *BatchBuilder) WithPayouts(items ...domain.PayoutLineItem) *BatchBuilder {
	b.batch.Payouts = append(b.batch.Payouts, items...)
	return b
}

// WithoutPayouts clears the payouts field entirely (absent, not empty)
func (b *BatchBuilder) WithoutPayouts() *BatchBuilder {
	b.batch.Payouts = nil
	return b
}

func (b *BatchBuilder) WithTotalGross(amount string) *BatchBuilder {
	b.batch.TotalGrossAmount = Dec(amount)
	return b
}

func (b *BatchBuilder) WithTotalNet(amount string) *BatchBuilder {
	b.batch.TotalNetAmount = Dec(amount)
	return b
}

func (b *BatchBuilder) WithTotalDeductions(amount string) *BatchBuilder {
	b.batch.TotalDeductions = Dec(amount)
	return b
}

// WithDeclaredTotals declares gross, net and deductions equal to the line item sums
func (b *BatchBuilder) WithDeclaredTotals() *BatchBuilder {
	gross, net, deductions := Dec("0"), Dec("0"), Dec("0")
	for i := range b.batch.Payouts {
		item := &b.batch.Payouts[i]
		*gross = gross.Add(item.Gross())
		*net = net.Add(item.Net())
		if item.Deductions != nil {
			*deductions = deductions.Add(*item.Deductions)
		}
	}
	b.batch.TotalGrossAmount = gross
	b.batch.TotalNetAmount = net
	b.batch.TotalDeductions = deductions
	return b
}

func (b *BatchBuilder) WithExchangeRate(currency, rate string) *BatchBuilder {
	if b.batch.ExchangeRates == nil {
		b.batch.ExchangeRates = map[string]decimal.Decimal{}
	}
	b.batch.ExchangeRates[currency] = *Dec(rate)
	return b
}

func (b *BatchBuilder) WithDocuments() *BatchBuilder {
	b.batch.CalculationReport = &domain.DocumentRef{ID: "calc-report-1"}
	b.batch.ApprovalRecord = &domain.DocumentRef{ID: "approval-record-1"}
	return b
}

func (b *BatchBuilder) WithScheduledDate(date string) *BatchBuilder {
	b.batch.ScheduledProcessingDate = date
	return b
}

func (b *BatchBuilder) Rush() *BatchBuilder {
	b.batch.RushProcessing = true
	return b
}

func (b *BatchBuilder) Modify(fn func(batch *domain.PayoutBatch)) *BatchBuilder {
	fn(b.batch)
	return b
}

func (b *BatchBuilder) Build() *domain.PayoutBatch {
	return b.batch
}

// PayoutBuilder provides fluent API for building payout line items.
type PayoutBuilder struct {
	item domain.PayoutLineItem
}

// NewPayout creates a bank transfer line item with gross == net == amount
func NewPayout(payeeID, amount string) *PayoutBuilder {
	return &PayoutBuilder{
		item: domain.PayoutLineItem{
			PayeeID:       payeeID,
			GrossAmount:   Dec(amount),
			NetAmount:     Dec(amount),
			PaymentMethod: domain.PaymentMethodBankTransfer,
			PaymentDetails: &domain.PaymentDetails{
				AccountNumber: "000123456789",
				RoutingNumber: "021000021",
			},
		},
	}
}

func (p *PayoutBuilder) WithGross(amount string) *PayoutBuilder {
	p.item.GrossAmount = Dec(amount)
	return p
}

func (p *PayoutBuilder) WithNet(amount string) *PayoutBuilder {
	p.item.NetAmount = Dec(amount)
	return p
}

func (p *PayoutBuilder) WithDeductions(amount string) *PayoutBuilder {
	p.item.Deductions = Dec(amount)
	return p
}

func (p *PayoutBuilder) WithFees(amount string) *PayoutBuilder {
	p.item.Fees = Dec(amount)
	return p
}

func (p *PayoutBuilder) WithFeeRate(rate string) *PayoutBuilder {
	p.item.FeeRate = Dec(rate)
	return p
}

func (p *PayoutBuilder) WithCurrency(currency string) *PayoutBuilder {
	p.item.Currency = currency
	return p
}

func (p *PayoutBuilder) WithStatus(status domain.PayoutStatus) *PayoutBuilder {
	p.item.Status = status
	return p
}

func (p *PayoutBuilder) WithMethod(method domain.PaymentMethod, details *domain.PaymentDetails) *PayoutBuilder {
	p.item.PaymentMethod = method
	p.item.PaymentDetails = details
	return p
}

func (p *PayoutBuilder) Crypto(wallet, network string) *PayoutBuilder {
	p.item.PaymentMethod = domain.PaymentMethodCrypto
	p.item.PaymentDetails = &domain.PaymentDetails{WalletAddress: wallet, Network: network}
	return p
}

func (p *PayoutBuilder) PayPal(email string) *PayoutBuilder {
	p.item.PaymentMethod = domain.PaymentMethodPayPal
	p.item.PaymentDetails = &domain.PaymentDetails{Email: email}
	return p
}

func (p *PayoutBuilder) WithBeneficiaryCountry(country string) *PayoutBuilder {
	p.item.BeneficiaryCountry = country
	return p
}

func (p *PayoutBuilder) Modify(fn func(item *domain.PayoutLineItem)) *PayoutBuilder {
	fn(&p.item)
	return p
}

func (p *PayoutBuilder) Build() domain.PayoutLineItem {
	return p.item
}

// Payouts builds n bank transfer line items for distinct payees, each for amount
func Payouts(n int, amount string) []domain.PayoutLineItem {
	items := make([]domain.PayoutLineItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, NewPayout(fmt.Sprintf("payee-%03d", i), amount).Build())
	}
	return items
}
