package validation

import (
	"strings"

	"github.com/kevin07696/payout-validation/internal/domain"
	"github.com/kevin07696/payout-validation/pkg/timeutil"
)

const jurisdictionUS = "US"

// normalizeJurisdictions upper-cases, trims and de-duplicates jurisdiction codes
func normalizeJurisdictions(jurisdictions []string) []string {
	set := newOrderedSet()
	for _, j := range jurisdictions {
		set.add(strings.ToUpper(strings.TrimSpace(j)))
	}
	return set.items
}

// checkJurisdictions reports codes that no rule set covers
func checkJurisdictions(rc *runContext, jurisdictions []string) {
	for _, j := range jurisdictions {
		if j == jurisdictionUS || rc.policy.IsEUJurisdiction(j) {
			continue
		}
		rc.acc.addInfo(domain.CodeUnsupportedJurisdiction, "jurisdictions",
			"no compliance rules are defined for jurisdiction %s", j)
	}
}

// checkTaxCompliance applies US and EU tax reporting rules
func checkTaxCompliance(rc *runContext, jurisdictions []string) {
	b := rc.batch
	policy := rc.policy

	eu := make([]string, 0, len(jurisdictions))
	for _, j := range jurisdictions {
		switch {
		case j == jurisdictionUS:
			checkUSTax(rc)
		case policy.IsEUJurisdiction(j):
			eu = append(eu, j)
		}
	}

	if len(eu) > 0 {
		list := strings.Join(eu, ", ")
		rc.acc.addInfo(domain.CodeDAC7Reporting, "jurisdictions",
			"DAC7 platform reporting may apply for %s", list)
		rc.acc.addInfo(domain.CodeVATConsiderations, "jurisdictions",
			"review VAT treatment of payouts for %s", list)
	}

	if b.TaxDocumentsRequired && !b.TaxDocumentsCollected {
		rc.acc.addWarning(domain.CodeTaxDocumentsMissing, "tax_documents_collected",
			"tax documents are required but have not been collected")
	}
}

func checkUSTax(rc *runContext) {
	b := rc.batch
	policy := rc.policy

	rc.payeeIndex().each(func(agg *payeeAggregate) {
		if agg.TotalGross.GreaterThanOrEqual(policy.Form1099Threshold) {
			rc.acc.addInfo(domain.CodeForm1099Required, payeeField(agg.PayeeID),
				"payee %s gross %s reaches the 1099 reporting threshold of %s",
				agg.PayeeID, agg.TotalGross.StringFixed(2), policy.Form1099Threshold.String())
		}
	})

	if !b.BackupWithholdingRequired {
		return
	}
	for i := range b.Payouts {
		item := &b.Payouts[i]
		if item.GrossAmount == nil {
			continue
		}
		expected := item.GrossAmount.Mul(policy.BackupWithholdingRate)
		actual := valueOr(item.BackupWithholding)
		if !withinTolerance(actual, expected, policy.Tolerance) {
			rc.acc.addWarning(domain.CodeBackupWithholdingMismatch, itemField(i, "backup_withholding"),
				"payout %d backup withholding %s should be %s (%s of gross)",
				i, actual.String(), expected.StringFixed(2), policy.BackupWithholdingRate.String())
		}
	}
}

// checkRegulatoryCompliance raises CTR, cross-border and AML notices
func checkRegulatoryCompliance(rc *runContext) {
	b := rc.batch
	policy := rc.policy
	total := b.EffectiveNetTotal()

	if total.GreaterThanOrEqual(policy.CTRThreshold) {
		rc.acc.addInfo(domain.CodeCTRReportingRequired, "total_net_amount",
			"batch total %s reaches the currency transaction report threshold of %s",
			total.StringFixed(2), policy.CTRThreshold.String())
	}

	if isInternational(b) {
		rc.acc.addInfo(domain.CodeCrossBorderCompliance, "payouts",
			"batch contains cross-border payouts; sanctions and reporting rules of each destination apply")
	}

	var indicators []string
	if total.GreaterThan(policy.AMLAmountThreshold) {
		indicators = append(indicators, "large total amount")
	}
	if len(b.Payouts) > policy.AMLCountThreshold {
		indicators = append(indicators, "high line item count")
	}

	flagged := 0
	for i := range b.Payouts {
		country := strings.ToUpper(b.Payouts[i].BeneficiaryCountry)
		if country == "" || !policy.IsHighRiskCountry(country) {
			continue
		}
		flagged++
		rc.acc.addInfo(domain.CodeHighRiskJurisdiction, itemField(i, "beneficiary_country"),
			"payout %d beneficiary country %s is on the high-risk list", i, country)
	}
	if flagged > 0 {
		indicators = append(indicators, "high-risk beneficiary countries")
	}

	if len(indicators) > 0 {
		rc.acc.addInfo(domain.CodeAMLRiskIndicators, "",
			"AML risk indicators present: %s", strings.Join(indicators, "; "))
	}
}

// checkDocumentation requires the audit artefacts an examiner asks for
func checkDocumentation(rc *runContext) {
	b := rc.batch
	if b.CalculationReport == nil {
		rc.acc.addWarning(domain.CodeMissingCalculationReport, "calculation_report",
			"no calculation report is attached to the batch")
	}
	if b.ApprovalRecord == nil {
		rc.acc.addWarning(domain.CodeMissingApprovalRecord, "approval_record",
			"no approval record is attached to the batch")
	}
	auditFields(rc, map[string]string{
		"created_by":         b.CreatedBy,
		"approved_by":        b.ApprovedBy,
		"calculation_method": b.CalculationMethod,
	}, "created_by", "approved_by", "calculation_method")
	checkApprovalDate(rc)
}

// checkBasicCompliance is the audit-trail subset run at creation time
func checkBasicCompliance(rc *runContext) {
	b := rc.batch
	auditFields(rc, map[string]string{
		"created_by":         b.CreatedBy,
		"calculation_method": b.CalculationMethod,
		"calculation_notes":  b.CalculationNotes,
	}, "created_by", "calculation_method", "calculation_notes")
	checkApprovalDate(rc)
}

// checkApprovalDate requires a parseable approval_date once an approver is
// recorded. Batches not yet approved carry neither field.
func checkApprovalDate(rc *runContext) {
	b := rc.batch
	if strings.TrimSpace(b.ApprovedBy) == "" {
		return
	}
	if b.ApprovalDate == "" {
		rc.acc.addWarning(domain.CodeMissingApprovalDate, "approval_date",
			"approved_by is set but approval_date is missing")
		return
	}
	if _, err := timeutil.ParseDate(b.ApprovalDate); err != nil {
		rc.acc.addWarning(domain.CodeInvalidDate, "approval_date",
			"approval_date is not a valid date: %q", b.ApprovalDate)
	}
}

func auditFields(rc *runContext, values map[string]string, order ...string) {
	for _, field := range order {
		if strings.TrimSpace(values[field]) == "" {
			rc.acc.addWarning(domain.CodeMissingAuditField, field, "audit field %s is missing", field)
		}
	}
}
