package postgres

import (
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/kevin07696/payout-validation/internal/domain"
)

// textOrNull stores empty strings as NULL
func textOrNull(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// scoreColumns returns the risk and compliance scores, NULL when the run
// produced no summary
func scoreColumns(summary *domain.BatchSummary) (risk, compliance pgtype.Int4) {
	if summary == nil {
		return pgtype.Int4{Valid: false}, pgtype.Int4{Valid: false}
	}
	return pgtype.Int4{Int32: int32(summary.RiskScore), Valid: true},
		pgtype.Int4{Int32: int32(summary.ComplianceScore), Valid: true}
}
