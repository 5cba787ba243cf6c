package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/kevin07696/payout-validation/internal/domain"
	"github.com/kevin07696/payout-validation/internal/domain/ports"
)

const (
	insertReportQuery = `
INSERT INTO validation_reports
    (id, batch_id, mode, valid, error_count, warning_count, risk_score, compliance_score, validated_at, result)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	insertIssueQuery = `
INSERT INTO validation_report_issues (report_id, position, severity, code, field, message)
VALUES ($1, $2, $3, $4, $5, $6)`

	selectReportQuery = `SELECT result FROM validation_reports WHERE id = $1`
)

// ReportRepository archives validation results. The full result is kept as
// JSONB; issues are also flattened into rows for reporting by code.
type ReportRepository struct {
	db TxBeginner
}

var _ ports.ReportRepository = (*ReportRepository)(nil)

// NewReportRepository creates a repository over db
func NewReportRepository(db TxBeginner) *ReportRepository {
	return &ReportRepository{db: db}
}

// reportRow is the column projection of a result
type reportRow struct {
	id              uuid.UUID
	batchID         string
	mode            string
	valid           bool
	errorCount      int
	warningCount    int
	riskScore       pgtype.Int4
	complianceScore pgtype.Int4
	payload         []byte
}

type issueRow struct {
	severity string
	code     string
	field    pgtype.Text
	message  string
}

func toReportRow(result *domain.ValidationResult) (reportRow, error) {
	id, err := uuid.Parse(result.ID)
	if err != nil {
		return reportRow{}, fmt.Errorf("result id %q is not a UUID: %w", result.ID, err)
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return reportRow{}, fmt.Errorf("marshal result: %w", err)
	}

	row := reportRow{
		id:           id,
		batchID:      result.BatchID,
		mode:         string(result.Mode),
		valid:        result.Valid,
		errorCount:   len(result.Errors),
		warningCount: len(result.Warnings),
		payload:      payload,
	}
	row.riskScore, row.complianceScore = scoreColumns(result.Summary)
	return row, nil
}

func toIssueRows(result *domain.ValidationResult) []issueRow {
	rows := make([]issueRow, 0, len(result.Errors)+len(result.Warnings))
	for _, issue := range result.Errors {
		rows = append(rows, newIssueRow("error", issue))
	}
	for _, issue := range result.Warnings {
		severity := string(issue.Severity)
		if severity == "" {
			severity = string(domain.SeverityWarning)
		}
		rows = append(rows, newIssueRow(severity, issue))
	}
	return rows
}

func newIssueRow(severity string, issue domain.Issue) issueRow {
	return issueRow{
		severity: severity,
		code:     issue.Code,
		field:    textOrNull(issue.Field),
		message:  issue.Message,
	}
}

// Save stores the result and its issues in one transaction
func (r *ReportRepository) Save(ctx context.Context, result *domain.ValidationResult) error {
	row, err := toReportRow(result)
	if err != nil {
		return domain.WrapError(domain.ErrorCodeReportSaveFailed, "invalid report", err)
	}
	issues := toIssueRows(result)

	err = WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, insertReportQuery,
			row.id, row.batchID, row.mode, row.valid, row.errorCount, row.warningCount,
			row.riskScore, row.complianceScore, result.ValidatedAt, row.payload,
		); err != nil {
			return fmt.Errorf("insert report: %w", err)
		}

		batch := &pgx.Batch{}
		for i, issue := range issues {
			batch.Queue(insertIssueQuery, row.id, i, issue.severity, issue.code, issue.field, issue.message)
		}
		if batch.Len() == 0 {
			return nil
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return domain.WrapError(domain.ErrorCodeReportSaveFailed, "failed to archive validation report", err)
	}
	return nil
}

// GetByID loads an archived result
func (r *ReportRepository) GetByID(ctx context.Context, id string) (*domain.ValidationResult, error) {
	reportID, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeInvalidRequest, "report id must be a UUID", err)
	}

	var payload []byte
	if err := r.db.QueryRow(ctx, selectReportQuery, reportID).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrReportNotFound
		}
		return nil, domain.WrapError(domain.ErrorCodeDatabaseError, "failed to load validation report", err)
	}

	var result domain.ValidationResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, domain.WrapError(domain.ErrorCodeDatabaseError, "stored report is corrupt", err)
	}
	return &result, nil
}
