package ports

import (
	"context"
	"errors"

	"github.com/kevin07696/payout-validation/internal/domain"
)

// ErrReportNotFound is returned by GetByID for unknown ids
var ErrReportNotFound = errors.New("validation report not found")

// ReportRepository archives validation results for audit
type ReportRepository interface {
	Save(ctx context.Context, result *domain.ValidationResult) error
	GetByID(ctx context.Context, id string) (*domain.ValidationResult, error)
}
