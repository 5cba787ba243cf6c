package memory

import (
	"context"
	"sync"

	"github.com/kevin07696/payout-validation/internal/domain"
	"github.com/kevin07696/payout-validation/internal/domain/ports"
)

// PayeeDirectory is a fixed in-memory set of known payees, used by the CLI.
type PayeeDirectory struct {
	mu     sync.RWMutex
	payees map[string]struct{}
}

var _ ports.PayeeDirectory = (*PayeeDirectory)(nil)

// NewPayeeDirectory creates a directory seeded with ids
func NewPayeeDirectory(ids ...string) *PayeeDirectory {
	d := &PayeeDirectory{payees: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		d.payees[id] = struct{}{}
	}
	return d
}

// Add registers a payee
func (d *PayeeDirectory) Add(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.payees[id] = struct{}{}
}

func (d *PayeeDirectory) Exists(_ context.Context, payeeID string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.payees[payeeID]
	return ok, nil
}

// ReportRepository keeps archived results in memory. With a limit set, the
// oldest report is evicted once the limit is reached.
type ReportRepository struct {
	mu      sync.RWMutex
	reports map[string]domain.ValidationResult
	order   []string
	limit   int
}

var _ ports.ReportRepository = (*ReportRepository)(nil)

// NewReportRepository creates an empty repository
func NewReportRepository() *ReportRepository {
	return &ReportRepository{reports: make(map[string]domain.ValidationResult)}
}

// WithLimit caps the number of retained reports; zero keeps everything
func (r *ReportRepository) WithLimit(limit int) *ReportRepository {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.limit = limit
	return r
}

// Save stores a copy of the result
func (r *ReportRepository) Save(_ context.Context, result *domain.ValidationResult) error {
	if result == nil || result.ID == "" {
		return domain.NewDomainError(domain.ErrorCodeReportSaveFailed, "result id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.reports[result.ID]; exists {
		return domain.NewDomainError(domain.ErrorCodeReportSaveFailed, "report "+result.ID+" already archived")
	}
	if r.limit > 0 && len(r.order) >= r.limit {
		oldest := r.order[0]
		r.order = r.order[1:]
		delete(r.reports, oldest)
	}
	r.reports[result.ID] = cloneResult(result)
	r.order = append(r.order, result.ID)
	return nil
}

func (r *ReportRepository) GetByID(_ context.Context, id string) (*domain.ValidationResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.reports[id]
	if !ok {
		return nil, ports.ErrReportNotFound
	}
	out := cloneResult(&stored)
	return &out, nil
}

// Len returns the number of archived reports
func (r *ReportRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.reports)
}

func cloneResult(result *domain.ValidationResult) domain.ValidationResult {
	out := *result
	out.Errors = append([]domain.Issue(nil), result.Errors...)
	out.Warnings = append([]domain.Issue(nil), result.Warnings...)
	if result.Summary != nil {
		summary := *result.Summary
		summary.ProcessingReadiness.Issues = append([]string(nil), result.Summary.ProcessingReadiness.Issues...)
		out.Summary = &summary
	}
	return out
}
