package validation

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/kevin07696/payout-validation/internal/domain"
	"github.com/kevin07696/payout-validation/internal/domain/ports"
	validationsvc "github.com/kevin07696/payout-validation/internal/services/validation"
	"github.com/kevin07696/payout-validation/pkg/observability"
	"github.com/kevin07696/payout-validation/pkg/resilience"
	"github.com/kevin07696/payout-validation/pkg/shutdown"
)

const maxBodyBytes = 10 << 20

// Validator is the engine surface the handler drives
type Validator interface {
	ports.PayoutValidationService
	RejectMalformed(mode domain.ValidationMode, field, message string) *domain.ValidationResult
}

// Handler serves the payout batch validation API
type Handler struct {
	validator Validator
	payees    ports.PayeeDirectory
	reports   ports.ReportRepository
	logger    ports.Logger
	timeouts  *resilience.TimeoutConfig
	backoff   resilience.BackoffStrategy
	attempts  int
	inflight  *shutdown.InFlightTracker
	directory *validationsvc.DirectoryCheck
}

// Option configures a Handler
type Option func(*Handler)

// WithPayeeDirectory enables payee existence checks in creation mode
func WithPayeeDirectory(d ports.PayeeDirectory) Option {
	return func(h *Handler) { h.payees = d }
}

// WithReportRepository archives every result
func WithReportRepository(r ports.ReportRepository) Option {
	return func(h *Handler) { h.reports = r }
}

// WithTimeouts overrides the request timeout hierarchy
func WithTimeouts(tc *resilience.TimeoutConfig) Option {
	return func(h *Handler) { h.timeouts = tc }
}

// WithLookupRetry sets the retry policy for payee lookups
func WithLookupRetry(strategy resilience.BackoffStrategy, attempts int) Option {
	return func(h *Handler) {
		h.backoff = strategy
		h.attempts = attempts
	}
}

// WithInFlightTracker lets shutdown drain running validations
func WithInFlightTracker(t *shutdown.InFlightTracker) Option {
	return func(h *Handler) { h.inflight = t }
}

// NewHandler creates a handler around the validation engine
func NewHandler(validator Validator, logger ports.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = ports.NopLogger{}
	}
	h := &Handler{
		validator: validator,
		logger:    logger,
		timeouts:  resilience.DefaultTimeoutConfig(),
		backoff:   resilience.DirectoryBackoff(),
		attempts:  3,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.payees != nil {
		h.directory = validationsvc.NewDirectoryCheck(h.payees, logger, h.timeouts, h.backoff, h.attempts)
	}
	return h
}

// ValidateCreation handles POST /validate/creation
func (h *Handler) ValidateCreation(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, domain.ModeCreation, func(ctx context.Context, body []byte) (*domain.ValidationResult, error) {
		var req creationRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return nil, err
		}
		opts := ports.DefaultCreationOptions()
		if req.Options != nil {
			opts = *req.Options
		}
		result := h.validator.ValidateForCreation(ctx, req.Batch, opts)
		if opts.ValidatePayees {
			h.directory.Apply(ctx, req.Batch, result)
		}
		return result, nil
	})
}

// ValidateProcessing handles POST /validate/processing
func (h *Handler) ValidateProcessing(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, domain.ModeProcessing, func(ctx context.Context, body []byte) (*domain.ValidationResult, error) {
		var req processingRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return nil, err
		}
		opts := ports.DefaultProcessingOptions()
		if req.Options != nil {
			opts = *req.Options
		}
		return h.validator.ValidateForProcessing(ctx, req.Batch, opts), nil
	})
}

// ValidateCompliance handles POST /validate/compliance
func (h *Handler) ValidateCompliance(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, domain.ModeCompliance, func(ctx context.Context, body []byte) (*domain.ValidationResult, error) {
		var req complianceRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return nil, err
		}
		opts := ports.DefaultComplianceOptions()
		if req.Options != nil {
			opts = *req.Options
		}
		return h.validator.ValidateForCompliance(ctx, req.Batch, req.Jurisdictions, opts), nil
	})
}

// GetReport handles GET /validation-reports/{id}
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	if h.reports == nil {
		writeError(w, http.StatusServiceUnavailable, "REPORTS_DISABLED", "report archive is not configured")
		return
	}

	result, err := h.reports.GetByID(r.Context(), chi.URLParam(r, "id"))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, result)
	case errors.Is(err, ports.ErrReportNotFound):
		writeError(w, http.StatusNotFound, "REPORT_NOT_FOUND", "validation report not found")
	case domain.IsRequestError(err):
		writeError(w, http.StatusBadRequest, string(domain.GetErrorCode(err)), err.Error())
	case domain.IsCollaboratorError(err):
		h.logger.Warn("report archive unavailable", ports.Err(err))
		writeError(w, http.StatusServiceUnavailable, string(domain.GetErrorCode(err)), "report archive is unavailable")
	default:
		h.logger.Error("failed to load validation report", ports.Err(err))
		writeError(w, http.StatusInternalServerError, string(domain.ErrorCodeInternalError), "failed to load validation report")
	}
}

type decodeAndValidate func(ctx context.Context, body []byte) (*domain.ValidationResult, error)

// serve reads the body, runs the mode and archives the result. Decode
// failures split in two: unparseable JSON is a 400, a well-formed body with
// wrongly typed values gets an invalid_field_type verdict.
func (h *Handler) serve(w http.ResponseWriter, r *http.Request, mode domain.ValidationMode, run decodeAndValidate) {
	if h.inflight != nil {
		if !h.inflight.Add() {
			writeError(w, http.StatusServiceUnavailable, "SHUTTING_DOWN", "service is shutting down")
			return
		}
		defer h.inflight.Done()
	}

	ctx, cancel := h.timeouts.HandlerContext(r.Context())
	defer cancel()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, string(domain.ErrorCodeInvalidRequest), "request body is too large")
			return
		}
		writeError(w, http.StatusBadRequest, string(domain.ErrorCodeInvalidRequest), "failed to read request body")
		return
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		writeError(w, http.StatusBadRequest, string(domain.ErrorCodeInvalidRequest), "request body is empty")
		return
	}
	if !json.Valid(body) {
		writeError(w, http.StatusBadRequest, string(domain.ErrorCodeInvalidRequest), "request body is not valid JSON")
		return
	}

	result, err := run(ctx, body)
	if err != nil {
		field, message := describeDecodeError(mode, body, err)
		h.logger.Debug("batch rejected as malformed",
			ports.String("mode", string(mode)),
			ports.String("field", field),
			ports.Err(err))
		result = h.validator.RejectMalformed(mode, field, message)
	}

	h.archive(ctx, result)
	writeJSON(w, http.StatusOK, result)
}

// archive saves the result when a repository is configured. Failures are
// logged and counted; the caller still gets its verdict.
func (h *Handler) archive(ctx context.Context, result *domain.ValidationResult) {
	if h.reports == nil {
		return
	}
	archiveCtx, cancel := h.timeouts.ArchiveContext(ctx)
	defer cancel()

	if err := h.reports.Save(archiveCtx, result); err != nil {
		observability.RecordReportArchive("failed")
		h.logger.Error("failed to archive validation report",
			ports.String("result_id", result.ID),
			ports.String("batch_id", result.BatchID),
			ports.Err(err))
		return
	}
	observability.RecordReportArchive("saved")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
