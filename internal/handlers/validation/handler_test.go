package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kevin07696/payout-validation/internal/adapters/memory"
	"github.com/kevin07696/payout-validation/internal/domain"
	"github.com/kevin07696/payout-validation/internal/domain/ports"
	validationsvc "github.com/kevin07696/payout-validation/internal/services/validation"
	"github.com/kevin07696/payout-validation/internal/testutil/fixtures"
	"github.com/kevin07696/payout-validation/internal/testutil/mocks"
	"github.com/kevin07696/payout-validation/pkg/resilience"
	"github.com/kevin07696/payout-validation/pkg/shutdown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func cleanBatch() *domain.PayoutBatch {
	return fixtures.NewBatch().
		WithPayouts(fixtures.NewPayout("p1", "100").WithNet("90").WithDeductions("10").Build()).
		WithTotalGross("100").
		WithTotalNet("90").
		Build()
}

func newTestHandler(t *testing.T, opts ...Option) (*Handler, *mocks.MockLogger) {
	t.Helper()
	logger := mocks.NewMockLogger()
	svc, err := validationsvc.NewService(domain.DefaultPolicy(), logger, validationsvc.WithClock(fixtures.FixedClock(testNow)))
	require.NoError(t, err)

	base := []Option{
		WithTimeouts(resilience.TestTimeoutConfig()),
		WithLookupRetry(&resilience.FixedBackoff{Delay: time.Millisecond}, 2),
	}
	return NewHandler(svc, logger, append(base, opts...)...), logger
}

func post(t *testing.T, h http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var raw []byte
	switch b := body.(type) {
	case string:
		raw = []byte(b)
	default:
		var err error
		raw, err = json.Marshal(b)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) *domain.ValidationResult {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result domain.ValidationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	return &result
}

func hasField(issues []domain.Issue, code, field string) bool {
	for _, issue := range issues {
		if issue.Code == code && issue.Field == field {
			return true
		}
	}
	return false
}

func TestValidateEndpoints_CleanBatch(t *testing.T) {
	tests := []struct {
		name string
		path string
		body interface{}
		mode domain.ValidationMode
	}{
		{
			name: "creation",
			path: "/api/v1/payout-batches/validate/creation",
			body: map[string]interface{}{"batch": cleanBatch()},
			mode: domain.ModeCreation,
		},
		{
			name: "processing",
			path: "/api/v1/payout-batches/validate/processing",
			body: map[string]interface{}{"batch": cleanBatch()},
			mode: domain.ModeProcessing,
		},
		{
			name: "compliance",
			path: "/api/v1/payout-batches/validate/compliance",
			body: map[string]interface{}{"batch": cleanBatch(), "jurisdictions": []string{"US"}},
			mode: domain.ModeCompliance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandler(t)
			router := NewRouter(h, RouterConfig{})

			result := decodeResult(t, post(t, router, tt.path, tt.body))

			assert.Equal(t, tt.mode, result.Mode)
			assert.Equal(t, "batch-001", result.BatchID)
			assert.NotEmpty(t, result.ID)
			assert.NotNil(t, result.Summary)
		})
	}
}

func TestValidate_BadRequests(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "empty body", body: "", status: http.StatusBadRequest},
		{name: "whitespace body", body: "  \n", status: http.StatusBadRequest},
		{name: "syntax error", body: `{"batch": {`, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandler(t)
			router := NewRouter(h, RouterConfig{})

			rec := post(t, router, "/api/v1/payout-batches/validate/creation", tt.body)

			assert.Equal(t, tt.status, rec.Code)
			var resp errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, string(domain.ErrorCodeInvalidRequest), resp.Code)
		})
	}
}

func TestValidate_MissingBatch(t *testing.T) {
	h, _ := newTestHandler(t)

	result := decodeResult(t, post(t, NewRouter(h, RouterConfig{}), "/api/v1/payout-batches/validate/processing", `{}`))

	assert.False(t, result.Valid)
	assert.True(t, result.HasError(domain.CodeMissingBatch))
}

func TestValidate_WrongFieldType(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{name: "payouts not a list", body: `{"batch": {"id": "b1", "payouts": "none"}}`, field: "payouts"},
		{name: "batch not an object", body: `{"batch": 42}`, field: "batch"},
		{name: "nested line item field", body: `{"batch": {"payouts": [{"payee_id": 7}]}}`, field: "payouts[0].payee_id"},
		{name: "later line item", body: `{"batch": {"payouts": [{"payee_id": "p1"}, {"payee_id": "p2", "fees": true}]}}`, field: "payouts[1].fees"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandler(t)

			result := decodeResult(t, post(t, NewRouter(h, RouterConfig{}), "/api/v1/payout-batches/validate/creation", tt.body))

			assert.False(t, result.Valid)
			require.Len(t, result.Errors, 1)
			assert.Equal(t, domain.CodeInvalidFieldType, result.Errors[0].Code)
			assert.Equal(t, tt.field, result.Errors[0].Field)
			assert.Nil(t, result.Summary)
		})
	}
}

func TestValidate_UnparseableValueIsMalformed(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{
			name:  "batch decimal",
			body:  `{"batch": {"total_net_amount": "ten dollars", "payouts": []}}`,
			field: "total_net_amount",
		},
		{
			name:  "line item decimal",
			body:  `{"batch": {"payouts": [{"payee_id": "p1", "gross_amount": "abc"}]}}`,
			field: "payouts[0].gross_amount",
		},
		{
			name:  "exchange rate entry",
			body:  `{"batch": {"exchange_rates": {"EUR": "1.08", "GBP": "high"}, "payouts": []}}`,
			field: "exchange_rates.GBP",
		},
		{
			name:  "line item timestamp",
			body:  `{"batch": {"payouts": [{"payee_id": "p1", "last_payout_at": "yesterday"}]}}`,
			field: "payouts[0].last_payout_at",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandler(t)

			result := decodeResult(t, post(t, NewRouter(h, RouterConfig{}), "/api/v1/payout-batches/validate/creation", tt.body))

			assert.False(t, result.Valid)
			require.Len(t, result.Errors, 1)
			assert.Equal(t, domain.CodeInvalidFieldType, result.Errors[0].Code)
			assert.Equal(t, tt.field, result.Errors[0].Field)
			assert.Equal(t, tt.field+" is not a valid value", result.Errors[0].Message)
		})
	}
}

func TestValidateCreation_PayeeDirectory(t *testing.T) {
	batch := cleanBatch()
	batch.Payouts = append(batch.Payouts,
		fixtures.NewPayout("p2", "10").Build(),
		fixtures.NewPayout("p1", "5").Build())

	t.Run("unknown payee is an error", func(t *testing.T) {
		h, _ := newTestHandler(t, WithPayeeDirectory(memory.NewPayeeDirectory("p1")))

		result := decodeResult(t, post(t, NewRouter(h, RouterConfig{}), "/api/v1/payout-batches/validate/creation",
			map[string]interface{}{"batch": batch}))

		assert.False(t, result.Valid)
		assert.True(t, hasField(result.Errors, domain.CodePayeeNotFound, "payouts[1].payee_id"))
		assert.False(t, hasField(result.Errors, domain.CodePayeeNotFound, "payouts[0].payee_id"))
	})

	t.Run("lookup failure warns once", func(t *testing.T) {
		dir := new(mocks.MockPayeeDirectory)
		dir.On("Exists", mock.Anything, "p1").Return(false, errors.New("connection refused"))
		h, logger := newTestHandler(t, WithPayeeDirectory(dir))

		result := decodeResult(t, post(t, NewRouter(h, RouterConfig{}), "/api/v1/payout-batches/validate/creation",
			map[string]interface{}{"batch": batch}))

		assert.True(t, result.HasWarning(domain.CodePayeeLookupUnavailable))
		assert.False(t, result.HasError(domain.CodePayeeNotFound))
		dir.AssertNumberOfCalls(t, "Exists", 2)
		dir.AssertNotCalled(t, "Exists", mock.Anything, "p2")
		assert.Len(t, logger.Warns(), 1)
	})

	t.Run("retry recovers from a transient failure", func(t *testing.T) {
		dir := new(mocks.MockPayeeDirectory)
		dir.On("Exists", mock.Anything, "p1").Return(false, errors.New("timeout")).Once()
		dir.On("Exists", mock.Anything, "p1").Return(true, nil).Once()
		dir.On("Exists", mock.Anything, "p2").Return(true, nil).Once()
		h, _ := newTestHandler(t, WithPayeeDirectory(dir))

		result := decodeResult(t, post(t, NewRouter(h, RouterConfig{}), "/api/v1/payout-batches/validate/creation",
			map[string]interface{}{"batch": batch}))

		assert.False(t, result.HasWarning(domain.CodePayeeLookupUnavailable))
		assert.False(t, result.HasError(domain.CodePayeeNotFound))
		dir.AssertExpectations(t)
	})

	t.Run("disabled by options", func(t *testing.T) {
		dir := new(mocks.MockPayeeDirectory)
		h, _ := newTestHandler(t, WithPayeeDirectory(dir))

		decodeResult(t, post(t, NewRouter(h, RouterConfig{}), "/api/v1/payout-batches/validate/creation",
			map[string]interface{}{
				"batch":   batch,
				"options": ports.CreationOptions{ValidateCalculations: true},
			}))

		dir.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything)
	})
}

func TestValidate_ArchivesResult(t *testing.T) {
	repo := memory.NewReportRepository()
	h, _ := newTestHandler(t, WithReportRepository(repo))
	router := NewRouter(h, RouterConfig{})

	result := decodeResult(t, post(t, router, "/api/v1/payout-batches/validate/processing",
		map[string]interface{}{"batch": cleanBatch()}))
	require.Equal(t, 1, repo.Len())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/validation-reports/"+result.ID, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	stored := decodeResult(t, rec)
	assert.Equal(t, result.ID, stored.ID)
	assert.Equal(t, result.Valid, stored.Valid)
	assert.Equal(t, domain.ModeProcessing, stored.Mode)
}

func TestValidate_ArchiveFailureDoesNotFailRequest(t *testing.T) {
	repo := new(mocks.MockReportRepository)
	repo.On("Save", mock.Anything, mock.Anything).Return(domain.NewDomainError(domain.ErrorCodeReportSaveFailed, "disk full"))
	h, logger := newTestHandler(t, WithReportRepository(repo))

	result := decodeResult(t, post(t, NewRouter(h, RouterConfig{}), "/api/v1/payout-batches/validate/creation",
		map[string]interface{}{"batch": cleanBatch()}))

	assert.NotEmpty(t, result.ID)
	repo.AssertExpectations(t)
	assert.Len(t, logger.Errors(), 1)
}

func TestGetReport(t *testing.T) {
	stored := &domain.ValidationResult{ID: "a3bb189e-8bf9-3888-9912-ace4e6543002", Mode: domain.ModeCreation, Valid: true}

	tests := []struct {
		name   string
		setup  func(repo *mocks.MockReportRepository)
		repo   bool
		id     string
		status int
	}{
		{
			name: "found",
			setup: func(repo *mocks.MockReportRepository) {
				repo.On("GetByID", mock.Anything, stored.ID).Return(stored, nil)
			},
			repo:   true,
			id:     stored.ID,
			status: http.StatusOK,
		},
		{
			name: "not found",
			setup: func(repo *mocks.MockReportRepository) {
				repo.On("GetByID", mock.Anything, stored.ID).Return(nil, ports.ErrReportNotFound)
			},
			repo:   true,
			id:     stored.ID,
			status: http.StatusNotFound,
		},
		{
			name: "malformed id",
			setup: func(repo *mocks.MockReportRepository) {
				repo.On("GetByID", mock.Anything, "nope").
					Return(nil, domain.NewDomainError(domain.ErrorCodeInvalidRequest, "report id must be a uuid"))
			},
			repo:   true,
			id:     "nope",
			status: http.StatusBadRequest,
		},
		{
			name: "storage failure",
			setup: func(repo *mocks.MockReportRepository) {
				repo.On("GetByID", mock.Anything, stored.ID).Return(nil, errors.New("connection reset"))
			},
			repo:   true,
			id:     stored.ID,
			status: http.StatusInternalServerError,
		},
		{
			name: "database unavailable",
			setup: func(repo *mocks.MockReportRepository) {
				repo.On("GetByID", mock.Anything, stored.ID).
					Return(nil, domain.WrapError(domain.ErrorCodeDatabaseError, "failed to load validation report", errors.New("pool closed")))
			},
			repo:   true,
			id:     stored.ID,
			status: http.StatusServiceUnavailable,
		},
		{
			name:   "archive disabled",
			id:     stored.ID,
			status: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []Option
			if tt.repo {
				repo := new(mocks.MockReportRepository)
				tt.setup(repo)
				opts = append(opts, WithReportRepository(repo))
			}
			h, _ := newTestHandler(t, opts...)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/validation-reports/"+tt.id, nil)
			rec := httptest.NewRecorder()
			NewRouter(h, RouterConfig{}).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestValidate_RejectedWhileDraining(t *testing.T) {
	tracker := shutdown.NewInFlightTracker("validations", nil)
	h, _ := newTestHandler(t, WithInFlightTracker(tracker))
	router := NewRouter(h, RouterConfig{})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, tracker.Shutdown(ctx))

	rec := post(t, router, "/api/v1/payout-batches/validate/creation", map[string]interface{}{"batch": cleanBatch()})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payout-batches/validate/creation", nil)
	rec := httptest.NewRecorder()
	NewRouter(h, RouterConfig{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouter_SecurityHeadersAndCORS(t *testing.T) {
	h, _ := newTestHandler(t)
	router := NewRouter(h, RouterConfig{AllowedOrigins: []string{"https://ops.example.com"}})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payout-batches/validate/processing",
		strings.NewReader(`{"batch": {"id": "b1", "payouts": []}}`))
	req.Header.Set("Origin", "https://ops.example.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://ops.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}
