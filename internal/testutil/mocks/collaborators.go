package mocks

import (
	"context"

	"github.com/kevin07696/payout-validation/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockPayeeDirectory provides a testify mock of ports.PayeeDirectory
type MockPayeeDirectory struct {
	mock.Mock
}

func (m *MockPayeeDirectory) Exists(ctx context.Context, payeeID string) (bool, error) {
	args := m.Called(ctx, payeeID)
	return args.Bool(0), args.Error(1)
}

// MockReportRepository provides a testify mock of ports.ReportRepository
type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) Save(ctx context.Context, result *domain.ValidationResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockReportRepository) GetByID(ctx context.Context, id string) (*domain.ValidationResult, error) {
	args := m.Called(ctx, id)
	if r := args.Get(0); r != nil {
		return r.(*domain.ValidationResult), args.Error(1)
	}
	return nil, args.Error(1)
}
