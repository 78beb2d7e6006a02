package performance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthflow-analytics/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockValuationProvider is a mock implementation of PortfolioValuationProvider for testing
type MockValuationProvider struct {
	mock.Mock
}

func (m *MockValuationProvider) GetValueAt(ctx context.Context, portfolioID uuid.UUID, date time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, portfolioID, date)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockValuationProvider) GetDailySeries(ctx context.Context, portfolioID uuid.UUID, start, end time.Time) ([]domain.ValuationPoint, error) {
	args := m.Called(ctx, portfolioID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ValuationPoint), args.Error(1)
}

// MockTransactionProvider is a mock implementation of TransactionProvider for testing
type MockTransactionProvider struct {
	mock.Mock
}

func (m *MockTransactionProvider) GetCashFlows(ctx context.Context, portfolioID uuid.UUID, start, end time.Time) ([]domain.Transaction, error) {
	args := m.Called(ctx, portfolioID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

// MockBenchmarkProvider is a mock implementation of BenchmarkProvider for testing
type MockBenchmarkProvider struct {
	mock.Mock
}

func (m *MockBenchmarkProvider) GetReturn(ctx context.Context, benchmarkID string, start, end time.Time) (float64, error) {
	args := m.Called(ctx, benchmarkID, start, end)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockBenchmarkProvider) GetVolatility(ctx context.Context, benchmarkID string, start, end time.Time) (float64, error) {
	args := m.Called(ctx, benchmarkID, start, end)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockBenchmarkProvider) GetDailySeries(ctx context.Context, benchmarkID string, start, end time.Time) ([]domain.DailyReturn, error) {
	args := m.Called(ctx, benchmarkID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DailyReturn), args.Error(1)
}

// MockRiskFreeRateProvider is a mock implementation of RiskFreeRateProvider for testing
type MockRiskFreeRateProvider struct {
	mock.Mock
}

func (m *MockRiskFreeRateProvider) Get(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockAttributionProvider is a mock implementation of AttributionProvider for testing
type MockAttributionProvider struct {
	mock.Mock
}

func (m *MockAttributionProvider) GetSegments(ctx context.Context, portfolioID uuid.UUID, benchmarkID string, dimension domain.AttributionDimension, start, end time.Time) ([]domain.Segment, []domain.Segment, error) {
	args := m.Called(ctx, portfolioID, benchmarkID, dimension, start, end)
	var portfolio, benchmark []domain.Segment
	if args.Get(0) != nil {
		portfolio = args.Get(0).([]domain.Segment)
	}
	if args.Get(1) != nil {
		benchmark = args.Get(1).([]domain.Segment)
	}
	return portfolio, benchmark, args.Error(2)
}

// MockPerformanceRepository is a mock implementation of PerformanceRepository for testing
type MockPerformanceRepository struct {
	mock.Mock
}

func (m *MockPerformanceRepository) Save(ctx context.Context, period *domain.PerformancePeriod) error {
	args := m.Called(ctx, period)
	return args.Error(0)
}

func (m *MockPerformanceRepository) ListByPortfolio(ctx context.Context, portfolioID uuid.UUID, limit int) ([]*domain.PerformancePeriod, error) {
	args := m.Called(ctx, portfolioID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PerformancePeriod), args.Error(1)
}

// MockCalculator is a mock implementation of Calculator for testing
type MockCalculator struct {
	mock.Mock
}

func (m *MockCalculator) Calculate(ctx context.Context, req Request) (*Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Response), args.Error(1)
}

func (m *MockCalculator) CalculateBatch(ctx context.Context, reqs []Request) []BatchResult {
	args := m.Called(ctx, reqs)
	return args.Get(0).([]BatchResult)
}

// MockPortfolioDirectory is a mock implementation of PortfolioDirectory for testing
type MockPortfolioDirectory struct {
	mock.Mock
}

func (m *MockPortfolioDirectory) ListActive(ctx context.Context) ([]domain.PortfolioRef, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PortfolioRef), args.Error(1)
}
