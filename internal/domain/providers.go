package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PortfolioValuationProvider supplies portfolio market values
type PortfolioValuationProvider interface {
	// GetValueAt returns the portfolio value at the close of the given date
	// Returns ErrValuationUnavailable if no valuation exists on or before the date
	GetValueAt(ctx context.Context, portfolioID uuid.UUID, date time.Time) (decimal.Decimal, error)

	// GetDailySeries returns one point per trading day in [start, end], ordered by date
	// An empty series is valid and means daily data is missing
	GetDailySeries(ctx context.Context, portfolioID uuid.UUID, start, end time.Time) ([]ValuationPoint, error)
}

// TransactionProvider supplies the raw transaction records of a portfolio
type TransactionProvider interface {
	// GetCashFlows returns the transactions recorded in [start, end)
	GetCashFlows(ctx context.Context, portfolioID uuid.UUID, start, end time.Time) ([]Transaction, error)
}

// BenchmarkProvider supplies reference index data
// Implementations return ErrBenchmarkUnavailable when the benchmark has no data for the window
type BenchmarkProvider interface {
	// GetReturn returns the benchmark's compounded return over the window
	GetReturn(ctx context.Context, benchmarkID string, start, end time.Time) (float64, error)

	// GetVolatility returns the benchmark's annualized volatility over the window
	GetVolatility(ctx context.Context, benchmarkID string, start, end time.Time) (float64, error)

	// GetDailySeries returns the benchmark's daily returns, ordered by date
	GetDailySeries(ctx context.Context, benchmarkID string, start, end time.Time) ([]DailyReturn, error)
}

// RiskFreeRateProvider supplies the per-tenant risk-free rate configuration
type RiskFreeRateProvider interface {
	// Get returns the tenant's risk-free rate as a decimal fraction
	Get(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error)
}

// AttributionProvider supplies per-group weights and returns for Brinson attribution
type AttributionProvider interface {
	// GetSegments returns portfolio-side and benchmark-side segments grouped by the dimension
	GetSegments(ctx context.Context, portfolioID uuid.UUID, benchmarkID string, dimension AttributionDimension, start, end time.Time) (portfolio []Segment, benchmark []Segment, err error)
}

// PerformanceRepository persists calculated performance periods
// The analytics engine never calls it; persistence belongs to its callers
type PerformanceRepository interface {
	// Save stores a new performance period
	Save(ctx context.Context, period *PerformancePeriod) error

	// ListByPortfolio returns the most recent periods of a portfolio, newest first
	ListByPortfolio(ctx context.Context, portfolioID uuid.UUID, limit int) ([]*PerformancePeriod, error)
}

// PortfolioRef identifies a portfolio together with its tenant
type PortfolioRef struct {
	TenantID    uuid.UUID
	PortfolioID uuid.UUID
}

// PortfolioDirectory lists the portfolios eligible for scheduled recalculation
type PortfolioDirectory interface {
	// ListActive returns every active portfolio across tenants
	ListActive(ctx context.Context) ([]PortfolioRef, error)
}
