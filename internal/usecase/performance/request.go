package performance

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthflow-analytics/internal/domain"
	"github.com/simaogato/wealthflow-analytics/internal/usecase/returns"
	"github.com/simaogato/wealthflow-analytics/internal/usecase/risk"
)

// Config is the immutable configuration of an Engine
type Config struct {
	RiskFreeRate             decimal.Decimal // used when no provider is configured or the provider fails
	MarketReturn             float64         // broad-market proxy for Jensen's alpha
	TradingDaysPerYear       int
	Returns                  returns.Config
	SignificantCashFlowRatio decimal.Decimal
	BatchWorkers             int
}

// DefaultConfig returns the engine defaults
func DefaultConfig() Config {
	return Config{
		RiskFreeRate:             decimal.RequireFromString("0.02"),
		MarketReturn:             0.08,
		TradingDaysPerYear:       risk.DefaultTradingDaysPerYear,
		Returns:                  returns.DefaultConfig(),
		SignificantCashFlowRatio: decimal.RequireFromString("0.10"),
		BatchWorkers:             4,
	}
}

// Request asks for the performance of one portfolio over one period
type Request struct {
	TenantID             uuid.UUID
	PortfolioID          uuid.UUID
	PeriodStart          time.Time
	PeriodEnd            time.Time
	PeriodType           domain.PeriodType
	Method               domain.CalculationMethod
	IncludeAttribution   bool
	AttributionDimension domain.AttributionDimension
	BenchmarkID          string
	CashFlowTiming       domain.CashFlowTiming
}

// Response is the outcome of one calculation
type Response struct {
	Period            domain.PerformancePeriod
	Attribution       *domain.AttributionResult
	Benchmark         *domain.BenchmarkComparison
	Warnings          []string
	CalculationTimeMs int64
}

// normalize fills optional fields with their defaults
func (r Request) normalize() Request {
	r.BenchmarkID = strings.TrimSpace(r.BenchmarkID)
	if r.PeriodType == "" {
		r.PeriodType = domain.PeriodTypeCustom
	}
	if r.Method == "" {
		r.Method = domain.MethodTimeWeighted
	}
	if r.CashFlowTiming == "" {
		r.CashFlowTiming = domain.TimingEndOfDay
	}
	if r.AttributionDimension == "" {
		r.AttributionDimension = domain.DimensionAssetClass
	}
	return r
}

// Window returns the measurement window of the request
func (r Request) Window() (domain.PeriodWindow, error) {
	return domain.NewPeriodWindow(r.PeriodStart, r.PeriodEnd)
}

// Validate checks the request before any collaborator is called
// Malformed requests wrap ErrInvalidRequest; attribution without a benchmark
// returns ErrMissingBenchmarkForAttribution
func (r Request) Validate() error {
	if r.PortfolioID == uuid.Nil {
		return fmt.Errorf("%w: portfolio id is required", domain.ErrInvalidRequest)
	}
	if _, err := r.Window(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	if !r.PeriodType.IsValid() {
		return fmt.Errorf("%w: unknown period type %q", domain.ErrInvalidRequest, r.PeriodType)
	}
	if !r.Method.IsValid() {
		return fmt.Errorf("%w: unknown calculation method %q", domain.ErrInvalidRequest, r.Method)
	}
	if !r.CashFlowTiming.IsValid() {
		return fmt.Errorf("%w: unknown cash flow timing %q", domain.ErrInvalidRequest, r.CashFlowTiming)
	}
	if r.IncludeAttribution {
		if r.BenchmarkID == "" {
			return domain.ErrMissingBenchmarkForAttribution
		}
		if !r.AttributionDimension.IsValid() {
			return fmt.Errorf("%w: unknown attribution dimension %q", domain.ErrInvalidRequest, r.AttributionDimension)
		}
	}
	return nil
}

// Validate rejects configurations the engine cannot run with
func (c Config) Validate() error {
	if c.TradingDaysPerYear <= 0 {
		return errors.New("trading days per year must be positive")
	}
	if c.Returns.MaxIterations <= 0 {
		return errors.New("IRR max iterations must be positive")
	}
	if c.Returns.Tolerance <= 0 {
		return errors.New("IRR tolerance must be positive")
	}
	if c.SignificantCashFlowRatio.IsNegative() {
		return errors.New("significant cash flow ratio cannot be negative")
	}
	if c.BatchWorkers <= 0 {
		return errors.New("batch workers must be positive")
	}
	return nil
}
