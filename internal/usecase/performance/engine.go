package performance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthflow-analytics/internal/domain"
	"github.com/simaogato/wealthflow-analytics/internal/usecase/attribution"
	"github.com/simaogato/wealthflow-analytics/internal/usecase/benchmark"
	"github.com/simaogato/wealthflow-analytics/internal/usecase/cashflow"
	"github.com/simaogato/wealthflow-analytics/internal/usecase/returns"
	"github.com/simaogato/wealthflow-analytics/internal/usecase/risk"
)

const (
	fullQualityScore        = 100
	missingValuationPenalty = 20
	noCashFlowPenalty       = 10
)

// primaryReturn picks the return a calculation method reports as primary
func primaryReturn(method domain.CalculationMethod, set domain.ReturnSet) decimal.Decimal {
	switch method {
	case domain.MethodMoneyWeighted:
		return set.MoneyWeighted
	case domain.MethodModifiedDietz:
		return set.ModifiedDietz
	default:
		return set.TimeWeighted
	}
}

// Providers are the collaborators an Engine reads from
// Benchmarks, RiskFreeRates and Segments are optional
type Providers struct {
	Valuations    domain.PortfolioValuationProvider
	Transactions  domain.TransactionProvider
	Benchmarks    domain.BenchmarkProvider
	RiskFreeRates domain.RiskFreeRateProvider
	Segments      domain.AttributionProvider
}

// Engine assembles performance periods from its providers
// It holds no mutable state and is safe for concurrent use
type Engine struct {
	providers Providers
	cfg       Config
	logger    zerolog.Logger
	now       func() time.Time
}

// NewEngine creates a new Engine instance
func NewEngine(providers Providers, cfg Config, logger zerolog.Logger) *Engine {
	return &Engine{
		providers: providers,
		cfg:       cfg,
		logger:    logger.With().Str("component", "performance_engine").Logger(),
		now:       time.Now,
	}
}

// Calculate computes the performance of one portfolio over one period
// Logic:
//  1. Validate the request (ErrInvalidRequest / ErrMissingBenchmarkForAttribution)
//  2. Load valuations and transactions, classify cash flows and fees
//  3. Compute every return methodology, risk metrics and risk-adjusted ratios
//  4. Compare against the benchmark when one is requested (ErrBenchmarkUnavailable fails fast)
//  5. Run Brinson attribution when requested
//  6. Score data quality and flag significant cash flows
//
// The result is not persisted
func (e *Engine) Calculate(ctx context.Context, req Request) (*Response, error) {
	started := e.now()
	req = req.normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	window, _ := req.Window()

	var warnings []string
	warn := func(ws ...string) { warnings = append(warnings, ws...) }

	// Step 1: Valuation inputs
	missingValuation := false
	beginningValue, err := e.valueAt(ctx, req.PortfolioID, window.Start)
	if err != nil {
		if !errors.Is(err, domain.ErrValuationUnavailable) {
			return nil, fmt.Errorf("failed to get beginning value: %w", err)
		}
		missingValuation = true
		warn("beginning valuation unavailable; treated as 0")
	}

	endingValue, err := e.valueAt(ctx, req.PortfolioID, window.End)
	if err != nil {
		if !errors.Is(err, domain.ErrValuationUnavailable) {
			return nil, fmt.Errorf("failed to get ending value: %w", err)
		}
		missingValuation = true
		warn("ending valuation unavailable; treated as 0")
	}

	series, err := e.providers.Valuations.GetDailySeries(ctx, req.PortfolioID, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily valuation series: %w", err)
	}
	if len(series) == 0 {
		missingValuation = true
	}

	// Step 2: Cash flows and fees
	transactions, err := e.providers.Transactions.GetCashFlows(ctx, req.PortfolioID, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("failed to get cash flows: %w", err)
	}
	classification := cashflow.Classify(transactions, window)
	warn(classification.Warnings...)

	// Step 3: Returns, risk and risk-adjusted ratios
	calc := returns.Calculate(returns.Input{
		Window:         window,
		BeginningValue: beginningValue,
		EndingValue:    endingValue,
		Series:         series,
		Flows:          classification.Flows,
		Timing:         req.CashFlowTiming,
		TotalFees:      classification.Fees.Total(),
	}, e.cfg.Returns)
	warn(calc.Warnings...)

	primary := primaryReturn(req.Method, calc.Set)
	riskMetrics := risk.CalculateMetrics(domain.ReturnValues(calc.DailyReturns), e.cfg.TradingDaysPerYear)

	riskFreeRate, rateWarning := e.riskFreeRate(ctx, req.TenantID)
	if rateWarning != "" {
		warn(rateWarning)
	}

	// Step 4: Benchmark comparison
	var comparison *domain.BenchmarkComparison
	var beta *float64
	if req.BenchmarkID != "" {
		result, benchWarnings, err := e.compare(ctx, req, window, primary, calc.DailyReturns, riskFreeRate)
		if err != nil {
			return nil, err
		}
		warn(benchWarnings...)
		comparison = result
		if result.Observations >= 2 {
			b := result.Beta
			beta = &b
		}
	}

	adjusted, adjustedWarnings := risk.CalculateAdjusted(risk.AdjustedInput{
		PortfolioReturn:   primary.InexactFloat64(),
		Volatility:        riskMetrics.Volatility,
		DownsideDeviation: riskMetrics.DownsideDeviation,
		MaxDrawdown:       riskMetrics.MaxDrawdown,
		RiskFreeRate:      riskFreeRate,
		MarketReturn:      e.cfg.MarketReturn,
		Beta:              beta,
	})
	warn(adjustedWarnings...)

	// Step 5: Attribution
	var attributionResult *domain.AttributionResult
	if req.IncludeAttribution {
		result, attributionWarnings, err := e.attribute(ctx, req, window)
		if err != nil {
			return nil, err
		}
		warn(attributionWarnings...)
		attributionResult = result
	}

	// Step 6: Data quality and significance
	score := fullQualityScore
	if missingValuation {
		score -= missingValuationPenalty
	}
	if classification.Records == 0 {
		score -= noCashFlowPenalty
	}

	period := domain.PerformancePeriod{
		ID:                      uuid.New(),
		TenantID:                req.TenantID,
		PortfolioID:             req.PortfolioID,
		PeriodType:              req.PeriodType,
		PeriodStart:             window.Start,
		PeriodEnd:               window.End,
		Method:                  req.Method,
		BeginningValue:          beginningValue,
		EndingValue:             endingValue,
		Returns:                 calc.Set,
		PrimaryReturn:           primary,
		NetReturn:               calc.NetReturn,
		AnnualizedReturn:        calc.AnnualizedReturn,
		Risk:                    riskMetrics,
		RiskAdjusted:            adjusted,
		Fees:                    classification.Fees,
		CashFlows:               classification.Summary,
		DataQualityScore:        score,
		HasSignificantCashFlows: e.significant(classification.Summary.NetCashFlows, beginningValue),
		CalculatedAt:            e.now().UTC(),
	}

	elapsed := e.now().Sub(started)
	e.logger.Debug().
		Str("portfolio_id", req.PortfolioID.String()).
		Str("method", string(req.Method)).
		Str("primary_return", primary.String()).
		Int("data_quality_score", score).
		Int("warnings", len(warnings)).
		Dur("elapsed", elapsed).
		Msg("Performance calculated")
	for _, w := range warnings {
		e.logger.Warn().Str("portfolio_id", req.PortfolioID.String()).Msg(w)
	}

	return &Response{
		Period:            period,
		Attribution:       attributionResult,
		Benchmark:         comparison,
		Warnings:          warnings,
		CalculationTimeMs: elapsed.Milliseconds(),
	}, nil
}

// valueAt returns a zero value alongside ErrValuationUnavailable so callers can degrade
func (e *Engine) valueAt(ctx context.Context, portfolioID uuid.UUID, date time.Time) (decimal.Decimal, error) {
	value, err := e.providers.Valuations.GetValueAt(ctx, portfolioID, date)
	if err != nil {
		return decimal.Zero, err
	}
	return value, nil
}

// riskFreeRate resolves the tenant rate, falling back to the configured default
func (e *Engine) riskFreeRate(ctx context.Context, tenantID uuid.UUID) (float64, string) {
	if e.providers.RiskFreeRates == nil || tenantID == uuid.Nil {
		return e.cfg.RiskFreeRate.InexactFloat64(), ""
	}
	rate, err := e.providers.RiskFreeRates.Get(ctx, tenantID)
	if err != nil {
		return e.cfg.RiskFreeRate.InexactFloat64(),
			fmt.Sprintf("risk-free rate unavailable (%v); using default %s", err, e.cfg.RiskFreeRate.String())
	}
	return rate.InexactFloat64(), ""
}

// compare loads the benchmark and runs the comparator; any provider failure aborts the calculation
func (e *Engine) compare(ctx context.Context, req Request, window domain.PeriodWindow, portfolioReturn decimal.Decimal, portfolioDaily []domain.DailyReturn, riskFreeRate float64) (*domain.BenchmarkComparison, []string, error) {
	if e.providers.Benchmarks == nil {
		return nil, nil, fmt.Errorf("%w: no benchmark provider configured", domain.ErrBenchmarkUnavailable)
	}

	benchReturn, err := e.providers.Benchmarks.GetReturn(ctx, req.BenchmarkID, window.Start, window.End)
	if err != nil {
		return nil, nil, benchmarkError(req.BenchmarkID, "return", err)
	}
	benchVolatility, err := e.providers.Benchmarks.GetVolatility(ctx, req.BenchmarkID, window.Start, window.End)
	if err != nil {
		return nil, nil, benchmarkError(req.BenchmarkID, "volatility", err)
	}
	benchDaily, err := e.providers.Benchmarks.GetDailySeries(ctx, req.BenchmarkID, window.Start, window.End)
	if err != nil {
		return nil, nil, benchmarkError(req.BenchmarkID, "daily series", err)
	}

	result, warnings := benchmark.Compare(benchmark.Input{
		BenchmarkID:         req.BenchmarkID,
		PortfolioReturn:     portfolioReturn.InexactFloat64(),
		BenchmarkReturn:     benchReturn,
		BenchmarkVolatility: benchVolatility,
		PortfolioDaily:      portfolioDaily,
		BenchmarkDaily:      benchDaily,
		RiskFreeRate:        riskFreeRate,
		TradingDaysPerYear:  e.cfg.TradingDaysPerYear,
	})
	return &result, warnings, nil
}

// benchmarkError keeps ErrBenchmarkUnavailable visible to errors.Is whatever the provider returned
func benchmarkError(benchmarkID, what string, err error) error {
	if errors.Is(err, domain.ErrBenchmarkUnavailable) {
		return fmt.Errorf("failed to get benchmark %s %s: %w", benchmarkID, what, err)
	}
	return fmt.Errorf("%w: failed to get benchmark %s %s: %v", domain.ErrBenchmarkUnavailable, benchmarkID, what, err)
}

// attribute loads the segments of the requested dimension and decomposes the excess return
func (e *Engine) attribute(ctx context.Context, req Request, window domain.PeriodWindow) (*domain.AttributionResult, []string, error) {
	if e.providers.Segments == nil {
		return nil, nil, errors.New("attribution requested but no segment provider is configured")
	}
	portfolioSegments, benchmarkSegments, err := e.providers.Segments.GetSegments(ctx, req.PortfolioID, req.BenchmarkID, req.AttributionDimension, window.Start, window.End)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get attribution segments: %w", err)
	}
	if len(portfolioSegments) == 0 && len(benchmarkSegments) == 0 {
		return nil, []string{fmt.Sprintf("no %s segments available; attribution skipped", req.AttributionDimension)}, nil
	}
	return attribution.Attribute(req.AttributionDimension, portfolioSegments, benchmarkSegments)
}

// significant reports whether |net flows| / beginning value exceeds the configured ratio
func (e *Engine) significant(netFlows, beginningValue decimal.Decimal) bool {
	if !beginningValue.IsPositive() {
		return false
	}
	return netFlows.Abs().Div(beginningValue).GreaterThan(e.cfg.SignificantCashFlowRatio)
}
