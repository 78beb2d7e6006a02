package performance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/wealthflow-analytics/internal/domain"
	"github.com/simaogato/wealthflow-analytics/internal/usecase/risk"
)

var (
	periodStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	periodEnd   = time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
)

func day(n int) time.Time {
	return periodStart.AddDate(0, 0, n)
}

type fixture struct {
	valuations   *MockValuationProvider
	transactions *MockTransactionProvider
	benchmarks   *MockBenchmarkProvider
	rates        *MockRiskFreeRateProvider
	segments     *MockAttributionProvider
	engine       *Engine
}

func newFixture() *fixture {
	f := &fixture{
		valuations:   new(MockValuationProvider),
		transactions: new(MockTransactionProvider),
		benchmarks:   new(MockBenchmarkProvider),
		rates:        new(MockRiskFreeRateProvider),
		segments:     new(MockAttributionProvider),
	}
	f.engine = NewEngine(Providers{
		Valuations:    f.valuations,
		Transactions:  f.transactions,
		Benchmarks:    f.benchmarks,
		RiskFreeRates: f.rates,
		Segments:      f.segments,
	}, DefaultConfig(), zerolog.Nop())
	return f
}

// withDepositScenario: 100,000 grows to 124,000 with a 20,000 deposit on day 2 and a 100 management fee
func (f *fixture) withDepositScenario(portfolioID uuid.UUID) {
	f.valuations.On("GetValueAt", mock.Anything, portfolioID, periodStart).Return(decimal.NewFromInt(100000), nil)
	f.valuations.On("GetValueAt", mock.Anything, portfolioID, periodEnd).Return(decimal.NewFromInt(124000), nil)
	f.valuations.On("GetDailySeries", mock.Anything, portfolioID, periodStart, periodEnd).Return([]domain.ValuationPoint{
		{Date: day(0), MarketValue: decimal.NewFromInt(100000)},
		{Date: day(1), MarketValue: decimal.NewFromInt(101000)},
		{Date: day(2), MarketValue: decimal.NewFromInt(122000)},
		{Date: day(3), MarketValue: decimal.NewFromInt(123000)},
		{Date: day(4), MarketValue: decimal.NewFromInt(124000)},
	}, nil)
	f.transactions.On("GetCashFlows", mock.Anything, portfolioID, periodStart, periodEnd).Return([]domain.Transaction{
		{ID: uuid.New(), PortfolioID: portfolioID, Date: day(2), Type: domain.TransactionTypeDeposit, Amount: decimal.NewFromInt(20000)},
		{ID: uuid.New(), PortfolioID: portfolioID, Date: day(3), Type: domain.TransactionTypeFee, Amount: decimal.NewFromInt(-100), Description: "Quarterly management fee"},
	}, nil)
}

func TestEngine_Calculate_FullScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	tenantID, portfolioID := uuid.New(), uuid.New()
	f.withDepositScenario(portfolioID)

	f.rates.On("Get", mock.Anything, tenantID).Return(decimal.RequireFromString("0.03"), nil)
	f.benchmarks.On("GetReturn", mock.Anything, "SPX", periodStart, periodEnd).Return(0.015, nil)
	f.benchmarks.On("GetVolatility", mock.Anything, "SPX", periodStart, periodEnd).Return(0.12, nil)
	f.benchmarks.On("GetDailySeries", mock.Anything, "SPX", periodStart, periodEnd).Return([]domain.DailyReturn{
		{Date: day(1), Return: 0.008},
		{Date: day(2), Return: 0.004},
		{Date: day(3), Return: 0.007},
		{Date: day(4), Return: -0.002},
	}, nil)
	f.segments.On("GetSegments", mock.Anything, portfolioID, "SPX", domain.DimensionAssetClass, periodStart, periodEnd).Return(
		[]domain.Segment{
			{GroupKey: "equity", Weight: decimal.RequireFromString("0.6"), Return: decimal.RequireFromString("0.10")},
			{GroupKey: "bonds", Weight: decimal.RequireFromString("0.4"), Return: decimal.RequireFromString("0.03")},
		},
		[]domain.Segment{
			{GroupKey: "equity", Weight: decimal.RequireFromString("0.5"), Return: decimal.RequireFromString("0.08")},
			{GroupKey: "bonds", Weight: decimal.RequireFromString("0.5"), Return: decimal.RequireFromString("0.04")},
		}, nil)

	resp, err := f.engine.Calculate(ctx, Request{
		TenantID:           tenantID,
		PortfolioID:        portfolioID,
		PeriodStart:        periodStart,
		PeriodEnd:          periodEnd,
		PeriodType:         domain.PeriodTypeCustom,
		Method:             domain.MethodTimeWeighted,
		IncludeAttribution: true,
		BenchmarkID:        "SPX",
	})

	require.NoError(t, err)
	period := resp.Period
	assert.NotEqual(t, uuid.Nil, period.ID)
	assert.Equal(t, tenantID, period.TenantID)
	assert.Equal(t, portfolioID, period.PortfolioID)
	assert.Equal(t, periodStart, period.PeriodStart)
	assert.Equal(t, periodEnd, period.PeriodEnd)
	assert.True(t, period.PrimaryReturn.Equal(period.Returns.TimeWeighted))
	assert.True(t, period.NetReturn.LessThan(period.Returns.TimeWeighted), "fees reduce the net return")
	assert.True(t, period.Fees.ManagementFees.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 1, period.CashFlows.Count)
	assert.True(t, period.CashFlows.NetCashFlows.Equal(decimal.NewFromInt(20000)))
	assert.True(t, period.HasSignificantCashFlows)
	assert.Equal(t, 100, period.DataQualityScore)
	assert.Greater(t, period.Risk.Volatility, 0.0)
	assert.False(t, period.CalculatedAt.IsZero())

	require.NotNil(t, resp.Benchmark)
	assert.Equal(t, 4, resp.Benchmark.Observations)
	assert.InDelta(t, period.PrimaryReturn.InexactFloat64()-0.015, resp.Benchmark.ExcessReturn, 1e-12)
	assert.InDelta(t, resp.Benchmark.Beta, period.RiskAdjusted.Beta, 1e-12)
	assert.InDelta(t, (period.PrimaryReturn.InexactFloat64()-0.03)/period.Risk.Volatility, period.RiskAdjusted.SharpeRatio, 1e-9)

	require.NotNil(t, resp.Attribution)
	assert.True(t, resp.Attribution.ExcessReturn.Equal(decimal.RequireFromString("0.012")))
	assert.True(t, resp.Attribution.TotalEffect().Equal(resp.Attribution.ExcessReturn))

	assert.GreaterOrEqual(t, resp.CalculationTimeMs, int64(0))
	f.valuations.AssertExpectations(t)
	f.transactions.AssertExpectations(t)
	f.benchmarks.AssertExpectations(t)
	f.rates.AssertExpectations(t)
	f.segments.AssertExpectations(t)
}

func TestEngine_Calculate_PrimaryReturnFollowsMethod(t *testing.T) {
	tests := []struct {
		method domain.CalculationMethod
		pick   func(domain.ReturnSet) decimal.Decimal
	}{
		{domain.MethodTimeWeighted, func(s domain.ReturnSet) decimal.Decimal { return s.TimeWeighted }},
		{domain.MethodMoneyWeighted, func(s domain.ReturnSet) decimal.Decimal { return s.MoneyWeighted }},
		{domain.MethodModifiedDietz, func(s domain.ReturnSet) decimal.Decimal { return s.ModifiedDietz }},
	}

	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			f := newFixture()
			portfolioID := uuid.New()
			f.withDepositScenario(portfolioID)

			resp, err := f.engine.Calculate(context.Background(), Request{
				PortfolioID: portfolioID,
				PeriodStart: periodStart,
				PeriodEnd:   periodEnd,
				Method:      tt.method,
			})

			require.NoError(t, err)
			assert.Equal(t, tt.method, resp.Period.Method)
			assert.True(t, resp.Period.PrimaryReturn.Equal(tt.pick(resp.Period.Returns)))
			assert.Nil(t, resp.Benchmark)
			assert.Nil(t, resp.Attribution)
			f.rates.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
		})
	}
}

func TestPrimaryReturn(t *testing.T) {
	set := domain.ReturnSet{
		TimeWeighted:  decimal.RequireFromString("0.01"),
		MoneyWeighted: decimal.RequireFromString("0.02"),
		ModifiedDietz: decimal.RequireFromString("0.03"),
	}

	tests := []struct {
		name   string
		method domain.CalculationMethod
		want   string
	}{
		{"Time weighted", domain.MethodTimeWeighted, "0.01"},
		{"Money weighted", domain.MethodMoneyWeighted, "0.02"},
		{"Modified Dietz", domain.MethodModifiedDietz, "0.03"},
		{"Unset method defaults to time weighted", domain.CalculationMethod(""), "0.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, primaryReturn(tt.method, set).Equal(decimal.RequireFromString(tt.want)))
		})
	}
}

func TestEngine_Calculate_DegenerateInputIsSafe(t *testing.T) {
	f := newFixture()
	portfolioID := uuid.New()
	f.valuations.On("GetValueAt", mock.Anything, portfolioID, mock.Anything).Return(decimal.Zero, nil)
	f.valuations.On("GetDailySeries", mock.Anything, portfolioID, periodStart, periodEnd).Return([]domain.ValuationPoint{}, nil)
	f.transactions.On("GetCashFlows", mock.Anything, portfolioID, periodStart, periodEnd).Return([]domain.Transaction{}, nil)

	var resp *Response
	var err error
	assert.NotPanics(t, func() {
		resp, err = f.engine.Calculate(context.Background(), Request{
			PortfolioID: portfolioID,
			PeriodStart: periodStart,
			PeriodEnd:   periodEnd,
		})
	})

	require.NoError(t, err)
	period := resp.Period
	for name, v := range map[string]decimal.Decimal{
		"simple":         period.Returns.Simple,
		"logarithmic":    period.Returns.Logarithmic,
		"time_weighted":  period.Returns.TimeWeighted,
		"money_weighted": period.Returns.MoneyWeighted,
		"modified_dietz": period.Returns.ModifiedDietz,
		"primary":        period.PrimaryReturn,
		"net":            period.NetReturn,
		"annualized":     period.AnnualizedReturn,
	} {
		assert.True(t, v.IsZero(), "%s should be 0, got %s", name, v.String())
	}
	assert.Equal(t, domain.RiskMetrics{}, period.Risk)
	assert.Zero(t, period.RiskAdjusted.SharpeRatio)
	assert.Zero(t, period.RiskAdjusted.SortinoRatio)
	assert.Zero(t, period.RiskAdjusted.CalmarRatio)
	assert.False(t, period.HasSignificantCashFlows)
	assert.Equal(t, 70, period.DataQualityScore)
	assert.Equal(t, domain.PeriodTypeCustom, period.PeriodType)
	assert.Equal(t, domain.MethodTimeWeighted, period.Method)
	assert.NotEmpty(t, resp.Warnings)
}

func TestEngine_Calculate_MissingValuationDegrades(t *testing.T) {
	f := newFixture()
	portfolioID := uuid.New()
	f.valuations.On("GetValueAt", mock.Anything, portfolioID, periodStart).Return(decimal.Zero, domain.ErrValuationUnavailable)
	f.valuations.On("GetValueAt", mock.Anything, portfolioID, periodEnd).Return(decimal.NewFromInt(5000), nil)
	f.valuations.On("GetDailySeries", mock.Anything, portfolioID, periodStart, periodEnd).Return(nil, nil)
	f.transactions.On("GetCashFlows", mock.Anything, portfolioID, periodStart, periodEnd).Return([]domain.Transaction{
		{ID: uuid.New(), Date: day(1), Type: domain.TransactionTypeDeposit, Amount: decimal.NewFromInt(5000)},
	}, nil)

	resp, err := f.engine.Calculate(context.Background(), Request{PortfolioID: portfolioID, PeriodStart: periodStart, PeriodEnd: periodEnd})

	require.NoError(t, err)
	assert.Contains(t, resp.Warnings, "beginning valuation unavailable; treated as 0")
	assert.Equal(t, 80, resp.Period.DataQualityScore)
	assert.True(t, resp.Period.BeginningValue.IsZero())
	assert.False(t, resp.Period.HasSignificantCashFlows)
}

func TestEngine_Calculate_ProviderFailureIsWrapped(t *testing.T) {
	f := newFixture()
	portfolioID := uuid.New()
	dbErr := errors.New("connection refused")
	f.valuations.On("GetValueAt", mock.Anything, portfolioID, periodStart).Return(decimal.Zero, dbErr)

	resp, err := f.engine.Calculate(context.Background(), Request{PortfolioID: portfolioID, PeriodStart: periodStart, PeriodEnd: periodEnd})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, dbErr)
	assert.Contains(t, err.Error(), "failed to get beginning value")
}

func TestEngine_Calculate_InvalidRequests(t *testing.T) {
	portfolioID := uuid.New()
	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{
			name:    "Missing portfolio",
			req:     Request{PeriodStart: periodStart, PeriodEnd: periodEnd},
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name:    "Start equals end",
			req:     Request{PortfolioID: portfolioID, PeriodStart: periodEnd, PeriodEnd: periodEnd},
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name:    "Start after end",
			req:     Request{PortfolioID: portfolioID, PeriodStart: periodEnd, PeriodEnd: periodStart},
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name:    "Unknown method",
			req:     Request{PortfolioID: portfolioID, PeriodStart: periodStart, PeriodEnd: periodEnd, Method: "GEOMETRIC"},
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name:    "Unknown timing",
			req:     Request{PortfolioID: portfolioID, PeriodStart: periodStart, PeriodEnd: periodEnd, CashFlowTiming: "NOON"},
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name:    "Attribution without benchmark",
			req:     Request{PortfolioID: portfolioID, PeriodStart: periodStart, PeriodEnd: periodEnd, IncludeAttribution: true, BenchmarkID: "  "},
			wantErr: domain.ErrMissingBenchmarkForAttribution,
		},
		{
			name:    "Unknown attribution dimension",
			req:     Request{PortfolioID: portfolioID, PeriodStart: periodStart, PeriodEnd: periodEnd, IncludeAttribution: true, BenchmarkID: "SPX", AttributionDimension: "currency"},
			wantErr: domain.ErrInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()

			resp, err := f.engine.Calculate(context.Background(), tt.req)

			assert.Nil(t, resp)
			assert.ErrorIs(t, err, tt.wantErr)
			f.valuations.AssertNotCalled(t, "GetValueAt", mock.Anything, mock.Anything, mock.Anything)
			f.transactions.AssertNotCalled(t, "GetCashFlows", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestEngine_Calculate_BenchmarkUnavailableFailsFast(t *testing.T) {
	tests := []struct {
		name        string
		providerErr error
	}{
		{name: "Provider reports unavailable", providerErr: domain.ErrBenchmarkUnavailable},
		{name: "Provider fails", providerErr: errors.New("timeout")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			portfolioID := uuid.New()
			f.withDepositScenario(portfolioID)
			f.benchmarks.On("GetReturn", mock.Anything, "MSCI_EM", periodStart, periodEnd).Return(0.0, tt.providerErr)

			resp, err := f.engine.Calculate(context.Background(), Request{
				PortfolioID: portfolioID,
				PeriodStart: periodStart,
				PeriodEnd:   periodEnd,
				BenchmarkID: "MSCI_EM",
			})

			assert.Nil(t, resp)
			assert.ErrorIs(t, err, domain.ErrBenchmarkUnavailable)
			assert.Contains(t, err.Error(), "MSCI_EM")
		})
	}
}

func TestEngine_Calculate_RiskFreeRateFallsBackToDefault(t *testing.T) {
	f := newFixture()
	tenantID, portfolioID := uuid.New(), uuid.New()
	f.withDepositScenario(portfolioID)
	f.rates.On("Get", mock.Anything, tenantID).Return(decimal.Zero, errors.New("tenant settings missing"))

	resp, err := f.engine.Calculate(context.Background(), Request{
		TenantID:    tenantID,
		PortfolioID: portfolioID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
	})

	require.NoError(t, err)
	expectedSharpe := (resp.Period.PrimaryReturn.InexactFloat64() - 0.02) / resp.Period.Risk.Volatility
	assert.InDelta(t, expectedSharpe, resp.Period.RiskAdjusted.SharpeRatio, 1e-9)
	assert.Contains(t, resp.Warnings, "risk-free rate unavailable (tenant settings missing); using default 0.02")
	assert.Equal(t, risk.DefaultBeta, resp.Period.RiskAdjusted.Beta)
}

func TestEngine_Calculate_AttributionWithoutSegmentsIsSkipped(t *testing.T) {
	f := newFixture()
	portfolioID := uuid.New()
	f.withDepositScenario(portfolioID)
	f.benchmarks.On("GetReturn", mock.Anything, "SPX", periodStart, periodEnd).Return(0.01, nil)
	f.benchmarks.On("GetVolatility", mock.Anything, "SPX", periodStart, periodEnd).Return(0.1, nil)
	f.benchmarks.On("GetDailySeries", mock.Anything, "SPX", periodStart, periodEnd).Return([]domain.DailyReturn{}, nil)
	f.segments.On("GetSegments", mock.Anything, portfolioID, "SPX", domain.DimensionSector, periodStart, periodEnd).Return(nil, nil, nil)

	resp, err := f.engine.Calculate(context.Background(), Request{
		PortfolioID:          portfolioID,
		PeriodStart:          periodStart,
		PeriodEnd:            periodEnd,
		BenchmarkID:          "SPX",
		IncludeAttribution:   true,
		AttributionDimension: domain.DimensionSector,
	})

	require.NoError(t, err)
	assert.Nil(t, resp.Attribution)
	assert.Contains(t, resp.Warnings, "no sector segments available; attribution skipped")
	require.NotNil(t, resp.Benchmark)
	assert.Zero(t, resp.Benchmark.Observations)
}

func TestEngine_CalculateBatch_PreservesOrder(t *testing.T) {
	f := newFixture()
	first, second := uuid.New(), uuid.New()
	f.withDepositScenario(first)
	f.withDepositScenario(second)

	reqs := []Request{
		{PortfolioID: first, PeriodStart: periodStart, PeriodEnd: periodEnd},
		{PeriodStart: periodStart, PeriodEnd: periodEnd},
		{PortfolioID: second, PeriodStart: periodStart, PeriodEnd: periodEnd, Method: domain.MethodModifiedDietz},
	}

	results := f.engine.CalculateBatch(context.Background(), reqs)

	require.Len(t, results, 3)
	require.NoError(t, results[0].Err)
	assert.Equal(t, first, results[0].Response.Period.PortfolioID)
	assert.ErrorIs(t, results[1].Err, domain.ErrInvalidRequest)
	assert.Nil(t, results[1].Response)
	require.NoError(t, results[2].Err)
	assert.Equal(t, second, results[2].Response.Period.PortfolioID)
	assert.Equal(t, domain.MethodModifiedDietz, results[2].Response.Period.Method)
	for i, r := range results {
		assert.Equal(t, reqs[i], r.Request)
	}
}

func TestEngine_CalculateBatch_CancelledContext(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := f.engine.CalculateBatch(ctx, []Request{
		{PortfolioID: uuid.New(), PeriodStart: periodStart, PeriodEnd: periodEnd},
		{PortfolioID: uuid.New(), PeriodStart: periodStart, PeriodEnd: periodEnd},
	})

	require.Len(t, results, 2)
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
		assert.Nil(t, r.Response)
	}
	f.valuations.AssertNotCalled(t, "GetValueAt", mock.Anything, mock.Anything, mock.Anything)
}

func TestEngine_CalculateBatch_Empty(t *testing.T) {
	assert.Empty(t, newFixture().engine.CalculateBatch(context.Background(), nil))
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.BatchWorkers = 0
	assert.EqualError(t, cfg.Validate(), "batch workers must be positive")

	cfg = DefaultConfig()
	cfg.Returns.Tolerance = 0
	assert.EqualError(t, cfg.Validate(), "IRR tolerance must be positive")
}
