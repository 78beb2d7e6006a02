package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CalculationMethod selects which return methodology is reported as the primary return
type CalculationMethod string

const (
	MethodTimeWeighted  CalculationMethod = "TIME_WEIGHTED"
	MethodMoneyWeighted CalculationMethod = "MONEY_WEIGHTED"
	MethodModifiedDietz CalculationMethod = "MODIFIED_DIETZ"
)

// IsValid reports whether the method is one of the supported methodologies
func (m CalculationMethod) IsValid() bool {
	switch m {
	case MethodTimeWeighted, MethodMoneyWeighted, MethodModifiedDietz:
		return true
	}
	return false
}

// CashFlowTiming decides when a same-day flow starts participating in TWR sub-period returns
type CashFlowTiming string

const (
	TimingBeginningOfDay CashFlowTiming = "BEGINNING_OF_DAY"
	TimingEndOfDay       CashFlowTiming = "END_OF_DAY"
	TimingActualTime     CashFlowTiming = "ACTUAL_TIME"
)

// IsValid reports whether the timing is a known convention
func (c CashFlowTiming) IsValid() bool {
	switch c {
	case TimingBeginningOfDay, TimingEndOfDay, TimingActualTime:
		return true
	}
	return false
}

// AttributionDimension is the grouping key used by Brinson attribution
type AttributionDimension string

const (
	DimensionAssetClass AttributionDimension = "asset_class"
	DimensionSector     AttributionDimension = "sector"
	DimensionRegion     AttributionDimension = "region"
)

// IsValid reports whether the dimension is supported
func (d AttributionDimension) IsValid() bool {
	switch d {
	case DimensionAssetClass, DimensionSector, DimensionRegion:
		return true
	}
	return false
}

// ReturnSet holds every return methodology for one period, as decimal fractions
type ReturnSet struct {
	Simple        decimal.Decimal `json:"simple"`
	Logarithmic   decimal.Decimal `json:"logarithmic"`
	TimeWeighted  decimal.Decimal `json:"time_weighted"`
	MoneyWeighted decimal.Decimal `json:"money_weighted"`
	ModifiedDietz decimal.Decimal `json:"modified_dietz"`
}

// RiskMetrics holds dispersion and drawdown statistics of a daily return series
type RiskMetrics struct {
	Volatility              float64 `json:"volatility"`
	StandardDeviation       float64 `json:"standard_deviation"`
	DownsideDeviation       float64 `json:"downside_deviation"`
	MaxDrawdown             float64 `json:"max_drawdown"` // <= 0
	MaxDrawdownDurationDays int     `json:"max_drawdown_duration_days"`
}

// RiskAdjustedMetrics holds return-per-unit-of-risk ratios
type RiskAdjustedMetrics struct {
	SharpeRatio  float64 `json:"sharpe_ratio"`
	SortinoRatio float64 `json:"sortino_ratio"`
	CalmarRatio  float64 `json:"calmar_ratio"`
	TreynorRatio float64 `json:"treynor_ratio"`
	JensenAlpha  float64 `json:"jensen_alpha"`
	Beta         float64 `json:"beta"`
}

// BenchmarkComparison holds benchmark-relative statistics
// The engine does not retain it once returned
type BenchmarkComparison struct {
	BenchmarkID         string  `json:"benchmark_id"`
	PortfolioReturn     float64 `json:"portfolio_return"`
	BenchmarkReturn     float64 `json:"benchmark_return"`
	BenchmarkVolatility float64 `json:"benchmark_volatility"`
	ExcessReturn        float64 `json:"excess_return"`
	TrackingError       float64 `json:"tracking_error"`
	InformationRatio    float64 `json:"information_ratio"`
	Correlation         float64 `json:"correlation"`
	Beta                float64 `json:"beta"`
	Alpha               float64 `json:"alpha"`
	RSquared            float64 `json:"r_squared"`
	UpCaptureRatio      float64 `json:"up_capture_ratio"`
	DownCaptureRatio    float64 `json:"down_capture_ratio"`
	HitRate             float64 `json:"hit_rate"`
	Observations        int     `json:"observations"`
}

// Segment is one group's weight and return on one side (portfolio or benchmark)
type Segment struct {
	GroupKey string
	Weight   decimal.Decimal
	Return   decimal.Decimal
}

// AttributionEntry is the Brinson decomposition of a single group
type AttributionEntry struct {
	GroupKey          string          `json:"group_key"`
	AllocationEffect  decimal.Decimal `json:"allocation_effect"`
	SelectionEffect   decimal.Decimal `json:"selection_effect"`
	InteractionEffect decimal.Decimal `json:"interaction_effect"`
	PortfolioWeight   decimal.Decimal `json:"portfolio_weight"`
	BenchmarkWeight   decimal.Decimal `json:"benchmark_weight"`
	PortfolioReturn   decimal.Decimal `json:"portfolio_return"`
	BenchmarkReturn   decimal.Decimal `json:"benchmark_return"`
}

// AttributionResult is the full Brinson decomposition across a dimension
type AttributionResult struct {
	Dimension        AttributionDimension `json:"dimension"`
	Entries          []AttributionEntry   `json:"entries"`
	AllocationTotal  decimal.Decimal      `json:"allocation_total"`
	SelectionTotal   decimal.Decimal      `json:"selection_total"`
	InteractionTotal decimal.Decimal      `json:"interaction_total"`
	CurrencyEffect   decimal.Decimal      `json:"currency_effect"`
	PortfolioReturn  decimal.Decimal      `json:"portfolio_return"`
	BenchmarkReturn  decimal.Decimal      `json:"benchmark_return"`
	ExcessReturn     decimal.Decimal      `json:"excess_return"`
}

// TotalEffect sums allocation, selection, interaction and currency effects
func (a AttributionResult) TotalEffect() decimal.Decimal {
	return a.AllocationTotal.Add(a.SelectionTotal).Add(a.InteractionTotal).Add(a.CurrencyEffect)
}

// PerformancePeriod is the immutable result of one (portfolio, period) calculation
// A recalculation produces a new record with a new ID
type PerformancePeriod struct {
	ID                      uuid.UUID           `json:"id"`
	TenantID                uuid.UUID           `json:"tenant_id"`
	PortfolioID             uuid.UUID           `json:"portfolio_id"`
	PeriodType              PeriodType          `json:"period_type"`
	PeriodStart             time.Time           `json:"period_start"`
	PeriodEnd               time.Time           `json:"period_end"`
	Method                  CalculationMethod   `json:"calculation_method"`
	BeginningValue          decimal.Decimal     `json:"beginning_value"`
	EndingValue             decimal.Decimal     `json:"ending_value"`
	Returns                 ReturnSet           `json:"returns"`
	PrimaryReturn           decimal.Decimal     `json:"primary_return"`
	NetReturn               decimal.Decimal     `json:"net_return"`
	AnnualizedReturn        decimal.Decimal     `json:"annualized_return"`
	Risk                    RiskMetrics         `json:"risk"`
	RiskAdjusted            RiskAdjustedMetrics `json:"risk_adjusted"`
	Fees                    FeeBreakdown        `json:"fees"`
	CashFlows               CashFlowSummary     `json:"cash_flows"`
	DataQualityScore        int                 `json:"data_quality_score"`
	HasSignificantCashFlows bool                `json:"has_significant_cash_flows"`
	CalculatedAt            time.Time           `json:"calculated_at"`
}

// Window returns the measurement window of the period
func (p PerformancePeriod) Window() PeriodWindow {
	return PeriodWindow{Start: p.PeriodStart, End: p.PeriodEnd}
}
