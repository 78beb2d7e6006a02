package risk

import (
	"math"

	"github.com/simaogato/wealthflow-analytics/internal/domain"
)

// DefaultBeta is used when no benchmark regression is available
const DefaultBeta = 1.0

// AdjustedInput is the input of the risk-adjusted ratios
type AdjustedInput struct {
	PortfolioReturn   float64
	Volatility        float64
	DownsideDeviation float64
	MaxDrawdown       float64 // <= 0
	RiskFreeRate      float64
	MarketReturn      float64  // broad-market proxy from configuration
	Beta              *float64 // nil when not separately computed
}

// CalculateAdjusted computes Sharpe, Sortino, Calmar, Treynor and Jensen's alpha
// Each ratio is 0 when its denominator is degenerate; warnings name the affected ratios
func CalculateAdjusted(in AdjustedInput) (domain.RiskAdjustedMetrics, []string) {
	var warnings []string
	beta := DefaultBeta
	if in.Beta != nil {
		beta = *in.Beta
	}

	excess := in.PortfolioReturn - in.RiskFreeRate
	metrics := domain.RiskAdjustedMetrics{Beta: beta}

	if in.Volatility > 0 {
		metrics.SharpeRatio = excess / in.Volatility
	} else {
		warnings = append(warnings, "volatility is zero; Sharpe ratio reported as 0")
	}

	if in.DownsideDeviation > 0 {
		metrics.SortinoRatio = excess / in.DownsideDeviation
	} else {
		warnings = append(warnings, "downside deviation is zero; Sortino ratio reported as 0")
	}

	if in.MaxDrawdown != 0 {
		metrics.CalmarRatio = in.PortfolioReturn / math.Abs(in.MaxDrawdown)
	} else {
		warnings = append(warnings, "no drawdown observed; Calmar ratio reported as 0")
	}

	if beta > 0 {
		metrics.TreynorRatio = excess / beta
	} else {
		warnings = append(warnings, "beta is not positive; Treynor ratio reported as 0")
	}

	metrics.JensenAlpha = in.PortfolioReturn - (in.RiskFreeRate + beta*(in.MarketReturn-in.RiskFreeRate))
	return metrics, warnings
}
