package risk

import (
	"math"

	"github.com/simaogato/wealthflow-analytics/internal/domain"
	"gonum.org/v1/gonum/stat"
)

// DefaultTradingDaysPerYear is the annualization base for daily statistics
const DefaultTradingDaysPerYear = 252

// CalculateMetrics computes dispersion and drawdown statistics from daily returns
// Logic:
//   - standardDeviation = sample standard deviation of the daily returns
//   - volatility = standardDeviation * sqrt(tradingDaysPerYear)
//   - downsideDeviation = sqrt(mean(r^2 for r < 0)) * sqrt(tradingDaysPerYear)
//   - maxDrawdown / duration from the compounded path (see Drawdown)
//
// Every metric is 0 for an empty series; nothing here panics
func CalculateMetrics(dailyReturns []float64, tradingDaysPerYear int) domain.RiskMetrics {
	if len(dailyReturns) == 0 {
		return domain.RiskMetrics{}
	}
	if tradingDaysPerYear <= 0 {
		tradingDaysPerYear = DefaultTradingDaysPerYear
	}
	annualization := math.Sqrt(float64(tradingDaysPerYear))

	stdDev := StdDev(dailyReturns)
	maxDrawdown, duration := Drawdown(dailyReturns)

	return domain.RiskMetrics{
		StandardDeviation:       stdDev,
		Volatility:              stdDev * annualization,
		DownsideDeviation:       DownsideDeviation(dailyReturns) * annualization,
		MaxDrawdown:             maxDrawdown,
		MaxDrawdownDurationDays: duration,
	}
}

// StdDev is the sample standard deviation, 0 for fewer than two observations
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// DownsideDeviation is the root mean square of the negative returns (zero target)
// Returns 0 when no return is negative
func DownsideDeviation(dailyReturns []float64) float64 {
	negatives := make([]float64, 0, len(dailyReturns))
	for _, r := range dailyReturns {
		if r < 0 {
			negatives = append(negatives, r*r)
		}
	}
	if len(negatives) == 0 {
		return 0
	}
	return math.Sqrt(stat.Mean(negatives, nil))
}

// Drawdown tracks the compounded path from 1.0 and returns the deepest
// peak-to-trough loss (<= 0) and the longest run of days spent below a prior peak
func Drawdown(dailyReturns []float64) (float64, int) {
	cumulative := 1.0
	peak := 1.0
	maxDrawdown := 0.0
	duration, maxDuration := 0, 0

	for _, r := range dailyReturns {
		cumulative *= 1 + r
		if cumulative >= peak {
			peak = cumulative
			duration = 0
			continue
		}

		duration++
		if duration > maxDuration {
			maxDuration = duration
		}
		if peak > 0 {
			if dd := (peak - cumulative) / peak; dd > maxDrawdown {
				maxDrawdown = dd
			}
		}
	}

	if maxDrawdown == 0 {
		return 0, maxDuration
	}
	return -maxDrawdown, maxDuration
}
