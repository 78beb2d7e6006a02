package benchmark

import (
	"fmt"
	"math"

	"github.com/simaogato/wealthflow-analytics/internal/domain"
	"gonum.org/v1/gonum/stat"
)

// minObservations is the overlap below which no series statistic is computed
const minObservations = 2

// Input is the portfolio and benchmark data needed for a comparison
type Input struct {
	BenchmarkID         string
	PortfolioReturn     float64
	BenchmarkReturn     float64
	BenchmarkVolatility float64
	PortfolioDaily      []domain.DailyReturn
	BenchmarkDaily      []domain.DailyReturn
	RiskFreeRate        float64
	TradingDaysPerYear  int
}

// Compare computes benchmark-relative statistics over the overlapping days of both series
// Logic:
//  1. Align both daily series by calendar date
//  2. excess = portfolio - benchmark period return
//  3. With at least two overlapping days: tracking error, information ratio,
//     correlation, OLS beta, alpha, R^2, capture ratios and hit rate
//
// With fewer than two overlapping days every relative statistic, excess return included, stays 0
func Compare(in Input) (domain.BenchmarkComparison, []string) {
	var warnings []string
	warn := func(format string, args ...interface{}) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	result := domain.BenchmarkComparison{
		BenchmarkID:         in.BenchmarkID,
		PortfolioReturn:     in.PortfolioReturn,
		BenchmarkReturn:     in.BenchmarkReturn,
		BenchmarkVolatility: in.BenchmarkVolatility,
	}

	portfolio, bench := Align(in.PortfolioDaily, in.BenchmarkDaily)
	result.Observations = len(portfolio)
	if len(portfolio) < minObservations {
		warn("only %d overlapping observation(s) with benchmark %s; relative statistics reported as 0", len(portfolio), in.BenchmarkID)
		return result, warnings
	}

	result.ExcessReturn = in.PortfolioReturn - in.BenchmarkReturn

	tradingDays := in.TradingDaysPerYear
	if tradingDays <= 0 {
		tradingDays = 252
	}

	result.TrackingError = TrackingError(portfolio, bench, tradingDays)
	if result.TrackingError > 0 {
		result.InformationRatio = result.ExcessReturn / result.TrackingError
	} else {
		warn("tracking error is zero; information ratio reported as 0")
	}

	if stat.Variance(portfolio, nil) > 0 && stat.Variance(bench, nil) > 0 {
		result.Correlation = stat.Correlation(portfolio, bench, nil)
		result.RSquared = result.Correlation * result.Correlation
	} else {
		warn("a return series is constant; correlation reported as 0")
	}

	result.Beta = Beta(portfolio, bench)
	result.Alpha = in.PortfolioReturn - (in.RiskFreeRate + result.Beta*(in.BenchmarkReturn-in.RiskFreeRate))
	result.UpCaptureRatio, result.DownCaptureRatio = CaptureRatios(portfolio, bench)
	result.HitRate = HitRate(portfolio, bench)

	return result, warnings
}

// Align keeps the days present in both series, in portfolio order
func Align(portfolio, benchmark []domain.DailyReturn) ([]float64, []float64) {
	byDate := make(map[string]float64, len(benchmark))
	for _, b := range benchmark {
		byDate[domain.DateKey(b.Date)] = b.Return
	}

	p := make([]float64, 0, len(portfolio))
	b := make([]float64, 0, len(portfolio))
	for _, r := range portfolio {
		if br, ok := byDate[domain.DateKey(r.Date)]; ok {
			p = append(p, r.Return)
			b = append(b, br)
		}
	}
	return p, b
}

// TrackingError is the annualized sample standard deviation of daily active returns
func TrackingError(portfolio, benchmark []float64, tradingDaysPerYear int) float64 {
	if len(portfolio) < minObservations || len(portfolio) != len(benchmark) {
		return 0
	}
	active := make([]float64, len(portfolio))
	for i := range portfolio {
		active[i] = portfolio[i] - benchmark[i]
	}
	return stat.StdDev(active, nil) * math.Sqrt(float64(tradingDaysPerYear))
}

// Beta is the OLS slope of portfolio on benchmark returns, 0 when the benchmark is flat
func Beta(portfolio, benchmark []float64) float64 {
	if len(portfolio) < minObservations || len(portfolio) != len(benchmark) {
		return 0
	}
	variance := stat.Variance(benchmark, nil)
	if variance == 0 {
		return 0
	}
	return stat.Covariance(portfolio, benchmark, nil) / variance
}

// CaptureRatios compares average portfolio and benchmark returns on up and down benchmark days
func CaptureRatios(portfolio, benchmark []float64) (up float64, down float64) {
	var upP, upB, downP, downB []float64
	for i := range benchmark {
		switch {
		case benchmark[i] > 0:
			upP = append(upP, portfolio[i])
			upB = append(upB, benchmark[i])
		case benchmark[i] < 0:
			downP = append(downP, portfolio[i])
			downB = append(downB, benchmark[i])
		}
	}
	return captureRatio(upP, upB), captureRatio(downP, downB)
}

func captureRatio(portfolio, benchmark []float64) float64 {
	if len(benchmark) == 0 {
		return 0
	}
	benchmarkMean := stat.Mean(benchmark, nil)
	if benchmarkMean == 0 {
		return 0
	}
	return stat.Mean(portfolio, nil) / benchmarkMean
}

// HitRate is the fraction of days on which the portfolio matched or beat the benchmark
func HitRate(portfolio, benchmark []float64) float64 {
	if len(portfolio) == 0 {
		return 0
	}
	hits := 0
	for i := range portfolio {
		if portfolio[i] >= benchmark[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(portfolio))
}
