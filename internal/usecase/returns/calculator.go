package returns

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthflow-analytics/internal/domain"
)

// decimalPlaces bounds the scale of chained products so TWR stays exact to well beyond 8 significant digits
const decimalPlaces = 16

// Config tunes the iterative parts of the calculator
type Config struct {
	MaxIterations int     // Newton-Raphson iteration budget for IRR
	Tolerance     float64 // |NPV| below which IRR is considered converged
	InitialGuess  float64 // starting periodic rate for IRR
}

// DefaultConfig returns the conventional IRR settings (100 iterations, 1e-6, 10%)
func DefaultConfig() Config {
	return Config{
		MaxIterations: 100,
		Tolerance:     1e-6,
		InitialGuess:  0.1,
	}
}

// Input is everything the calculator needs for one period
type Input struct {
	Window         domain.PeriodWindow
	BeginningValue decimal.Decimal
	EndingValue    decimal.Decimal
	Series         []domain.ValuationPoint
	Flows          []domain.CashFlow
	Timing         domain.CashFlowTiming
	TotalFees      decimal.Decimal
}

// Result carries every return methodology plus the portfolio daily series derived from TWR
type Result struct {
	Set              domain.ReturnSet
	NetReturn        decimal.Decimal
	AnnualizedReturn decimal.Decimal
	DailyReturns     []domain.DailyReturn
	IRRConverged     bool
	IRRIterations    int
	Warnings         []string
}

// Calculate computes Simple, Logarithmic, TWR, MWR and Modified Dietz returns
// Logic:
//  1. Simple return from beginning/ending values and net flows
//  2. TWR from the daily series (falls back to Simple when the series is missing)
//  3. Logarithmic return as ln(1 + TWR)
//  4. MWR by Newton-Raphson on the flow vector
//  5. Modified Dietz with day-weighted flows
//  6. Net return = TWR - fees / beginning value
func Calculate(in Input, cfg Config) Result {
	var result Result
	warn := func(format string, args ...interface{}) {
		result.Warnings = append(result.Warnings, fmt.Sprintf(format, args...))
	}

	net := netFlows(in.Flows)

	result.Set.Simple = SimpleReturn(in.BeginningValue, in.EndingValue, net)
	if !in.BeginningValue.IsPositive() {
		warn("beginning value %s is not positive; simple return reported as 0", in.BeginningValue)
	}

	if len(in.Series) >= 2 {
		twr := TimeWeightedReturn(in.Series, in.Flows, in.Timing)
		result.Set.TimeWeighted = twr.Return
		result.DailyReturns = twr.SubPeriods
		if twr.SkippedPeriods > 0 {
			warn("%d sub-period(s) had a non-positive base value and were treated as flat", twr.SkippedPeriods)
		}
		if twr.UnattachedFlows > 0 {
			warn("%d cash flow(s) fall outside the valuation series and were excluded from the time-weighted return", twr.UnattachedFlows)
		}
	} else {
		result.Set.TimeWeighted = result.Set.Simple
		warn("daily valuation series missing; time-weighted return falls back to simple return")
	}

	logReturn, ok := LogReturn(result.Set.TimeWeighted)
	if !ok {
		warn("time-weighted return %s is at or below -100%%; logarithmic return reported as 0", result.Set.TimeWeighted)
	}
	result.Set.Logarithmic = logReturn

	irr := MoneyWeightedReturn(in.Window, in.BeginningValue, in.EndingValue, in.Flows, cfg)
	result.Set.MoneyWeighted = irr.Rate
	result.IRRConverged = irr.Converged
	result.IRRIterations = irr.Iterations
	switch {
	case irr.TotalLoss:
		warn("money-weighted return: capital was deployed and nothing returned; reported as -100%%")
	case irr.Undefined:
		warn("money-weighted return undefined: flows never change sign; reported as 0")
	case !irr.Converged:
		warn("money-weighted return did not converge after %d iterations; result is unreliable", irr.Iterations)
	}

	dietz, ok := ModifiedDietz(in.Window, in.BeginningValue, in.EndingValue, in.Flows)
	if !ok {
		warn("average capital is not positive; modified Dietz return reported as 0")
	}
	result.Set.ModifiedDietz = dietz

	result.NetReturn = NetReturn(result.Set.TimeWeighted, in.TotalFees, in.BeginningValue)
	if !in.TotalFees.IsZero() && !in.BeginningValue.IsPositive() {
		warn("fees cannot be applied to a non-positive beginning value; net return equals gross return")
	}

	result.AnnualizedReturn = Annualize(result.Set.TimeWeighted, in.Window.Days())
	return result
}

// SimpleReturn computes (ending - beginning - netFlows) / beginning
// Returns 0 when the beginning value is not positive
func SimpleReturn(beginningValue, endingValue, netFlows decimal.Decimal) decimal.Decimal {
	if !beginningValue.IsPositive() {
		return decimal.Zero
	}
	gain := endingValue.Sub(beginningValue).Sub(netFlows)
	return gain.Div(beginningValue)
}

// LogReturn computes ln(1 + r); ok is false when 1 + r is not positive
func LogReturn(r decimal.Decimal) (decimal.Decimal, bool) {
	growth := r.Add(decimal.NewFromInt(1))
	if !growth.IsPositive() {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(math.Log1p(r.InexactFloat64())), true
}

// NetReturn subtracts the fee drag (fees / beginning value) from the gross return
func NetReturn(gross, totalFees, beginningValue decimal.Decimal) decimal.Decimal {
	if !beginningValue.IsPositive() {
		return gross
	}
	return gross.Sub(totalFees.Div(beginningValue))
}

// Annualize converts a period return to an annual rate for windows of at least a year
// Shorter windows are returned unchanged
func Annualize(r decimal.Decimal, days int) decimal.Decimal {
	if days < 365 {
		return r
	}
	growth := 1 + r.InexactFloat64()
	if growth <= 0 {
		return r
	}
	return decimal.NewFromFloat(math.Pow(growth, 365/float64(days)) - 1)
}

func netFlows(flows []domain.CashFlow) decimal.Decimal {
	net := decimal.Zero
	for _, f := range flows {
		net = net.Add(f.Amount)
	}
	return net
}
