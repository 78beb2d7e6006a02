package returns

import (
	"math"

	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthflow-analytics/internal/domain"
)

// derivativeFloor is the |NPV'| below which Newton-Raphson stops stepping
const derivativeFloor = 1e-12

// IRRResult is the outcome of the money-weighted root search
type IRRResult struct {
	Rate       decimal.Decimal
	Converged  bool
	Undefined  bool // the flow vector never changes sign, so no root exists
	TotalLoss  bool // capital deployed and nothing returned, rate is -1
	Iterations int
}

type timedFlow struct {
	t      float64 // fraction of the period elapsed, in [0, 1]
	amount float64 // investor perspective: deployed < 0, returned > 0
}

// MoneyWeightedReturn solves NPV(r) = 0 for the period rate r
// Flow vector, from the investor's point of view:
//
//	[-beginningValue at t=0, -flow_i at t_i, +endingValue at t=1]
//
// Portfolio flows are signed +contribution / -withdrawal, so a contribution is
// capital deployed (negative) and a withdrawal is capital returned (positive).
// Each t_i is the elapsed fraction of the window, so with no intermediate
// flows the rate equals the simple return. A vector with deployed capital and
// no returned capital is a total loss and reports -1
func MoneyWeightedReturn(window domain.PeriodWindow, beginningValue, endingValue decimal.Decimal, flows []domain.CashFlow, cfg Config) IRRResult {
	vector := buildFlowVector(window, beginningValue, endingValue, flows)
	positive, negative := flowSigns(vector)
	if negative && !positive {
		return IRRResult{Rate: one.Neg(), Undefined: true, TotalLoss: true}
	}
	if !positive || !negative {
		return IRRResult{Rate: decimal.Zero, Undefined: true}
	}

	maxIterations := cfg.MaxIterations
	if maxIterations <= 0 {
		maxIterations = DefaultConfig().MaxIterations
	}

	rate := cfg.InitialGuess
	result := IRRResult{}
	for result.Iterations < maxIterations {
		value, derivative := npv(vector, rate)
		if math.Abs(value) < cfg.Tolerance {
			result.Converged = true
			break
		}
		if math.Abs(derivative) < derivativeFloor || math.IsNaN(derivative) {
			break
		}

		result.Iterations++
		next := rate - value/derivative
		if math.IsNaN(next) || math.IsInf(next, 0) {
			break
		}
		if next <= -1 {
			// keep (1+r) positive so fractional powers stay real
			next = (rate - 1) / 2
		}
		rate = next
	}

	result.Rate = decimal.NewFromFloat(rate)
	return result
}

func buildFlowVector(window domain.PeriodWindow, beginningValue, endingValue decimal.Decimal, flows []domain.CashFlow) []timedFlow {
	totalDays := float64(window.Days())
	vector := make([]timedFlow, 0, len(flows)+2)
	vector = append(vector, timedFlow{t: 0, amount: beginningValue.Neg().InexactFloat64()})

	for _, f := range flows {
		t := 0.0
		if totalDays > 0 {
			t = float64(domain.DaysBetween(window.Start, f.Date)) / totalDays
		}
		t = math.Min(math.Max(t, 0), 1)
		vector = append(vector, timedFlow{t: t, amount: f.Amount.Neg().InexactFloat64()})
	}

	return append(vector, timedFlow{t: 1, amount: endingValue.InexactFloat64()})
}

// npv returns NPV(r) and dNPV/dr for the timed flows
func npv(vector []timedFlow, rate float64) (float64, float64) {
	var value, derivative float64
	base := 1 + rate
	for _, f := range vector {
		discount := math.Pow(base, -f.t)
		value += f.amount * discount
		derivative += -f.t * f.amount * discount / base
	}
	return value, derivative
}

// flowSigns reports whether the vector holds any returned (positive) and any deployed (negative) amount
func flowSigns(vector []timedFlow) (positive, negative bool) {
	for _, f := range vector {
		if f.amount > 0 {
			positive = true
		} else if f.amount < 0 {
			negative = true
		}
	}
	return positive, negative
}
