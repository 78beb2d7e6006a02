package returns

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthflow-analytics/internal/domain"
)

var (
	one  = decimal.NewFromInt(1)
	half = decimal.NewFromFloat(0.5)
)

// TWRResult is the chained time-weighted return and the sub-period returns it was built from
type TWRResult struct {
	Return         decimal.Decimal
	SubPeriods     []domain.DailyReturn
	SkippedPeriods int
	UnattachedFlows int
}

// TimeWeightedReturn chains one sub-period return per consecutive pair of valuation points
// Logic:
//  1. Attach each flow to the first valuation point dated on or after it
//  2. For each pair (V0, V1) with attached flow CF, growth = (V1 - CF) / V0'
//     - END_OF_DAY (default): V0' = V0
//     - BEGINNING_OF_DAY:     V0' = V0 + CF
//     - ACTUAL_TIME:          V0' = V0 + CF/2
//  3. cumulative *= growth; TWR = cumulative - 1
//
// A sub-period whose base is not positive contributes a flat (0) return.
// Flows dated on or before the first point, or after the last, cannot be
// attached and are counted in UnattachedFlows
func TimeWeightedReturn(series []domain.ValuationPoint, flows []domain.CashFlow, timing domain.CashFlowTiming) TWRResult {
	result := TWRResult{Return: decimal.Zero}
	if len(series) < 2 {
		return result
	}

	attached, unattached := attachFlows(series, flows)
	result.UnattachedFlows = unattached
	cumulative := one
	result.SubPeriods = make([]domain.DailyReturn, 0, len(series)-1)

	for i := 1; i < len(series); i++ {
		growth, ok := subPeriodGrowth(series[i-1].MarketValue, series[i].MarketValue, attached[i], timing)
		if !ok {
			result.SkippedPeriods++
			growth = one
		}

		cumulative = cumulative.Mul(growth).Round(decimalPlaces)
		result.SubPeriods = append(result.SubPeriods, domain.DailyReturn{
			Date:   series[i].Date,
			Return: growth.Sub(one).InexactFloat64(),
		})
	}

	result.Return = cumulative.Sub(one)
	return result
}

// subPeriodGrowth returns 1 + r for one sub-period under the timing convention
func subPeriodGrowth(prev, cur, flow decimal.Decimal, timing domain.CashFlowTiming) (decimal.Decimal, bool) {
	numerator := cur.Sub(flow)
	base := prev

	switch timing {
	case domain.TimingBeginningOfDay:
		base = prev.Add(flow)
	case domain.TimingActualTime:
		base = prev.Add(flow.Mul(half))
	}

	if !base.IsPositive() {
		return decimal.Zero, false
	}
	return numerator.Div(base), true
}

// attachFlows sums flows per valuation point and counts the flows it could not place;
// index 0 never carries a flow because its value is the period's starting base
func attachFlows(series []domain.ValuationPoint, flows []domain.CashFlow) ([]decimal.Decimal, int) {
	attached := make([]decimal.Decimal, len(series))
	for i := range attached {
		attached[i] = decimal.Zero
	}

	unattached := 0
	for _, f := range flows {
		flowDay := domain.DateKey(f.Date)
		idx := sort.Search(len(series), func(i int) bool {
			return domain.DateKey(series[i].Date) >= flowDay
		})
		if idx == 0 || idx >= len(series) {
			unattached++
			continue
		}
		attached[idx] = attached[idx].Add(f.Amount)
	}

	return attached, unattached
}
