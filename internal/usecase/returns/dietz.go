package returns

import (
	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthflow-analytics/internal/domain"
)

// ModifiedDietz weights each flow by the fraction of the period remaining after it occurs
// Logic:
//   - weight = (totalDays - daysFromStart) / totalDays
//   - averageCapital = beginningValue + sum(flow * weight)
//   - return = (endingValue - beginningValue - netFlows) / averageCapital
//
// ok is false (and the return 0) when the average capital is not positive
func ModifiedDietz(window domain.PeriodWindow, beginningValue, endingValue decimal.Decimal, flows []domain.CashFlow) (decimal.Decimal, bool) {
	totalDays := window.Days()
	if totalDays <= 0 {
		return decimal.Zero, false
	}
	total := decimal.NewFromInt(int64(totalDays))

	averageCapital := beginningValue
	net := decimal.Zero
	for _, f := range flows {
		elapsed := domain.DaysBetween(window.Start, f.Date)
		if elapsed < 0 {
			elapsed = 0
		}
		if elapsed > totalDays {
			elapsed = totalDays
		}

		weight := total.Sub(decimal.NewFromInt(int64(elapsed))).Div(total)
		averageCapital = averageCapital.Add(f.Amount.Mul(weight))
		net = net.Add(f.Amount)
	}

	if !averageCapital.IsPositive() {
		return decimal.Zero, false
	}

	gain := endingValue.Sub(beginningValue).Sub(net)
	return gain.Div(averageCapital), true
}
