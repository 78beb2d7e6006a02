package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ValuationPoint is the market value of a portfolio at the close of a trading day
// Points are produced by a PortfolioValuationProvider in ascending date order
type ValuationPoint struct {
	Date        time.Time
	MarketValue decimal.Decimal
}

// DailyReturn is a single day's return expressed as a decimal fraction (0.01 = 1%)
type DailyReturn struct {
	Date   time.Time
	Return float64
}

// ReturnValues extracts the return column of a daily series
func ReturnValues(series []DailyReturn) []float64 {
	out := make([]float64, len(series))
	for i, r := range series {
		out[i] = r.Return
	}
	return out
}
