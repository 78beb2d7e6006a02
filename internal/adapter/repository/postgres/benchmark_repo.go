package postgres

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"github.com/simaogato/wealthflow-analytics/internal/domain"
)

// benchmarkPrice is one closing level of a benchmark index
type benchmarkPrice struct {
	date  time.Time
	close decimal.Decimal
}

// benchmarkRepository implements domain.BenchmarkProvider on top of stored closing prices
type benchmarkRepository struct {
	db                 *DB
	tradingDaysPerYear int
}

// NewBenchmarkRepository creates a new benchmark repository
func NewBenchmarkRepository(db *DB, tradingDaysPerYear int) domain.BenchmarkProvider {
	return &benchmarkRepository{db: db, tradingDaysPerYear: tradingDaysPerYear}
}

// GetReturn compounds the benchmark from its anchor close to its last close in the window
func (r *benchmarkRepository) GetReturn(ctx context.Context, benchmarkID string, start, end time.Time) (float64, error) {
	prices, err := r.prices(ctx, benchmarkID, start, end)
	if err != nil {
		return 0, err
	}
	first, last := prices[0].close, prices[len(prices)-1].close
	return last.Div(first).Sub(decimal.NewFromInt(1)).InexactFloat64(), nil
}

// GetVolatility annualizes the sample standard deviation of the daily returns
func (r *benchmarkRepository) GetVolatility(ctx context.Context, benchmarkID string, start, end time.Time) (float64, error) {
	prices, err := r.prices(ctx, benchmarkID, start, end)
	if err != nil {
		return 0, err
	}
	daily := dailyReturns(prices)
	if len(daily) < 2 {
		return 0, nil
	}
	return stat.StdDev(domain.ReturnValues(daily), nil) * math.Sqrt(float64(r.tradingDaysPerYear)), nil
}

// GetDailySeries derives close-to-close returns, dated on the later close
func (r *benchmarkRepository) GetDailySeries(ctx context.Context, benchmarkID string, start, end time.Time) ([]domain.DailyReturn, error) {
	prices, err := r.prices(ctx, benchmarkID, start, end)
	if err != nil {
		return nil, err
	}
	return dailyReturns(prices), nil
}

// prices loads the closes in [start, end] plus the latest close before start as anchor
// Returns ErrBenchmarkUnavailable when fewer than two closes exist
func (r *benchmarkRepository) prices(ctx context.Context, benchmarkID string, start, end time.Time) ([]benchmarkPrice, error) {
	query := `
		SELECT price_date, close_price
		FROM benchmark_prices
		WHERE benchmark_id = $1
		  AND price_date >= COALESCE(
		      (SELECT MAX(price_date) FROM benchmark_prices WHERE benchmark_id = $1 AND price_date <= $2),
		      $2)
		  AND price_date <= $3
		ORDER BY price_date ASC
	`

	rows, err := r.db.QueryContext(ctx, query, benchmarkID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query benchmark prices: %w", err)
	}
	defer rows.Close()

	var prices []benchmarkPrice
	for rows.Next() {
		var p benchmarkPrice
		var closeStr string
		if err := rows.Scan(&p.date, &closeStr); err != nil {
			return nil, fmt.Errorf("failed to scan benchmark price: %w", err)
		}
		p.close, err = decimal.NewFromString(closeStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse close_price: %w", err)
		}
		if !p.close.IsPositive() {
			return nil, fmt.Errorf("benchmark %s has non-positive close on %s", benchmarkID, domain.DateKey(p.date))
		}
		prices = append(prices, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate benchmark prices: %w", err)
	}

	if len(prices) < 2 {
		return nil, fmt.Errorf("benchmark %s has %d close(s) between %s and %s: %w",
			benchmarkID, len(prices), domain.DateKey(start), domain.DateKey(end), domain.ErrBenchmarkUnavailable)
	}
	return prices, nil
}

func dailyReturns(prices []benchmarkPrice) []domain.DailyReturn {
	if len(prices) < 2 {
		return nil
	}
	out := make([]domain.DailyReturn, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		r := prices[i].close.Div(prices[i-1].close).Sub(decimal.NewFromInt(1))
		out = append(out, domain.DailyReturn{Date: prices[i].date, Return: r.InexactFloat64()})
	}
	return out
}
