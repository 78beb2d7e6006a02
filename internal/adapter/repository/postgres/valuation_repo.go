package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthflow-analytics/internal/domain"
)

// valuationRepository implements domain.PortfolioValuationProvider
type valuationRepository struct {
	db *DB
}

// NewValuationRepository creates a new valuation repository
func NewValuationRepository(db *DB) domain.PortfolioValuationProvider {
	return &valuationRepository{db: db}
}

// GetValueAt retrieves the latest valuation on or before the given date
func (r *valuationRepository) GetValueAt(ctx context.Context, portfolioID uuid.UUID, date time.Time) (decimal.Decimal, error) {
	query := `
		SELECT market_value
		FROM portfolio_valuations
		WHERE portfolio_id = $1 AND valuation_date <= $2
		ORDER BY valuation_date DESC
		LIMIT 1
	`

	var marketValueStr string
	err := r.db.QueryRowContext(ctx, query, portfolioID, date).Scan(&marketValueStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, fmt.Errorf("no valuation for portfolio %s on or before %s: %w",
				portfolioID, domain.DateKey(date), domain.ErrValuationUnavailable)
		}
		return decimal.Zero, fmt.Errorf("failed to get valuation: %w", err)
	}

	marketValue, err := decimal.NewFromString(marketValueStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse market_value: %w", err)
	}
	return marketValue, nil
}

// GetDailySeries retrieves one valuation per stored day in [start, end], oldest first
func (r *valuationRepository) GetDailySeries(ctx context.Context, portfolioID uuid.UUID, start, end time.Time) ([]domain.ValuationPoint, error) {
	query := `
		SELECT valuation_date, market_value
		FROM portfolio_valuations
		WHERE portfolio_id = $1 AND valuation_date >= $2 AND valuation_date <= $3
		ORDER BY valuation_date ASC
	`

	rows, err := r.db.QueryContext(ctx, query, portfolioID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query valuation series: %w", err)
	}
	defer rows.Close()

	series := []domain.ValuationPoint{}
	for rows.Next() {
		var point domain.ValuationPoint
		var marketValueStr string
		if err := rows.Scan(&point.Date, &marketValueStr); err != nil {
			return nil, fmt.Errorf("failed to scan valuation: %w", err)
		}
		point.MarketValue, err = decimal.NewFromString(marketValueStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse market_value: %w", err)
		}
		series = append(series, point)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate valuations: %w", err)
	}

	return series, nil
}
