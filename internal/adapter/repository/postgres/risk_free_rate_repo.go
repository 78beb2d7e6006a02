package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthflow-analytics/internal/domain"
)

// riskFreeRateRepository implements domain.RiskFreeRateProvider
type riskFreeRateRepository struct {
	db          *DB
	defaultRate decimal.Decimal
}

// NewRiskFreeRateRepository creates a new risk-free rate repository
// Tenants without a stored setting get defaultRate
func NewRiskFreeRateRepository(db *DB, defaultRate decimal.Decimal) domain.RiskFreeRateProvider {
	return &riskFreeRateRepository{db: db, defaultRate: defaultRate}
}

// Get retrieves the tenant's configured risk-free rate
func (r *riskFreeRateRepository) Get(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error) {
	query := `
		SELECT risk_free_rate
		FROM tenant_settings
		WHERE tenant_id = $1
	`

	var rateStr string
	err := r.db.QueryRowContext(ctx, query, tenantID).Scan(&rateStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r.defaultRate, nil
		}
		return decimal.Zero, fmt.Errorf("failed to get risk-free rate: %w", err)
	}

	rate, err := decimal.NewFromString(rateStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse risk_free_rate: %w", err)
	}
	return rate, nil
}
