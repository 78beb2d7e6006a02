package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthflow-analytics/internal/domain"
)

// performanceRepository implements domain.PerformanceRepository
type performanceRepository struct {
	db *DB
}

// NewPerformanceRepository creates a new performance period repository
func NewPerformanceRepository(db *DB) domain.PerformanceRepository {
	return &performanceRepository{db: db}
}

// Save inserts a new performance period; periods are never updated in place
func (r *performanceRepository) Save(ctx context.Context, period *domain.PerformancePeriod) error {
	query := `
		INSERT INTO performance_periods (
			id, tenant_id, portfolio_id, period_type, period_start, period_end, calculation_method,
			beginning_value, ending_value, primary_return, net_return, annualized_return,
			returns, risk, risk_adjusted, fees, cash_flows,
			data_quality_score, has_significant_cash_flows, calculated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	docs, err := marshalDocuments(period.Returns, period.Risk, period.RiskAdjusted, period.Fees, period.CashFlows)
	if err != nil {
		return fmt.Errorf("failed to encode performance period %s: %w", period.ID, err)
	}

	_, err = r.db.ExecContext(ctx, query,
		period.ID,
		period.TenantID,
		period.PortfolioID,
		string(period.PeriodType),
		period.PeriodStart,
		period.PeriodEnd,
		string(period.Method),
		period.BeginningValue.String(),
		period.EndingValue.String(),
		period.PrimaryReturn.String(),
		period.NetReturn.String(),
		period.AnnualizedReturn.String(),
		docs[0], docs[1], docs[2], docs[3], docs[4],
		period.DataQualityScore,
		period.HasSignificantCashFlows,
		period.CalculatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert performance period: %w", err)
	}

	return nil
}

// ListByPortfolio retrieves the most recently calculated periods of a portfolio
func (r *performanceRepository) ListByPortfolio(ctx context.Context, portfolioID uuid.UUID, limit int) ([]*domain.PerformancePeriod, error) {
	query := `
		SELECT id, tenant_id, portfolio_id, period_type, period_start, period_end, calculation_method,
		       beginning_value, ending_value, primary_return, net_return, annualized_return,
		       returns, risk, risk_adjusted, fees, cash_flows,
		       data_quality_score, has_significant_cash_flows, calculated_at
		FROM performance_periods
		WHERE portfolio_id = $1
		ORDER BY calculated_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, portfolioID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query performance periods: %w", err)
	}
	defer rows.Close()

	periods := []*domain.PerformancePeriod{}
	for rows.Next() {
		var p domain.PerformancePeriod
		var periodType, method string
		var beginning, ending, primary, net, annualized string
		var returnsDoc, riskDoc, adjustedDoc, feesDoc, flowsDoc []byte

		if err := rows.Scan(
			&p.ID, &p.TenantID, &p.PortfolioID, &periodType, &p.PeriodStart, &p.PeriodEnd, &method,
			&beginning, &ending, &primary, &net, &annualized,
			&returnsDoc, &riskDoc, &adjustedDoc, &feesDoc, &flowsDoc,
			&p.DataQualityScore, &p.HasSignificantCashFlows, &p.CalculatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan performance period: %w", err)
		}

		p.PeriodType = domain.PeriodType(periodType)
		p.Method = domain.CalculationMethod(method)

		values, err := parseDecimals(beginning, ending, primary, net, annualized)
		if err != nil {
			return nil, fmt.Errorf("failed to parse performance period %s: %w", p.ID, err)
		}
		p.BeginningValue, p.EndingValue, p.PrimaryReturn, p.NetReturn, p.AnnualizedReturn =
			values[0], values[1], values[2], values[3], values[4]

		if err := unmarshalDocuments(
			document{returnsDoc, &p.Returns},
			document{riskDoc, &p.Risk},
			document{adjustedDoc, &p.RiskAdjusted},
			document{feesDoc, &p.Fees},
			document{flowsDoc, &p.CashFlows},
		); err != nil {
			return nil, fmt.Errorf("failed to decode performance period %s: %w", p.ID, err)
		}

		periods = append(periods, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate performance periods: %w", err)
	}

	return periods, nil
}

// document pairs a JSONB column with its destination
type document struct {
	raw  []byte
	dest any
}

func marshalDocuments(values ...any) ([][]byte, error) {
	out := make([][]byte, len(values))
	for i, v := range values {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}

func unmarshalDocuments(docs ...document) error {
	for _, d := range docs {
		if err := json.Unmarshal(d.raw, d.dest); err != nil {
			return err
		}
	}
	return nil
}

func parseDecimals(values ...string) ([]decimal.Decimal, error) {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}
