package postgres

import (
	"context"
	"fmt"

	"github.com/simaogato/wealthflow-analytics/internal/domain"
)

// portfolioRepository implements domain.PortfolioDirectory
type portfolioRepository struct {
	db *DB
}

// NewPortfolioRepository creates a new portfolio repository
func NewPortfolioRepository(db *DB) domain.PortfolioDirectory {
	return &portfolioRepository{db: db}
}

// ListActive retrieves every active portfolio across tenants
func (r *portfolioRepository) ListActive(ctx context.Context) ([]domain.PortfolioRef, error) {
	query := `
		SELECT tenant_id, id
		FROM portfolios
		WHERE is_active = TRUE
		ORDER BY tenant_id ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active portfolios: %w", err)
	}
	defer rows.Close()

	refs := []domain.PortfolioRef{}
	for rows.Next() {
		var ref domain.PortfolioRef
		if err := rows.Scan(&ref.TenantID, &ref.PortfolioID); err != nil {
			return nil, fmt.Errorf("failed to scan portfolio: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate portfolios: %w", err)
	}

	return refs, nil
}
