package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthflow-analytics/internal/domain"
)

const (
	segmentSidePortfolio = "PORTFOLIO"
	segmentSideBenchmark = "BENCHMARK"
)

// segmentRepository implements domain.AttributionProvider
type segmentRepository struct {
	db *DB
}

// NewSegmentRepository creates a new attribution segment repository
func NewSegmentRepository(db *DB) domain.AttributionProvider {
	return &segmentRepository{db: db}
}

// GetSegments retrieves both sides of the attribution for an exact window
func (r *segmentRepository) GetSegments(ctx context.Context, portfolioID uuid.UUID, benchmarkID string, dimension domain.AttributionDimension, start, end time.Time) ([]domain.Segment, []domain.Segment, error) {
	query := `
		SELECT side, group_key, weight, segment_return
		FROM attribution_segments
		WHERE ((side = 'PORTFOLIO' AND owner_id = $1) OR (side = 'BENCHMARK' AND owner_id = $2))
		  AND dimension = $3 AND period_start = $4 AND period_end = $5
		ORDER BY side ASC, group_key ASC
	`

	rows, err := r.db.QueryContext(ctx, query, portfolioID.String(), benchmarkID, string(dimension), start, end)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query attribution segments: %w", err)
	}
	defer rows.Close()

	var portfolio, benchmark []domain.Segment
	for rows.Next() {
		var side, weightStr, returnStr string
		var segment domain.Segment
		if err := rows.Scan(&side, &segment.GroupKey, &weightStr, &returnStr); err != nil {
			return nil, nil, fmt.Errorf("failed to scan attribution segment: %w", err)
		}
		if segment.Weight, err = decimal.NewFromString(weightStr); err != nil {
			return nil, nil, fmt.Errorf("failed to parse weight of segment %s: %w", segment.GroupKey, err)
		}
		if segment.Return, err = decimal.NewFromString(returnStr); err != nil {
			return nil, nil, fmt.Errorf("failed to parse return of segment %s: %w", segment.GroupKey, err)
		}

		switch side {
		case segmentSidePortfolio:
			portfolio = append(portfolio, segment)
		case segmentSideBenchmark:
			benchmark = append(benchmark, segment)
		default:
			return nil, nil, fmt.Errorf("unknown segment side %q", side)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate attribution segments: %w", err)
	}

	return portfolio, benchmark, nil
}
