package performance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/simaogato/wealthflow-analytics/internal/domain"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
)

// Calculator is the engine contract the service depends on
type Calculator interface {
	Calculate(ctx context.Context, req Request) (*Response, error)
	CalculateBatch(ctx context.Context, reqs []Request) []BatchResult
}

// RecalculationSummary reports the outcome of a scheduled recalculation
type RecalculationSummary struct {
	PeriodType domain.PeriodType
	Window     domain.PeriodWindow
	Portfolios int
	Stored     int
	Failed     int
}

// Service calculates performance periods and keeps their history
type Service struct {
	Engine     Calculator
	Repo       domain.PerformanceRepository
	Portfolios domain.PortfolioDirectory
	logger     zerolog.Logger
}

// NewService creates a new Service instance
func NewService(engine Calculator, repo domain.PerformanceRepository, portfolios domain.PortfolioDirectory, logger zerolog.Logger) *Service {
	return &Service{
		Engine:     engine,
		Repo:       repo,
		Portfolios: portfolios,
		logger:     logger.With().Str("component", "performance_service").Logger(),
	}
}

// CalculateAndStore runs a calculation and persists the resulting period
// Logic: the period is saved only when the calculation succeeded; a save failure is returned as an error
func (s *Service) CalculateAndStore(ctx context.Context, req Request) (*Response, error) {
	resp, err := s.Engine.Calculate(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := s.Repo.Save(ctx, &resp.Period); err != nil {
		return nil, fmt.Errorf("failed to save performance period: %w", err)
	}

	s.logger.Info().
		Str("period_id", resp.Period.ID.String()).
		Str("portfolio_id", resp.Period.PortfolioID.String()).
		Str("period_type", string(resp.Period.PeriodType)).
		Msg("Performance period stored")

	return resp, nil
}

// History returns the most recent stored periods of a portfolio, newest first
func (s *Service) History(ctx context.Context, portfolioID uuid.UUID, limit int) ([]*domain.PerformancePeriod, error) {
	if portfolioID == uuid.Nil {
		return nil, fmt.Errorf("%w: portfolio id is required", domain.ErrInvalidRequest)
	}
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit cannot be negative", domain.ErrInvalidRequest)
	}
	if limit == 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	periods, err := s.Repo.ListByPortfolio(ctx, portfolioID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list performance periods: %w", err)
	}
	return periods, nil
}

// Recalculate computes and stores the last closed period of every active portfolio
// Logic:
//  1. Resolve the closed calendar window of periodType before asOf
//  2. Fan the requests out through the engine's batch pool
//  3. Store every successful period; failures are logged and counted, never fatal
//
// Only a directory failure or a cancelled context is returned as an error
func (s *Service) Recalculate(ctx context.Context, periodType domain.PeriodType, method domain.CalculationMethod, asOf time.Time) (*RecalculationSummary, error) {
	window, err := domain.ClosedWindow(periodType, asOf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	if s.Portfolios == nil {
		return nil, errors.New("no portfolio directory configured")
	}

	refs, err := s.Portfolios.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active portfolios: %w", err)
	}

	reqs := make([]Request, len(refs))
	for i, ref := range refs {
		reqs[i] = Request{
			TenantID:    ref.TenantID,
			PortfolioID: ref.PortfolioID,
			PeriodStart: window.Start,
			PeriodEnd:   window.End,
			PeriodType:  periodType,
			Method:      method,
		}
	}

	summary := &RecalculationSummary{PeriodType: periodType, Window: window, Portfolios: len(refs)}
	for _, result := range s.Engine.CalculateBatch(ctx, reqs) {
		if result.Err == nil {
			result.Err = s.Repo.Save(ctx, &result.Response.Period)
		}
		if result.Err != nil {
			summary.Failed++
			s.logger.Error().
				Err(result.Err).
				Str("portfolio_id", result.Request.PortfolioID.String()).
				Str("period_type", string(periodType)).
				Msg("Recalculation failed")
			continue
		}
		summary.Stored++
	}

	s.logger.Info().
		Str("period_type", string(periodType)).
		Time("period_start", window.Start).
		Int("portfolios", summary.Portfolios).
		Int("stored", summary.Stored).
		Int("failed", summary.Failed).
		Msg("Recalculation finished")

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}
