package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/wealthflow-analytics/internal/domain"
)

func TestValuationRepository_GetValueAt(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewValuationRepository(db)
	portfolioID := uuid.New()

	mock.ExpectQuery("FROM portfolio_valuations").
		WithArgs(portfolioID, day(2024, 1, 31)).
		WillReturnRows(sqlmock.NewRows([]string{"market_value"}).AddRow("125000.5000"))

	value, err := repo.GetValueAt(context.Background(), portfolioID, day(2024, 1, 31))

	require.NoError(t, err)
	assert.True(t, value.Equal(decimal.RequireFromString("125000.5")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValuationRepository_GetValueAtMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewValuationRepository(db)

	mock.ExpectQuery("FROM portfolio_valuations").
		WillReturnRows(sqlmock.NewRows([]string{"market_value"}))

	_, err := repo.GetValueAt(context.Background(), uuid.New(), day(2024, 1, 1))

	assert.ErrorIs(t, err, domain.ErrValuationUnavailable)
}

func TestValuationRepository_GetValueAtQueryError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewValuationRepository(db)

	mock.ExpectQuery("FROM portfolio_valuations").WillReturnError(errors.New("connection reset"))

	_, err := repo.GetValueAt(context.Background(), uuid.New(), day(2024, 1, 1))

	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrValuationUnavailable)
	assert.Contains(t, err.Error(), "failed to get valuation")
}

func TestValuationRepository_GetDailySeries(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewValuationRepository(db)
	portfolioID := uuid.New()

	mock.ExpectQuery("ORDER BY valuation_date ASC").
		WithArgs(portfolioID, day(2024, 1, 1), day(2024, 1, 3)).
		WillReturnRows(sqlmock.NewRows([]string{"valuation_date", "market_value"}).
			AddRow(day(2024, 1, 1), "100").
			AddRow(day(2024, 1, 2), "101.5").
			AddRow(day(2024, 1, 3), "99"))

	series, err := repo.GetDailySeries(context.Background(), portfolioID, day(2024, 1, 1), day(2024, 1, 3))

	require.NoError(t, err)
	require.Len(t, series, 3)
	assert.Equal(t, day(2024, 1, 2), series[1].Date)
	assert.True(t, series[1].MarketValue.Equal(decimal.RequireFromString("101.5")))
}

func TestValuationRepository_GetDailySeriesEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewValuationRepository(db)

	mock.ExpectQuery("FROM portfolio_valuations").
		WillReturnRows(sqlmock.NewRows([]string{"valuation_date", "market_value"}))

	series, err := repo.GetDailySeries(context.Background(), uuid.New(), day(2024, 1, 1), day(2024, 2, 1))

	require.NoError(t, err)
	assert.NotNil(t, series)
	assert.Empty(t, series)
}

func TestValuationRepository_GetDailySeriesBadValue(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewValuationRepository(db)

	mock.ExpectQuery("FROM portfolio_valuations").
		WillReturnRows(sqlmock.NewRows([]string{"valuation_date", "market_value"}).AddRow(day(2024, 1, 1), "n/a"))

	_, err := repo.GetDailySeries(context.Background(), uuid.New(), day(2024, 1, 1), day(2024, 2, 1))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse market_value")
}
