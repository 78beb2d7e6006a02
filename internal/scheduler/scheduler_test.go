package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/wealthflow-analytics/internal/domain"
	"github.com/simaogato/wealthflow-analytics/internal/usecase/performance"
)

// MockRecalculator is a mock implementation of Recalculator for testing
type MockRecalculator struct {
	mock.Mock
}

func (m *MockRecalculator) Recalculate(ctx context.Context, periodType domain.PeriodType, method domain.CalculationMethod, asOf time.Time) (*performance.RecalculationSummary, error) {
	args := m.Called(ctx, periodType, method, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*performance.RecalculationSummary), args.Error(1)
}

var asOf = time.Date(2024, 3, 1, 2, 0, 0, 0, time.UTC)

func newJob(service Recalculator, periodType domain.PeriodType) *RecalculationJob {
	job := NewRecalculationJob(service, periodType, domain.MethodTimeWeighted, "0 0 2 * * *")
	job.now = func() time.Time { return asOf }
	return job
}

func TestScheduler_AddJob(t *testing.T) {
	s := New(zerolog.Nop(), time.Minute)
	job := newJob(new(MockRecalculator), domain.PeriodTypeDaily)

	require.NoError(t, s.AddJob(job))
	assert.EqualError(t, s.AddJob(job), "job recalculate-daily already exists")
}

func TestScheduler_AddJobInvalidSchedule(t *testing.T) {
	s := New(zerolog.Nop(), time.Minute)
	job := NewRecalculationJob(new(MockRecalculator), domain.PeriodTypeMonthly, domain.MethodTimeWeighted, "every day")

	err := s.AddJob(job)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to schedule job recalculate-monthly")
}

func TestScheduler_RunNow(t *testing.T) {
	service := new(MockRecalculator)
	service.On("Recalculate", mock.Anything, domain.PeriodTypeMonthly, domain.MethodTimeWeighted, asOf).
		Return(&performance.RecalculationSummary{Portfolios: 3, Stored: 3}, nil)

	s := New(zerolog.Nop(), time.Minute)
	require.NoError(t, s.AddJob(newJob(service, domain.PeriodTypeMonthly)))

	result, err := s.RunNow("recalculate-monthly")

	require.NoError(t, err)
	assert.NoError(t, result.Err)
	assert.Equal(t, "recalculate-monthly", result.JobName)
	last, ok := s.LastResult("recalculate-monthly")
	assert.True(t, ok)
	assert.Equal(t, result, last)
	service.AssertExpectations(t)
}

func TestScheduler_RunNowUnknownJob(t *testing.T) {
	_, err := New(zerolog.Nop(), 0).RunNow("recalculate-hourly")

	assert.EqualError(t, err, "job recalculate-hourly not found")
}

func TestRecalculationJob_Run(t *testing.T) {
	tests := []struct {
		name    string
		summary *performance.RecalculationSummary
		err     error
		wantErr string
	}{
		{
			name:    "Partial failure is not a job failure",
			summary: &performance.RecalculationSummary{Portfolios: 4, Stored: 3, Failed: 1},
		},
		{
			name:    "No active portfolios",
			summary: &performance.RecalculationSummary{},
		},
		{
			name:    "Every portfolio failed",
			summary: &performance.RecalculationSummary{Portfolios: 2, Failed: 2},
			wantErr: "all 2 QUARTERLY recalculations failed",
		},
		{
			name:    "Directory failure",
			err:     errors.New("connection refused"),
			wantErr: "recalculation of QUARTERLY periods failed: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockRecalculator)
			if tt.summary != nil {
				service.On("Recalculate", mock.Anything, domain.PeriodTypeQuarterly, domain.MethodTimeWeighted, asOf).Return(tt.summary, nil)
			} else {
				service.On("Recalculate", mock.Anything, domain.PeriodTypeQuarterly, domain.MethodTimeWeighted, asOf).Return(nil, tt.err)
			}

			err := newJob(service, domain.PeriodTypeQuarterly).Run(context.Background())

			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.wantErr)
			}
		})
	}
}
