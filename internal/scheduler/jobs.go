package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/simaogato/wealthflow-analytics/internal/domain"
	"github.com/simaogato/wealthflow-analytics/internal/usecase/performance"
)

// Recalculator recalculates the last closed period of every active portfolio
type Recalculator interface {
	Recalculate(ctx context.Context, periodType domain.PeriodType, method domain.CalculationMethod, asOf time.Time) (*performance.RecalculationSummary, error)
}

// RecalculationJob stores the closed period of one type for all active portfolios
type RecalculationJob struct {
	periodType domain.PeriodType
	method     domain.CalculationMethod
	schedule   string
	service    Recalculator
	now        func() time.Time
}

// NewRecalculationJob creates a job recalculating periodType on schedule
func NewRecalculationJob(service Recalculator, periodType domain.PeriodType, method domain.CalculationMethod, schedule string) *RecalculationJob {
	return &RecalculationJob{
		periodType: periodType,
		method:     method,
		schedule:   schedule,
		service:    service,
		now:        time.Now,
	}
}

// Name returns the job name, e.g. recalculate-monthly
func (j *RecalculationJob) Name() string {
	return "recalculate-" + strings.ToLower(string(j.periodType))
}

// Schedule returns the cron expression of the job
func (j *RecalculationJob) Schedule() string {
	return j.schedule
}

// Run recalculates the closed period as of now; partial failures are not job failures
func (j *RecalculationJob) Run(ctx context.Context) error {
	summary, err := j.service.Recalculate(ctx, j.periodType, j.method, j.now())
	if err != nil {
		return fmt.Errorf("recalculation of %s periods failed: %w", j.periodType, err)
	}
	if summary.Portfolios > 0 && summary.Stored == 0 {
		return fmt.Errorf("all %d %s recalculations failed", summary.Portfolios, j.periodType)
	}
	return nil
}
