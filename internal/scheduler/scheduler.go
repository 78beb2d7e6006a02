package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is a unit of scheduled work
type Job interface {
	Name() string
	Schedule() string // six-field cron expression (with seconds)
	Run(ctx context.Context) error
}

// JobResult is the outcome of one job run
type JobResult struct {
	JobName   string
	StartTime time.Time
	Duration  time.Duration
	Err       error
}

// Scheduler runs registered jobs on their cron schedules
type Scheduler struct {
	cron    *cron.Cron
	logger  zerolog.Logger
	timeout time.Duration

	mu   sync.RWMutex
	jobs map[string]Job
	last map[string]JobResult
}

// New creates a new scheduler; every run is bounded by timeout
func New(logger zerolog.Logger, timeout time.Duration) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With().Str("component", "scheduler").Logger(),
		timeout: timeout,
		jobs:    make(map[string]Job),
		last:    make(map[string]JobResult),
	}
}

// AddJob registers a job on its schedule
func (s *Scheduler) AddJob(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := job.Name()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already exists", name)
	}

	if _, err := s.cron.AddFunc(job.Schedule(), func() { s.run(job) }); err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}
	s.jobs[name] = job

	s.logger.Info().Str("job", name).Str("schedule", job.Schedule()).Msg("Job added to scheduler")
	return nil
}

// Start starts the cron loop in the background
func (s *Scheduler) Start() {
	s.logger.Info().Int("jobs", len(s.jobs)).Msg("Starting scheduler")
	s.cron.Start()
}

// Stop stops the cron loop and waits for running jobs
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("Scheduler stopped")
}

// RunNow runs a registered job synchronously, outside of its schedule
func (s *Scheduler) RunNow(name string) (JobResult, error) {
	s.mu.RLock()
	job, exists := s.jobs[name]
	s.mu.RUnlock()

	if !exists {
		return JobResult{}, fmt.Errorf("job %s not found", name)
	}
	return s.run(job), nil
}

// LastResult returns the outcome of the latest run of a job
func (s *Scheduler) LastResult(name string) (JobResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.last[name]
	return result, ok
}

func (s *Scheduler) run(job Job) JobResult {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	result := JobResult{JobName: job.Name(), StartTime: time.Now()}
	result.Err = job.Run(ctx)
	result.Duration = time.Since(result.StartTime)

	s.mu.Lock()
	s.last[result.JobName] = result
	s.mu.Unlock()

	if result.Err != nil {
		s.logger.Error().Err(result.Err).Str("job", result.JobName).Dur("duration", result.Duration).Msg("Job failed")
	} else {
		s.logger.Info().Str("job", result.JobName).Dur("duration", result.Duration).Msg("Job completed")
	}
	return result
}
