// Package scheduler implements the resurfacing scheduler: background jobs
// that periodically re-evaluate deferred, delegated, and someday tasks and
// postponement patterns, mutating task state through the same transactional
// write path as interactive requests.
//
// Jobs are restart-safe: their triggers are comparisons of persisted dates
// against the injected clock, never an in-memory queue, so stopping and
// restarting the scheduler only delays re-evaluation. A failure inside one
// job is caught at the job boundary and never halts the other jobs or the
// scheduler itself.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrUnknownJob is returned by TriggerNow when no registered job has the
// requested name.
var ErrUnknownJob = errors.New("unknown scheduler job")

// Job is one independently schedulable resurfacing pass. Implementations
// must be idempotent: a run with no new triggers is a no-op.
type Job interface {
	// Name identifies the job for logging and manual triggering.
	Name() string

	// Run executes one full pass. All tasks meeting the job's condition at
	// the start of the scan are processed before Run returns.
	Run(ctx context.Context) error
}

// JobError wraps a failure raised inside a scheduled job. It is logged and
// swallowed at the job boundary; the job retries on its next interval.
type JobError struct {
	Job string
	Err error
}

// Error implements the error interface for JobError.
func (e *JobError) Error() string {
	return fmt.Sprintf("scheduler job %q failed: %v", e.Job, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *JobError) Unwrap() error {
	return e.Err
}

// Scheduler owns the background job goroutines with an explicit start/stop
// lifecycle. No job runs concurrently with another instance of itself: each
// run completes before the next tick of that job is honored.
type Scheduler struct {
	jobs    []scheduledJob
	logger  *slog.Logger
	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

type scheduledJob struct {
	job      Job
	interval time.Duration
}

// New creates a Scheduler with no jobs registered.
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		logger: logger.With(slog.String("component", "scheduler")),
	}
}

// Register adds a job with its run interval. Must be called before Start.
func (s *Scheduler) Register(job Job, interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, scheduledJob{job: job, interval: interval})
}

// Start launches one goroutine per registered job. Each job runs once
// immediately, then on its interval. Starting a running scheduler is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.running = true

	for _, sj := range s.jobs {
		s.wg.Add(1)
		go s.runLoop(ctx, sj)
	}

	s.logger.Info("scheduler started", slog.Int("job_count", len(s.jobs)))
}

// Stop halts all job goroutines and waits for in-flight runs to finish.
// Correctness does not depend on in-memory state, so stop followed by a
// later Start never loses triggers, only defers re-evaluation.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

// TriggerNow runs the named job once, synchronously, outside its interval.
// Used for testing and manual refresh. Returns an error if no job has that
// name; job failures are returned as *JobError.
func (s *Scheduler) TriggerNow(ctx context.Context, name string) error {
	s.mu.Lock()
	var job Job
	for _, sj := range s.jobs {
		if sj.job.Name() == name {
			job = sj.job
			break
		}
	}
	s.mu.Unlock()

	if job == nil {
		return fmt.Errorf("%w: %q", ErrUnknownJob, name)
	}

	return s.runOnce(ctx, job)
}

// JobNames returns the registered job names.
func (s *Scheduler) JobNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.jobs))
	for _, sj := range s.jobs {
		names = append(names, sj.job.Name())
	}
	return names
}

func (s *Scheduler) runLoop(ctx context.Context, sj scheduledJob) {
	defer s.wg.Done()

	// First pass right away so a restart catches anything missed while the
	// process was down.
	if err := s.runOnce(ctx, sj.job); err != nil {
		s.logJobError(err)
	}

	ticker := time.NewTicker(sj.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.runOnce(ctx, sj.job); err != nil {
				s.logJobError(err)
			}
		}
	}
}

// runOnce executes a single job run with the job boundary guard: errors and
// panics are captured as *JobError and never escape to the scheduler loop.
func (s *Scheduler) runOnce(ctx context.Context, job Job) (jobErr error) {
	defer func() {
		if p := recover(); p != nil {
			jobErr = &JobError{Job: job.Name(), Err: fmt.Errorf("panic: %v", p)}
		}
	}()

	start := time.Now()
	s.logger.Debug("running scheduler job", slog.String("job", job.Name()))

	if err := job.Run(ctx); err != nil {
		return &JobError{Job: job.Name(), Err: err}
	}

	s.logger.Debug("scheduler job finished",
		slog.String("job", job.Name()),
		slog.Duration("duration", time.Since(start)))
	return nil
}

func (s *Scheduler) logJobError(err error) {
	s.logger.Error("scheduler job failed", slog.String("error", err.Error()))
}
