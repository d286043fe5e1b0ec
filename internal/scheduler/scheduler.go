package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/hochfrequenz/docsmith/internal/domain"
)

var (
	// ErrJobNotFound is returned when an operation references a job id absent
	// from the state it expects (complete on a non-running id, cancel on an
	// unknown id).
	ErrJobNotFound = errors.New("job not found")

	// ErrPoolClosed is returned when the permit pool can no longer admit jobs
	ErrPoolClosed = errors.New("permit pool closed")
)

// Config holds the scheduler's tunable parameters
type Config struct {
	MaxConcurrentJobs   int
	MaxQueueSize        int
	MaxCompletedHistory int
	DefaultJobTimeout   time.Duration
}

// Scheduler composes the queue, permit pool, running registry, and history
// into one API. It is an ordinary instance owned by its caller; it runs no
// goroutines of its own and executes no work — an external driver pops jobs,
// starts them, performs the work, and reports the outcome.
type Scheduler struct {
	cfg     Config
	queue   *Queue
	permits *PermitPool
	running *Registry
	history *History

	submitted atomic.Int64
	log       zerolog.Logger
}

// New creates a scheduler from the given config
func New(cfg Config, log zerolog.Logger) *Scheduler {
	if cfg.MaxConcurrentJobs < 1 {
		cfg.MaxConcurrentJobs = 1
	}
	if cfg.MaxCompletedHistory < 1 {
		cfg.MaxCompletedHistory = 100
	}
	return &Scheduler{
		cfg:     cfg,
		queue:   NewQueue(cfg.MaxQueueSize),
		permits: NewPermitPool(cfg.MaxConcurrentJobs),
		running: NewRegistry(),
		history: NewHistory(cfg.MaxCompletedHistory),
		log:     log.With().Str("component", "scheduler").Logger(),
	}
}

// Submit enqueues a job. Always succeeds for a well-formed job; queue capacity
// is advisory and checked by callers via CanAccept.
func (s *Scheduler) Submit(job *domain.Job) error {
	if job.ID == "" {
		job.ID = domain.NewJobID()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	job.Status = domain.JobQueued

	s.queue.Submit(job)
	s.submitted.Add(1)
	s.log.Debug().Str("job", job.ID.String()).Str("repo", job.RepoID).Msg("job submitted")
	return nil
}

// SubmitMany submits jobs in order and returns their ids
func (s *Scheduler) SubmitMany(jobs []*domain.Job) ([]domain.JobID, error) {
	ids := make([]domain.JobID, 0, len(jobs))
	for _, job := range jobs {
		if err := s.Submit(job); err != nil {
			return ids, err
		}
		ids = append(ids, job.ID)
	}
	return ids, nil
}

// PopNext removes the next job from the queue without starting it. Returns
// false when the queue is empty.
func (s *Scheduler) PopNext() (*domain.Job, bool) {
	return s.queue.PopNext()
}

// Start blocks until an admission permit is free, then records the job as
// running. The permit is held by the running record and released exactly once,
// when the job is finalized.
func (s *Scheduler) Start(ctx context.Context, job *domain.Job) error {
	if err := s.permits.Acquire(ctx); err != nil {
		return fmt.Errorf("acquiring permit for job %s: %w", job.ID, err)
	}

	job.Status = domain.JobRunning
	s.running.Insert(newRunningRecord(job, s.permits.Release))
	s.log.Debug().Str("job", job.ID.String()).Msg("job started")
	return nil
}

// Complete finalizes a running job with the given outcome: releases its
// permit, sets the final status, and archives it in history. Returns
// ErrJobNotFound unless the id is currently running.
func (s *Scheduler) Complete(id domain.JobID, outcome domain.Outcome) error {
	rec, ok := s.running.Remove(id)
	if !ok {
		return fmt.Errorf("completing job %s: %w", id, ErrJobNotFound)
	}
	s.finalize(rec, outcome)
	return nil
}

// finalize releases the record's permit and archives the job
func (s *Scheduler) finalize(rec *RunningRecord, outcome domain.Outcome) {
	rec.releasePermit()

	rec.Job.Status = outcome.Status
	rec.Job.Reason = outcome.Reason
	execTime := time.Since(rec.StartedAt)
	s.history.Record(*rec.Job, execTime)

	s.log.Debug().
		Str("job", rec.Job.ID.String()).
		Str("status", string(outcome.Status)).
		Dur("execution_time", execTime).
		Msg("job finalized")
}

// Cancel cancels a job wherever it currently lives. A running job is finalized
// as cancelled immediately — the work in progress is not interrupted;
// cooperative cancellation of the work itself is the driver's responsibility.
// A queued job is removed from the queue and archived as cancelled directly.
func (s *Scheduler) Cancel(id domain.JobID) error {
	if rec, ok := s.running.Remove(id); ok {
		s.finalize(rec, domain.Cancelled())
		return nil
	}

	if job, ok := s.queue.Remove(id); ok {
		job.Status = domain.JobCancelled
		s.history.Record(*job, 0)
		s.log.Debug().Str("job", id.String()).Msg("queued job cancelled")
		return nil
	}

	return fmt.Errorf("cancelling job %s: %w", id, ErrJobNotFound)
}

// Status returns a job's current status, checked in order running → history →
// queue. Returns false for an unknown id.
func (s *Scheduler) Status(id domain.JobID) (domain.JobStatus, bool) {
	if _, ok := s.running.Get(id); ok {
		return domain.JobRunning, true
	}
	if status, ok := s.history.StatusOf(id); ok {
		return status, true
	}
	if s.queue.Contains(id) {
		return domain.JobQueued, true
	}
	return "", false
}

// RunningIDs returns the ids of currently running jobs
func (s *Scheduler) RunningIDs() []domain.JobID {
	return s.running.IDs()
}

// RunningRecords returns a snapshot of the currently running jobs
func (s *Scheduler) RunningRecords() []*RunningRecord {
	return s.running.Snapshot()
}

// RunningCount returns the number of currently running jobs
func (s *Scheduler) RunningCount() int {
	return s.running.Count()
}

// QueuedCount returns the number of queued jobs
func (s *Scheduler) QueuedCount() int {
	return s.queue.Len()
}

// AvailablePermits returns the number of free admission permits
func (s *Scheduler) AvailablePermits() int {
	return s.permits.Available()
}

// CanAccept reports whether the queue is below its configured capacity.
// Advisory only: Submit itself never rejects.
func (s *Scheduler) CanAccept() bool {
	return s.queue.CanAccept()
}

// Recent returns up to limit completed records, most recent first
func (s *Scheduler) Recent(limit int) []*CompletedRecord {
	return s.history.Recent(limit)
}

// CleanupHistory removes archived records older than maxAge and returns the
// removed count
func (s *Scheduler) CleanupHistory(maxAge time.Duration) int {
	removed := s.history.CleanupOlderThan(maxAge)
	if removed > 0 {
		s.log.Info().Int("removed", removed).Msg("history cleanup")
	}
	return removed
}

// DefaultJobTimeout returns the configured per-job timeout. The scheduler
// never enforces it; the driver races the work against it.
func (s *Scheduler) DefaultJobTimeout() time.Duration {
	return s.cfg.DefaultJobTimeout
}

// Stats returns a snapshot of the aggregate counters
func (s *Scheduler) Stats() Stats {
	c := s.history.Counters()
	finished := c.Completed + c.Failed + c.Cancelled

	stats := Stats{
		TotalSubmitted:     int(s.submitted.Load()),
		Queued:             s.queue.Len(),
		Running:            s.running.Count(),
		Completed:          c.Completed,
		Failed:             c.Failed,
		Cancelled:          c.Cancelled,
		TotalExecutionTime: c.TotalExec,
	}
	if finished > 0 {
		stats.AvgExecutionTime = c.TotalExec / time.Duration(finished)
		stats.SuccessRate = float64(c.Completed) / float64(finished) * 100
	}
	if c.TotalExec > 0 {
		stats.ThroughputPerHour = float64(finished) / c.TotalExec.Hours()
	}
	return stats
}

// Shutdown drains and discards the queue (those jobs are not archived), then
// best-effort cancels every running job. Failures to cancel individual jobs
// are logged and do not abort the shutdown. Idempotent.
func (s *Scheduler) Shutdown() error {
	// Fail any Start blocked on admission before permits start flowing back.
	s.permits.Close()

	discarded := s.queue.Drain()
	if len(discarded) > 0 {
		s.log.Info().Int("discarded", len(discarded)).Msg("queued jobs discarded on shutdown")
	}

	for _, id := range s.running.IDs() {
		if err := s.Cancel(id); err != nil {
			s.log.Warn().Str("job", id.String()).Err(err).Msg("cancel during shutdown failed")
		}
	}

	s.log.Info().Msg("scheduler shut down")
	return nil
}

// Stats is a snapshot of the scheduler's aggregate counters
type Stats struct {
	TotalSubmitted     int           `json:"total_submitted"`
	Queued             int           `json:"queued"`
	Running            int           `json:"running"`
	Completed          int           `json:"completed"`
	Failed             int           `json:"failed"`
	Cancelled          int           `json:"cancelled"`
	TotalExecutionTime time.Duration `json:"total_execution_time"`
	AvgExecutionTime   time.Duration `json:"avg_execution_time"`
	SuccessRate        float64       `json:"success_rate"`
	ThroughputPerHour  float64       `json:"throughput_per_hour"`
}
