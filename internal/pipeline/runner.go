package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/hochfrequenz/docsmith/internal/domain"
	"github.com/hochfrequenz/docsmith/internal/scheduler"
)

// JobExecutor performs the actual unit of work for one job
type JobExecutor interface {
	Generate(ctx context.Context, job *domain.Job) (string, error)
}

// Archiver persists finished jobs. Optional.
type Archiver interface {
	Archive(rec *scheduler.CompletedRecord) error
}

// RunnerConfig configures the driving loop
type RunnerConfig struct {
	Workers         int
	JobTimeout      time.Duration
	CleanupInterval time.Duration
	HistoryMaxAge   time.Duration
	PollInterval    time.Duration
}

// Runner is the external driver of the scheduler: a pool of workers that pop,
// start, execute, and complete jobs
type Runner struct {
	sched    *scheduler.Scheduler
	executor JobExecutor
	archiver Archiver
	cfg      RunnerConfig
	cron     *cron.Cron
	log      zerolog.Logger
}

// NewRunner creates a runner over the given scheduler
func NewRunner(sched *scheduler.Scheduler, executor JobExecutor, archiver Archiver, cfg RunnerConfig, log zerolog.Logger) *Runner {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 200 * time.Millisecond
	}
	return &Runner{
		sched:    sched,
		executor: executor,
		archiver: archiver,
		cfg:      cfg,
		log:      log.With().Str("component", "pipeline").Logger(),
	}
}

// Run drives jobs until the context is cancelled. It owns the cleanup sweep:
// every CleanupInterval, history older than HistoryMaxAge is dropped.
func (r *Runner) Run(ctx context.Context) error {
	r.startCleanup()
	defer r.stopCleanup()

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < r.cfg.Workers; i++ {
		worker := i
		g.Go(func() error {
			return r.workerLoop(ctx, worker)
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (r *Runner) workerLoop(ctx context.Context, worker int) error {
	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	for {
		job, ok := r.sched.PopNext()
		if !ok {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				continue
			}
		}

		if err := r.runJob(ctx, job); err != nil {
			// Admission failed: the job never started, nothing to complete.
			r.log.Error().Int("worker", worker).Str("job", job.ID.String()).Err(err).Msg("job not admitted")
			if errors.Is(err, scheduler.ErrPoolClosed) || ctx.Err() != nil {
				return err
			}
		}
	}
}

// runJob executes one popped job end to end. The configured timeout is
// enforced here by racing the work against the job context.
func (r *Runner) runJob(ctx context.Context, job *domain.Job) error {
	if err := r.sched.Start(ctx, job); err != nil {
		return err
	}

	jobCtx := ctx
	cancel := context.CancelFunc(func() {})
	if r.cfg.JobTimeout > 0 {
		jobCtx, cancel = context.WithTimeout(ctx, r.cfg.JobTimeout)
	}
	defer cancel()

	outPath, err := r.executor.Generate(jobCtx, job)

	var outcome domain.Outcome
	switch {
	case err == nil:
		outcome = domain.Success()
		r.log.Info().Str("job", job.ID.String()).Str("repo", job.RepoID).Str("output", outPath).Msg("job completed")
	case errors.Is(jobCtx.Err(), context.DeadlineExceeded):
		outcome = domain.Failed(fmt.Sprintf("timed out after %s", r.cfg.JobTimeout))
		r.log.Warn().Str("job", job.ID.String()).Str("repo", job.RepoID).Msg("job timed out")
	default:
		outcome = domain.Failed(err.Error())
		r.log.Warn().Str("job", job.ID.String()).Str("repo", job.RepoID).Err(err).Msg("job failed")
	}

	if err := r.sched.Complete(job.ID, outcome); err != nil {
		// The job was cancelled out from under us (explicit cancel or
		// shutdown); its permit is already released.
		r.log.Debug().Str("job", job.ID.String()).Err(err).Msg("complete skipped")
		return nil
	}

	r.archive(job.ID)
	return nil
}

// archive persists the most recent record for the job, if an archiver is set
func (r *Runner) archive(id domain.JobID) {
	if r.archiver == nil {
		return
	}
	for _, rec := range r.sched.Recent(10) {
		if rec.Job.ID == id {
			if err := r.archiver.Archive(rec); err != nil {
				r.log.Warn().Str("job", id.String()).Err(err).Msg("archiving failed")
			}
			return
		}
	}
}

func (r *Runner) startCleanup() {
	if r.cfg.CleanupInterval <= 0 || r.cfg.HistoryMaxAge <= 0 {
		return
	}
	r.cron = cron.New()
	r.cron.AddFunc(fmt.Sprintf("@every %s", r.cfg.CleanupInterval), func() {
		r.sched.CleanupHistory(r.cfg.HistoryMaxAge)
	})
	r.cron.Start()
}

func (r *Runner) stopCleanup() {
	if r.cron != nil {
		r.cron.Stop()
	}
}
