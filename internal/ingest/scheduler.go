package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const runTimeout = 30 * time.Minute

// Runner is one ingest pass.
type Runner interface {
	Run(ctx context.Context) (Result, error)
}

// Scheduler repeats ingest passes on a cron spec. A pass that is still
// running when the next one is due causes that one to be skipped.
type Scheduler struct {
	ctx    context.Context
	cron   *cron.Cron
	spec   string
	runner Runner
	log    *slog.Logger
}

// NewScheduler creates a Scheduler. Passes stop when ctx is done.
func NewScheduler(ctx context.Context, spec string, runner Runner, log *slog.Logger) *Scheduler {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	return &Scheduler{
		ctx:    ctx,
		cron:   c,
		spec:   spec,
		runner: runner,
		log:    log,
	}
}

// Start validates the cron expression and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.run); err != nil {
		return err
	}

	s.cron.Start()

	return nil
}

// Stop halts the cron loop and returns once the running pass, if any, ends.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(s.ctx, runTimeout)
	defer cancel()

	if ctx.Err() != nil {
		s.log.InfoContext(ctx, "Scheduler context is done", "error", ctx.Err())
		return
	}

	if _, err := s.runner.Run(ctx); err != nil {
		s.log.ErrorContext(ctx, "Scheduled ingest failed", "error", err)
	}
}
