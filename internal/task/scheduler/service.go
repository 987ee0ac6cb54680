package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	logx "practicebot/pkg/logx"
)

// Job is one triggered run. Its error is logged; the schedule continues.
type Job func(ctx context.Context) error

type Config struct {
	Spec       ParsedSpec
	Location   *time.Location
	RunOnStart bool
}

type Service struct {
	cfg Config
	job Job
	log logx.Logger
}

func New(cfg Config, job Job, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Service{cfg: cfg, job: job, log: log.With(logx.String("comp", "scheduler"))}
}

// Run triggers the job until ctx is done, then waits for an in-flight run.
func (s *Service) Run(ctx context.Context) error {
	sched, err := s.cfg.Spec.Schedule()
	if err != nil {
		return fmt.Errorf("schedule %s: %w", s.cfg.Spec, err)
	}

	if s.cfg.RunOnStart {
		s.runOnce(ctx, "start")
	}
	if ctx.Err() != nil {
		return nil
	}

	cl := cronLogger{log: s.log}
	c := cron.New(
		cron.WithLocation(s.cfg.Location),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	c.Schedule(sched, cron.FuncJob(func() { s.runOnce(ctx, "schedule") }))
	c.Start()
	s.log.Info("scheduler started",
		logx.String("spec", s.cfg.Spec.String()),
		logx.String("kind", s.cfg.Spec.Kind.String()),
		logx.String("tz", s.cfg.Location.String()),
		logx.Time("next", sched.Next(time.Now().In(s.cfg.Location))),
	)

	<-ctx.Done()
	<-c.Stop().Done()
	s.log.Info("scheduler stopped")
	return nil
}

func (s *Service) runOnce(ctx context.Context, trigger string) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	err := s.job(ctx)
	if err != nil {
		s.log.Error("run failed", logx.String("trigger", trigger), logx.Duration("took", time.Since(start)), logx.Err(err))
		return
	}
	s.log.Debug("run finished", logx.String("trigger", trigger), logx.Duration("took", time.Since(start)))
}

// cronLogger adapts logx to cron.Logger.
type cronLogger struct{ log logx.Logger }

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, kvFields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, append(kvFields(keysAndValues), logx.Err(err))...)
}

func kvFields(kv []interface{}) []logx.Field {
	out := make([]logx.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, logx.Any(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return out
}
