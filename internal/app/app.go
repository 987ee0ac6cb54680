package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/coreos/go-systemd/v22/daemon"

	"practicebot/internal/config"
	"practicebot/internal/format"
	"practicebot/internal/notifier"
	"practicebot/internal/openf1"
	"practicebot/internal/pipeline"
	"practicebot/internal/storage"
	"practicebot/internal/task/scheduler"
	logx "practicebot/pkg/logx"
)

// App owns the components built from one configuration.
//
// Components are rebuilt lazily when the config manager has committed a newer
// config (daemon mode); a single run never sees a config change.
type App struct {
	cfgm *config.Manager

	root logx.Logger // components add their own "comp" field
	log  logx.Logger
	logs *logx.Service

	mu    sync.Mutex
	cfg   *config.Config
	store storage.Store
	pipe  *pipeline.Pipeline
}

// New loads the configuration and builds every component.
func New(cfgm *config.Manager) (*App, error) {
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}

	logs, log := logx.New(mapLogConfig(cfg))
	cfgm.SetLogger(log.With(logx.String("comp", "config")))

	a := &App{cfgm: cfgm, logs: logs, root: log, log: log.With(logx.String("comp", "app"))}
	if err := a.build(cfg); err != nil {
		_ = logs.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) Logger() logx.Logger { return a.log }

// Config returns the configuration the current components were built from.
func (a *App) Config() *config.Config {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg
}

func (a *App) build(cfg *config.Config) error {
	sc, err := mapStorageConfig(cfg)
	if err != nil {
		return err
	}
	cc, err := mapClientConfig(cfg)
	if err != nil {
		return err
	}
	nc, err := mapNotifierConfig(cfg)
	if err != nil {
		return err
	}
	pc, err := mapPipelineConfig(cfg)
	if err != nil {
		return err
	}

	store, err := storage.Open(sc, a.root)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	notify, err := notifier.New(nc, a.root)
	if err != nil {
		_ = store.Close()
		return err
	}
	client := openf1.New(cc, a.root)
	pipe := pipeline.New(pc, store, client, client, notify, a.root)

	a.mu.Lock()
	old := a.store
	a.cfg, a.store, a.pipe = cfg, store, pipe
	a.mu.Unlock()
	if old != nil {
		_ = old.Close()
	}

	a.log.Debug("components built",
		logx.String("storage", sc.Driver),
		logx.String("state_path", sc.Path),
		logx.Bool("notify", notify.Enabled()),
		logx.Int("top_n", pc.TopN),
		logx.String("tz", pc.Location.String()),
	)
	return nil
}

// current returns the pipeline for the latest committed config.
func (a *App) current() *pipeline.Pipeline {
	latest := a.cfgm.Get()
	a.mu.Lock()
	stale := latest != nil && latest != a.cfg
	a.mu.Unlock()
	if stale {
		a.logs.Apply(mapLogConfig(latest))
		if err := a.build(latest); err != nil {
			a.log.Warn("rebuild after config change failed; keeping previous components", logx.Err(err))
		}
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pipe
}

// RunOnce performs a single fetch → format → deduplicate → deliver pass.
func (a *App) RunOnce(ctx context.Context) (pipeline.Outcome, error) {
	outcome, err := a.current().Run(ctx)
	if err != nil {
		return outcome, err
	}
	a.log.Debug("run finished", logx.String("outcome", outcome.String()))
	return outcome, nil
}

// Preview renders the current message without posting or touching state.
func (a *App) Preview(ctx context.Context) (format.Message, pipeline.Outcome, error) {
	return a.current().Preview(ctx)
}

// State returns the stored dedup state.
func (a *App) State(ctx context.Context) storage.State {
	a.mu.Lock()
	st := a.store
	a.mu.Unlock()
	return st.Load(ctx)
}

// ResetState clears the last posted key so the current session posts again.
func (a *App) ResetState(ctx context.Context) error {
	a.mu.Lock()
	st := a.store
	a.mu.Unlock()
	return st.Save(ctx, storage.State{})
}

// Daemon runs the pipeline on the configured schedule until ctx is done.
// The config file is watched; changes apply from the next run on.
func (a *App) Daemon(ctx context.Context) error {
	schedCfg, err := mapScheduleConfig(a.Config())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.cfgm.OnChange(func(cfg *config.Config) {
		if next, err := mapScheduleConfig(cfg); err == nil && next.Spec != schedCfg.Spec {
			a.log.Warn("schedule change needs a restart", logx.String("spec", next.Spec.String()))
		}
	})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := a.cfgm.Watch(ctx); err != nil {
			a.log.Warn("config watch disabled", logx.Err(err))
		}
	}()

	sched := scheduler.New(schedCfg, func(ctx context.Context) error {
		_, err := a.RunOnce(ctx)
		return err
	}, a.root)

	notifySystemd(a.log, daemon.SdNotifyReady)
	err = sched.Run(ctx)
	notifySystemd(a.log, daemon.SdNotifyStopping)

	cancel()
	wg.Wait()
	return err
}

// notifySystemd is a no-op outside a systemd unit with Type=notify.
func notifySystemd(log logx.Logger, state string) {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		log.Debug("sd_notify failed", logx.String("state", state), logx.Err(err))
		return
	}
	if sent {
		log.Debug("sd_notify sent", logx.String("state", state))
	}
}

func (a *App) Close() error {
	a.mu.Lock()
	st := a.store
	a.store = nil
	a.mu.Unlock()

	var errs []error
	if st != nil {
		errs = append(errs, st.Close())
	}
	errs = append(errs, a.logs.Close())
	return errors.Join(errs...)
}
