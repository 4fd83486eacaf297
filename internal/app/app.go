package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	osexec "os/exec"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/config"
	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/diagnostics"
	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/exec"
	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/fetch"
	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/health"
	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/notify"
	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/report"
	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/systemd"
	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/utils"
)

const closeTimeout = 5 * time.Second

// Deps are the collaborators of a run. Nil fields get the host defaults.
type Deps struct {
	Probe     health.StatusProbe
	Fetcher   health.Fetcher
	Collector systemd.Collector
	Notifier  notify.Notifier
	FS        afero.Fs
	Out       io.Writer
	Clock     clockwork.Clock
	Snapshot  diagnostics.HostSnapshotFunc
}

type App struct {
	cfg       config.Config
	logger    zerolog.Logger
	unit      string
	validator *health.Validator
	gatherer  *diagnostics.Gatherer
	notifier  notify.Notifier
	fs        afero.Fs
	out       io.Writer
	clock     clockwork.Clock
}

func New(cfg config.Config, logger zerolog.Logger, deps Deps) *App {
	if deps.FS == nil {
		deps.FS = afero.NewOsFs()
	}
	if deps.Out == nil {
		deps.Out = os.Stdout
	}
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.Nop{}
	}

	validator := health.NewValidator(logger, deps.Probe, deps.Fetcher,
		health.WithClock(deps.Clock),
		health.WithReadiness(health.Readiness{
			Key:   cfg.Health.ReadinessKey,
			Value: cfg.Health.ReadinessValue,
		}),
	)
	gatherer := diagnostics.NewGatherer(logger, diagnostics.Options{
		Logs:      cfg.Logs,
		Host:      cfg.Diagnostics.Host,
		UnitFile:  cfg.Service.UnitFile,
		FS:        deps.FS,
		Collector: deps.Collector,
		Snapshot:  deps.Snapshot,
	})

	return &App{
		cfg:       cfg,
		logger:    logger,
		unit:      systemd.NormalizeUnit(cfg.Service.Unit),
		validator: validator,
		gatherer:  gatherer,
		notifier:  deps.Notifier,
		fs:        deps.FS,
		out:       deps.Out,
		clock:     deps.Clock,
	}
}

// NewApp resolves the probe, fetcher and notifier for this host from the
// configuration.
func NewApp(cfg config.Config, logger zerolog.Logger) (*App, error) {
	fs := afero.NewOsFs()

	probe, err := systemd.NewProbe(cfg.Probe.Method, systemd.Env{
		FS:       fs,
		LookPath: osexec.LookPath,
		Runner:   exec.RunCmd,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize status probe: %w", err)
	}
	fetcher, err := fetch.NewFetcher(cfg.Fetcher.Method, fetch.Env{
		LookPath: osexec.LookPath,
		Runner:   exec.RunCmd,
		Timeout:  cfg.Health.RequestTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize health fetcher: %w", err)
	}

	var collector systemd.Collector
	if cfg.Logs.Enabled {
		collector = systemd.NewJournalCollector(logger, exec.RunCmd)
	}

	logger.Debug().
		Str("probe", probe.Name()).
		Str("fetcher", fetcher.Name()).
		Msg("resolved host capabilities")

	return New(cfg, logger, Deps{
		Probe:     probe,
		Fetcher:   fetcher,
		Collector: collector,
		Notifier:  notify.New(logger, cfg.MQTT),
		FS:        fs,
	}), nil
}

func (a *App) policy() health.Policy {
	return health.Policy{
		MaxAttempts: a.cfg.Retry.MaxAttempts,
		Interval:    a.cfg.Retry.Interval,
	}
}

// Validate performs one validation run and emits its report. The returned
// error is only non-nil when the run could not be performed or its report
// could not be rendered; a failed verdict is carried by the report.
func (a *App) Validate(ctx context.Context) (*report.Report, error) {
	policy := a.policy()
	startedAt := a.clock.Now()

	a.logger.Info().
		Str("health_url", a.cfg.Health.URL).
		Int("max_attempts", policy.MaxAttempts).
		Stringer("interval", policy.Interval).
		Msg("validating service health")

	result, err := a.validator.Validate(ctx, a.unit, a.cfg.Health.URL, policy)
	if err != nil {
		return nil, err
	}

	r := report.New(a.unit, a.cfg.Health.URL, policy, startedAt, result)
	if !result.Passed() {
		a.logger.Error().
			Err(result.Err()).
			Int("attempts", result.Attempts).
			Msg("service health validation failed")
		// The run context may already be done; diagnostics still get a
		// chance to run.
		r.Diagnostics = a.gatherer.Gather(context.WithoutCancel(ctx), a.unit)
	} else {
		a.logger.Info().
			Int("attempts", result.Attempts).
			Msg("service health validation passed")
	}

	if err := report.Render(a.out, r, a.cfg.Output.Format); err != nil {
		return r, fmt.Errorf("failed to render report: %w", err)
	}
	if path := a.cfg.Output.ResultFile; path != "" {
		if err := report.WriteFile(a.fs, path, r, a.cfg.Output.Format); err != nil {
			a.logger.Warn().Err(err).Str("path", path).Msg("failed to write result file")
		}
	}
	if err := a.notifier.Notify(context.WithoutCancel(ctx), r); err != nil {
		a.logger.Warn().Err(err).Msg("failed to publish report")
	}

	return r, nil
}

// Watch repeats Validate every watch.every until ctx is done. A run that
// outlasts the interval delays the next one instead of overlapping it.
func (a *App) Watch(ctx context.Context) error {
	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.SingletonModeAll()

	runs := 0
	_, err := scheduler.Every(a.cfg.Watch.Every).Do(func() {
		runs++
		if _, err := a.Validate(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error().Err(err).Int("run", runs).Msg("validation run failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule validation: %w", err)
	}

	a.logger.Info().
		Stringer("every", a.cfg.Watch.Every).
		Msg("watching service health")
	scheduler.StartAsync()

	<-ctx.Done()
	a.logger.Info().Msg("got shutdown signal")
	scheduler.Stop()

	return nil
}

func (a *App) Shutdown() error {
	err := utils.WithTimeout(context.Background(), closeTimeout, "close notifier", a.notifier.Close)
	if err != nil {
		return fmt.Errorf("failed to close notifier: %w", err)
	}
	return nil
}
