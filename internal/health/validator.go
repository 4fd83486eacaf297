package health

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// StatusProbe reports whether a unit is active. Unknown units are inactive.
type StatusProbe interface {
	Active(ctx context.Context, unit string) (bool, error)
}

// Fetcher performs one GET against the health endpoint.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type Option func(v *Validator)

func WithClock(clock clockwork.Clock) Option {
	return func(v *Validator) {
		v.clock = clock
	}
}

func WithReadiness(r Readiness) Option {
	return func(v *Validator) {
		v.readiness = r
	}
}

type Validator struct {
	logger    zerolog.Logger
	probe     StatusProbe
	fetcher   Fetcher
	readiness Readiness
	clock     clockwork.Clock
}

func NewValidator(logger zerolog.Logger, probe StatusProbe, fetcher Fetcher, opts ...Option) *Validator {
	v := &Validator{
		logger:    logger.With().Str("component", "health_validator").Logger(),
		probe:     probe,
		fetcher:   fetcher,
		readiness: DefaultReadiness(),
		clock:     clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate runs one validation against the given unit and health URL. The
// returned error is only non-nil when the policy is invalid; every other
// outcome is carried by the Result.
func (v *Validator) Validate(ctx context.Context, unit, url string, policy Policy) (Result, error) {
	if err := policy.Validate(); err != nil {
		return Result{}, err
	}

	start := v.clock.Now()
	result := v.run(ctx, unit, url, policy)
	result.Elapsed = v.clock.Since(start)

	return result, nil
}

func (v *Validator) run(ctx context.Context, unit, url string, policy Policy) Result {
	logger := v.logger.With().
		Str("health_url", url).
		Logger()

	active, err := v.probe.Active(ctx, unit)
	if ctx.Err() != nil {
		logger.Warn().Msg("health check cancelled during status check")
		return fail(ReasonCancelled, 0)
	}
	if err != nil {
		logger.Error().Err(err).Msg("failed to query service status")
		result := fail(ReasonServiceNotActive, 0)
		result.LastError = err
		return result
	}
	if !active {
		logger.Error().Msg("service is not active")
		return fail(ReasonServiceNotActive, 0)
	}

	logger.Info().
		Int("max_attempts", policy.MaxAttempts).
		Stringer("interval", policy.Interval).
		Msg("service is active, waiting for health endpoint")

	var stats Result
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		outcome, err := v.attempt(ctx, url)
		if ctx.Err() != nil {
			logger.Warn().Int("attempt", attempt).Msg("health check cancelled")
			return withStats(fail(ReasonCancelled, attempt), stats)
		}

		switch outcome {
		case OutcomeReady:
			logger.Info().Int("attempt", attempt).Msg("service is healthy")
			return withStats(pass(attempt), stats)
		case OutcomeUnreachable:
			stats.Unreachable++
			stats.LastError = err
		case OutcomeNotReady:
			stats.NotReady++
		}

		logger.Info().
			Err(err).
			Int("attempt", attempt).
			Int("max_attempts", policy.MaxAttempts).
			Str("outcome", string(outcome)).
			Msg("service not ready yet")

		if attempt == policy.MaxAttempts {
			break
		}
		if err := v.sleep(ctx, policy.Interval); err != nil {
			logger.Warn().Int("attempt", attempt).Msg("health check cancelled")
			return withStats(fail(ReasonCancelled, attempt), stats)
		}
	}

	logger.Error().
		Int("attempts", policy.MaxAttempts).
		Int("unreachable", stats.Unreachable).
		Int("not_ready", stats.NotReady).
		Msg("health check timed out")

	return withStats(fail(ReasonHealthCheckTimeout, policy.MaxAttempts), stats)
}

func (v *Validator) attempt(ctx context.Context, url string) (AttemptOutcome, error) {
	body, err := v.fetcher.Fetch(ctx, url)
	if err != nil {
		return OutcomeUnreachable, err
	}
	if v.readiness.Ready(body) {
		return OutcomeReady, nil
	}
	return OutcomeNotReady, nil
}

func (v *Validator) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := v.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.Chan():
		return nil
	}
}

func withStats(r Result, stats Result) Result {
	r.Unreachable = stats.Unreachable
	r.NotReady = stats.NotReady
	r.LastError = stats.LastError
	return r
}
