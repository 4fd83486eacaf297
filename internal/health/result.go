package health

import (
	"errors"
	"time"
)

type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
)

// Reason explains a failed run. It's empty for passing runs.
type Reason string

const (
	ReasonServiceNotActive   Reason = "service_not_active"
	ReasonHealthCheckTimeout Reason = "health_check_timeout"
	ReasonCancelled          Reason = "cancelled"
)

var (
	ErrServiceNotActive   = errors.New("service is not active")
	ErrHealthCheckTimeout = errors.New("health check timed out")
	ErrCancelled          = errors.New("health check cancelled")
)

// AttemptOutcome classifies a single poll.
type AttemptOutcome string

const (
	// OutcomeUnreachable means the fetch itself failed: connection refused,
	// timeout or a non-2xx status.
	OutcomeUnreachable AttemptOutcome = "unreachable"
	// OutcomeNotReady means the endpoint answered without the readiness
	// signal.
	OutcomeNotReady AttemptOutcome = "not_ready"
	OutcomeReady    AttemptOutcome = "ready"
)

// Result is the verdict of one validation run.
type Result struct {
	Status   Status
	Reason   Reason
	Attempts int
	// Unreachable and NotReady count failed attempts by outcome. Together
	// they tell an endpoint that never came up apart from one that came up
	// but never reported ready.
	Unreachable int
	NotReady    int
	// LastError is the most recent fetch or probe error, if any.
	LastError error
	Elapsed   time.Duration
}

func (r Result) Passed() bool {
	return r.Status == StatusPass
}

// Err returns nil for passing runs and the sentinel error for the failure
// reason otherwise.
func (r Result) Err() error {
	if r.Passed() {
		return nil
	}
	switch r.Reason {
	case ReasonServiceNotActive:
		return ErrServiceNotActive
	case ReasonCancelled:
		return ErrCancelled
	default:
		return ErrHealthCheckTimeout
	}
}

func pass(attempts int) Result {
	return Result{Status: StatusPass, Attempts: attempts}
}

func fail(reason Reason, attempts int) Result {
	return Result{Status: StatusFail, Reason: reason, Attempts: attempts}
}
