package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/diagnostics"
	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/health"
)

// Report is the outcome of one validation run as shown to operators and
// published to subscribers.
type Report struct {
	RunID       string              `json:"run_id" yaml:"run_id"`
	Unit        string              `json:"unit" yaml:"unit"`
	URL         string              `json:"url" yaml:"url"`
	Status      health.Status       `json:"status" yaml:"status"`
	Reason      health.Reason       `json:"reason,omitempty" yaml:"reason,omitempty"`
	Attempts    int                 `json:"attempts" yaml:"attempts"`
	MaxAttempts int                 `json:"max_attempts" yaml:"max_attempts"`
	Unreachable int                 `json:"unreachable" yaml:"unreachable"`
	NotReady    int                 `json:"not_ready" yaml:"not_ready"`
	LastError   string              `json:"last_error,omitempty" yaml:"last_error,omitempty"`
	StartedAt   time.Time           `json:"started_at" yaml:"started_at"`
	Elapsed     string              `json:"elapsed" yaml:"elapsed"`
	Diagnostics *diagnostics.Report `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

func New(unit, url string, policy health.Policy, startedAt time.Time, result health.Result) *Report {
	r := &Report{
		RunID:       uuid.NewString(),
		Unit:        unit,
		URL:         url,
		Status:      result.Status,
		Reason:      result.Reason,
		Attempts:    result.Attempts,
		MaxAttempts: policy.MaxAttempts,
		Unreachable: result.Unreachable,
		NotReady:    result.NotReady,
		StartedAt:   startedAt.UTC(),
		Elapsed:     result.Elapsed.Round(time.Millisecond).String(),
	}
	if result.LastError != nil {
		r.LastError = result.LastError.Error()
	}
	return r
}

func (r *Report) Passed() bool {
	return r.Status == health.StatusPass
}
