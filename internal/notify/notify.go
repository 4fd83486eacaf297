package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/report"
)

// Notifier publishes a finished report. Failures never change the verdict.
type Notifier interface {
	Notify(ctx context.Context, r *report.Report) error
	Close(ctx context.Context) error
}

var _ Notifier = Nop{}

type Nop struct{}

func (Nop) Notify(_ context.Context, _ *report.Report) error {
	return nil
}

func (Nop) Close(_ context.Context) error {
	return nil
}

// Payload is the wire form of a report. Recent log lines are left out to keep
// messages small; subscribers that need them can read the result file.
func Payload(r *report.Report) ([]byte, error) {
	stripped := *r
	if r.Diagnostics != nil {
		d := *r.Diagnostics
		d.Logs = nil
		stripped.Diagnostics = &d
	}
	raw, err := json.Marshal(stripped)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report payload: %w", err)
	}
	return raw, nil
}
