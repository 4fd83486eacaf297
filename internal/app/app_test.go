package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/app"
	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/config"
	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/diagnostics"
	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/health"
	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/health/healthtest"
	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/report"
	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/testutils"
)

type recordingNotifier struct {
	mu      sync.Mutex
	reports []*report.Report
	err     error
	onCall  func()
	closed  bool
}

func (n *recordingNotifier) Notify(_ context.Context, r *report.Report) error {
	n.mu.Lock()
	n.reports = append(n.reports, r)
	onCall := n.onCall
	n.mu.Unlock()

	if onCall != nil {
		onCall()
	}
	return n.err
}

func (n *recordingNotifier) Close(_ context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.closed = true
	return nil
}

func (n *recordingNotifier) Reports() []*report.Report {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]*report.Report(nil), n.reports...)
}

func testConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.Service.Unit = "hpd-pricing"
	cfg.Retry = config.Retry{MaxAttempts: 3, Interval: 0}
	cfg.Output.Format = config.OutputFormatJSON
	return cfg
}

func fixedHost() (*diagnostics.Host, error) {
	return &diagnostics.Host{CPUs: 4, MemTotalBytes: 8 << 30, MemUsedBytes: 2 << 30}, nil
}

func TestValidate(t *testing.T) {
	ctx := context.Background()

	t.Run("pass", func(t *testing.T) {
		var out bytes.Buffer
		collector := &healthtest.Collector{Lines: []string{"started"}}
		notifier := &recordingNotifier{}
		fs := afero.NewMemMapFs()

		cfg := testConfig()
		cfg.Output.ResultFile = "/var/lib/hpdctl/last.json"

		a := app.New(cfg, testutils.Logger(t), app.Deps{
			Probe:     &healthtest.Probe{IsActive: true},
			Fetcher:   healthtest.NewFetcher(healthtest.Body(`{"status":"ok"}`)),
			Collector: collector,
			Notifier:  notifier,
			FS:        fs,
			Out:       &out,
			Snapshot:  fixedHost,
		})

		r, err := a.Validate(ctx)
		require.NoError(t, err)
		assert.True(t, r.Passed())
		assert.Equal(t, "hpd-pricing.service", r.Unit)
		assert.Equal(t, 1, r.Attempts)
		assert.Nil(t, r.Diagnostics)
		assert.Zero(t, collector.Calls())

		var rendered map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &rendered))
		assert.Equal(t, "pass", rendered["status"])

		written, err := afero.ReadFile(fs, "/var/lib/hpdctl/last.json")
		require.NoError(t, err)
		assert.JSONEq(t, out.String(), string(written))

		require.Len(t, notifier.Reports(), 1)
		assert.Equal(t, r.RunID, notifier.Reports()[0].RunID)
	})

	t.Run("timeout gathers diagnostics", func(t *testing.T) {
		var out bytes.Buffer
		collector := &healthtest.Collector{Lines: []string{"line 1", "line 2"}}
		fetcher := healthtest.NewFetcher(healthtest.Failure(healthtest.ErrConnectionRefused))

		a := app.New(testConfig(), testutils.Logger(t), app.Deps{
			Probe:     &healthtest.Probe{IsActive: true},
			Fetcher:   fetcher,
			Collector: collector,
			FS:        afero.NewMemMapFs(),
			Out:       &out,
			Snapshot:  fixedHost,
		})

		r, err := a.Validate(ctx)
		require.NoError(t, err)
		assert.False(t, r.Passed())
		assert.Equal(t, health.ReasonHealthCheckTimeout, r.Reason)
		assert.Equal(t, 3, r.Attempts)
		assert.Equal(t, 3, r.Unreachable)
		assert.Equal(t, 3, fetcher.Calls())
		assert.Equal(t, 1, collector.Calls())
		require.NotNil(t, r.Diagnostics)
		assert.Equal(t, []string{"line 1", "line 2"}, r.Diagnostics.Logs)
		require.NotNil(t, r.Diagnostics.Host)
		assert.Equal(t, 4, r.Diagnostics.Host.CPUs)
	})

	t.Run("inactive service gathers diagnostics without fetching", func(t *testing.T) {
		collector := &healthtest.Collector{Lines: []string{"Failed to start HPD Pricing Scheduler."}}
		fetcher := healthtest.NewFetcher(healthtest.Body(`{"status":"ok"}`))

		a := app.New(testConfig(), testutils.Logger(t), app.Deps{
			Probe:     &healthtest.Probe{IsActive: false},
			Fetcher:   fetcher,
			Collector: collector,
			FS:        afero.NewMemMapFs(),
			Out:       &bytes.Buffer{},
			Snapshot:  fixedHost,
		})

		r, err := a.Validate(ctx)
		require.NoError(t, err)
		assert.Equal(t, health.ReasonServiceNotActive, r.Reason)
		assert.Zero(t, fetcher.Calls())
		assert.Equal(t, 1, collector.Calls())
		require.NotNil(t, r.Diagnostics)
		assert.Equal(t, []string{"Failed to start HPD Pricing Scheduler."}, r.Diagnostics.Logs)
	})

	t.Run("notifier failure does not change the verdict", func(t *testing.T) {
		a := app.New(testConfig(), testutils.Logger(t), app.Deps{
			Probe:    &healthtest.Probe{IsActive: true},
			Fetcher:  healthtest.NewFetcher(healthtest.Body(`{"status":"ok"}`)),
			Notifier: &recordingNotifier{err: errors.New("broker unavailable")},
			FS:       afero.NewMemMapFs(),
			Out:      &bytes.Buffer{},
		})

		r, err := a.Validate(ctx)
		require.NoError(t, err)
		assert.True(t, r.Passed())
	})

	t.Run("invalid policy", func(t *testing.T) {
		cfg := testConfig()
		cfg.Retry.MaxAttempts = 0

		a := app.New(cfg, testutils.Logger(t), app.Deps{
			Probe:   &healthtest.Probe{IsActive: true},
			Fetcher: healthtest.NewFetcher(),
			FS:      afero.NewMemMapFs(),
			Out:     &bytes.Buffer{},
		})

		r, err := a.Validate(ctx)
		assert.ErrorIs(t, err, health.ErrInvalidPolicy)
		assert.Nil(t, r)
	})
}

func TestWatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notifier := &recordingNotifier{onCall: cancel}
	cfg := testConfig()
	cfg.Watch.Every = time.Hour

	a := app.New(cfg, testutils.Logger(t), app.Deps{
		Probe:    &healthtest.Probe{IsActive: true},
		Fetcher:  healthtest.NewFetcher(healthtest.Body(`{"status":"ok"}`)),
		Notifier: notifier,
		FS:       afero.NewMemMapFs(),
		Out:      &bytes.Buffer{},
	})

	done := make(chan error, 1)
	go func() {
		done <- a.Watch(ctx)
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("watch did not stop after the context was cancelled")
	}
	require.Len(t, notifier.Reports(), 1)

	require.NoError(t, a.Shutdown())
	assert.True(t, notifier.closed)
}
