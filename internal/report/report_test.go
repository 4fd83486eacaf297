package report_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/config"
	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/diagnostics"
	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/health"
	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/report"
	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/systemd"
)

const (
	unit = "hpd-pricing.service"
	url  = "http://127.0.0.1:8000/health"
)

var startedAt = time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)

func passing() *report.Report {
	return report.New(unit, url, health.Policy{MaxAttempts: 30, Interval: 2 * time.Second}, startedAt, health.Result{
		Status:   health.StatusPass,
		Attempts: 3,
		NotReady: 2,
		Elapsed:  4*time.Second + 12*time.Millisecond,
	})
}

func failing() *report.Report {
	r := report.New(unit, url, health.Policy{MaxAttempts: 2}, startedAt, health.Result{
		Status:      health.StatusFail,
		Reason:      health.ReasonHealthCheckTimeout,
		Attempts:    2,
		Unreachable: 2,
		LastError:   errors.New("connection refused"),
		Elapsed:     time.Second,
	})
	r.Diagnostics = &diagnostics.Report{
		Logs: []string{"Traceback (most recent call last):", "ModuleNotFoundError: No module named 'hpd'"},
		Unit: &systemd.UnitFile{
			Path:      "/etc/systemd/system/hpd-pricing.service",
			ExecStart: []string{"/opt/hpd/venv/bin/uvicorn main:app"},
		},
		Host: &diagnostics.Host{
			CPUs:          2,
			MemTotalBytes: 4 << 30,
			MemUsedBytes:  1 << 30,
			Load1:         0.5,
			Load5:         0.25,
			Load15:        0.1,
		},
	}
	return r
}

func TestNew(t *testing.T) {
	r := failing()

	_, err := uuid.Parse(r.RunID)
	require.NoError(t, err)
	assert.Equal(t, health.StatusFail, r.Status)
	assert.Equal(t, "connection refused", r.LastError)
	assert.Equal(t, "1s", r.Elapsed)
	assert.False(t, r.Passed())
	assert.True(t, passing().Passed())
	assert.NotEqual(t, passing().RunID, passing().RunID)
}

func TestText(t *testing.T) {
	assert.Equal(t,
		"PASS hpd-pricing.service is healthy at http://127.0.0.1:8000/health (attempt 3/30, 4.012s)\n",
		report.Text(passing()))

	assert.Equal(t, ""+
		"FAIL hpd-pricing.service: health_check_timeout after 2/2 attempts (1s)\n"+
		"  unreachable: 2, not ready: 0\n"+
		"  last error: connection refused\n"+
		"  host: 2 cpus, memory 1.0 GiB used of 4.0 GiB, load 0.50 0.25 0.10\n"+
		"  unit file: /etc/systemd/system/hpd-pricing.service\n"+
		"    ExecStart=/opt/hpd/venv/bin/uvicorn main:app\n"+
		"  last 2 log lines:\n"+
		"    Traceback (most recent call last):\n"+
		"    ModuleNotFoundError: No module named 'hpd'\n",
		report.Text(failing()))
}

func TestRender(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, report.Render(&buf, failing(), config.OutputFormatJSON))

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, "fail", decoded["status"])
		assert.Equal(t, "health_check_timeout", decoded["reason"])
		assert.Equal(t, float64(2), decoded["attempts"])
		assert.Equal(t, "2026-10-14T09:30:00Z", decoded["started_at"])
		require.Contains(t, decoded, "diagnostics")
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, report.Render(&buf, passing(), config.OutputFormatYAML))

		out := buf.String()
		assert.Contains(t, out, "status: pass\n")
		assert.Contains(t, out, "attempts: 3\n")
		assert.NotContains(t, out, "reason:")
		assert.NotContains(t, out, "diagnostics:")
	})

	t.Run("unknown format", func(t *testing.T) {
		assert.ErrorContains(t, report.Render(&bytes.Buffer{}, passing(), "xml"), `unsupported output format "xml"`)
	})
}

func TestWriteFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "/var/lib/hpd/last-health.json"

	require.NoError(t, report.WriteFile(fs, path, failing(), config.OutputFormatJSON))
	require.NoError(t, report.WriteFile(fs, path, passing(), config.OutputFormatJSON))

	raw, err := afero.ReadFile(fs, path)
	require.NoError(t, err)

	var decoded report.Report
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, health.StatusPass, decoded.Status)

	exists, err := afero.Exists(fs, path+".tmp")
	require.NoError(t, err)
	assert.False(t, exists)
}
