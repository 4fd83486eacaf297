package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/config"
	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/health"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 1, exitCode(fmt.Errorf("%w: %s", errUnhealthy, health.ReasonHealthCheckTimeout)))
	assert.Equal(t, 1, exitCode(fmt.Errorf("failed to load configs: invalid")))
}

func TestValidationFlags(t *testing.T) {
	flags := pflag.NewFlagSet("validate", pflag.ContinueOnError)
	addValidationFlags(flags)
	require.NoError(t, flags.Parse([]string{
		"--retry.max_attempts=5",
		"--retry.interval=500ms",
		"-o", "json",
	}))

	cfg, err := config.LoadSources(config.NewPFlagSource(flags))
	require.NoError(t, err)

	expected := config.DefaultConfig()
	expected.Retry = config.Retry{MaxAttempts: 5, Interval: 5e8}
	expected.Output.Format = config.OutputFormatJSON
	assert.Equal(t, expected, cfg)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newVersionCommand()
	cmd.SetOut(&out)
	cmd.SetArgs(nil)

	require.NoError(t, cmd.Execute())

	var info map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &info))
	assert.Contains(t, info, "version")
}
