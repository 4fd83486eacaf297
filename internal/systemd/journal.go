package systemd

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/exec"
)

// Collector retrieves recent log lines for a unit, oldest first. It's best
// effort: failures yield an empty result.
type Collector interface {
	Collect(ctx context.Context, unit string, lines int) []string
}

var _ Collector = (*JournalCollector)(nil)

type JournalCollector struct {
	logger zerolog.Logger
	run    exec.CmdRunner
}

func NewJournalCollector(logger zerolog.Logger, run exec.CmdRunner) *JournalCollector {
	if run == nil {
		run = exec.RunCmd
	}
	return &JournalCollector{
		logger: logger.With().Str("component", "journal_collector").Logger(),
		run:    run,
	}
}

func (c *JournalCollector) Collect(ctx context.Context, unit string, lines int) []string {
	args := []string{
		"-u", NormalizeUnit(unit),
		"-n", strconv.Itoa(lines),
		"--no-pager",
		"-o", "short-iso",
	}
	c.logger.Debug().
		Str("command", exec.CommandString("journalctl", args...)).
		Msg("collecting recent logs")

	out, err := c.run(ctx, "journalctl", args...)
	if err != nil {
		c.logger.Debug().Err(err).Msg("failed to collect recent logs")
		return nil
	}

	return parseJournal(out, lines)
}

func parseJournal(out string, limit int) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		// Journal markers such as '-- No entries --' or '-- Boot <id> --'.
		if strings.HasPrefix(line, "-- ") && strings.HasSuffix(line, " --") {
			continue
		}
		lines = append(lines, line)
	}
	if limit > 0 && len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	return lines
}
