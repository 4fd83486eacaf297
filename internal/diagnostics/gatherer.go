package diagnostics

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/config"
	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/systemd"
)

// Report is the context gathered after a failed validation. Every field is
// best effort; problems are listed in Errors instead of being returned.
type Report struct {
	Logs   []string          `json:"logs,omitempty" yaml:"logs,omitempty"`
	Unit   *systemd.UnitFile `json:"unit,omitempty" yaml:"unit,omitempty"`
	Host   *Host             `json:"host,omitempty" yaml:"host,omitempty"`
	Errors []string          `json:"errors,omitempty" yaml:"errors,omitempty"`
}

type Options struct {
	Logs      config.Logs
	Host      bool
	UnitFile  string
	FS        afero.Fs
	Collector systemd.Collector
	// Snapshot defaults to DetectHost.
	Snapshot HostSnapshotFunc
}

type Gatherer struct {
	logger    zerolog.Logger
	logs      config.Logs
	host      bool
	unitFile  string
	fs        afero.Fs
	collector systemd.Collector
	snapshot  HostSnapshotFunc
}

func NewGatherer(logger zerolog.Logger, opts Options) *Gatherer {
	fs := opts.FS
	if fs == nil {
		fs = afero.NewOsFs()
	}
	snapshot := opts.Snapshot
	if snapshot == nil {
		snapshot = DetectHost
	}
	return &Gatherer{
		logger:    logger.With().Str("component", "diagnostics").Logger(),
		logs:      opts.Logs,
		host:      opts.Host,
		unitFile:  opts.UnitFile,
		fs:        fs,
		collector: opts.Collector,
		snapshot:  snapshot,
	}
}

func (g *Gatherer) Gather(ctx context.Context, unit string) *Report {
	report := &Report{}

	if g.logs.Enabled && g.collector != nil {
		report.Logs = g.collector.Collect(ctx, unit, g.logs.Lines)
		if len(report.Logs) == 0 {
			report.Errors = append(report.Errors, "no recent log lines available")
		}
	}

	if g.unitFile != "" {
		unitFile, err := systemd.ReadUnitFile(g.fs, g.unitFile)
		if err != nil {
			report.Errors = append(report.Errors, err.Error())
		} else {
			report.Unit = unitFile
		}
	}

	if g.host {
		host, err := g.snapshot()
		if err != nil {
			report.Errors = append(report.Errors, err.Error())
		}
		report.Host = host
	}

	g.logger.Debug().
		Int("log_lines", len(report.Logs)).
		Strs("errors", report.Errors).
		Msg("gathered diagnostics")

	return report
}
