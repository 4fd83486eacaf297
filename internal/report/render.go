package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-yaml"

	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/config"
)

func Render(w io.Writer, r *Report, format config.OutputFormat) error {
	switch format {
	case config.OutputFormatJSON:
		raw, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report to json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(raw))
		return err
	case config.OutputFormatYAML:
		raw, err := yaml.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to marshal report to yaml: %w", err)
		}
		_, err = w.Write(raw)
		return err
	case config.OutputFormatText, "":
		_, err := io.WriteString(w, Text(r))
		return err
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// Text renders the report for a terminal.
func Text(r *Report) string {
	var b strings.Builder

	if r.Passed() {
		fmt.Fprintf(&b, "PASS %s is healthy at %s (attempt %d/%d, %s)\n",
			r.Unit, r.URL, r.Attempts, r.MaxAttempts, r.Elapsed)
		return b.String()
	}

	fmt.Fprintf(&b, "FAIL %s: %s after %d/%d attempts (%s)\n",
		r.Unit, r.Reason, r.Attempts, r.MaxAttempts, r.Elapsed)
	if r.Attempts > 0 {
		fmt.Fprintf(&b, "  unreachable: %d, not ready: %d\n", r.Unreachable, r.NotReady)
	}
	if r.LastError != "" {
		fmt.Fprintf(&b, "  last error: %s\n", r.LastError)
	}

	d := r.Diagnostics
	if d == nil {
		return b.String()
	}
	if d.Host != nil {
		fmt.Fprintf(&b, "  host: %d cpus, memory %s used of %s, load %.2f %.2f %.2f\n",
			d.Host.CPUs,
			humanize.IBytes(d.Host.MemUsedBytes),
			humanize.IBytes(d.Host.MemTotalBytes),
			d.Host.Load1, d.Host.Load5, d.Host.Load15)
	}
	if d.Unit != nil {
		fmt.Fprintf(&b, "  unit file: %s\n", d.Unit.Path)
		for _, exec := range d.Unit.ExecStart {
			fmt.Fprintf(&b, "    ExecStart=%s\n", exec)
		}
	}
	for _, e := range d.Errors {
		fmt.Fprintf(&b, "  diagnostics: %s\n", e)
	}
	if len(d.Logs) > 0 {
		fmt.Fprintf(&b, "  last %d log lines:\n", len(d.Logs))
		for _, line := range d.Logs {
			fmt.Fprintf(&b, "    %s\n", line)
		}
	}

	return b.String()
}
