package fetch

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/exec"
)

var _ Fetcher = (*CommandFetcher)(nil)

// CommandFetcher shells out to curl or wget.
type CommandFetcher struct {
	tool    string
	timeout time.Duration
	run     exec.CmdRunner
}

func NewCurlFetcher(run exec.CmdRunner, timeout time.Duration) *CommandFetcher {
	return newCommandFetcher("curl", run, timeout)
}

func NewWgetFetcher(run exec.CmdRunner, timeout time.Duration) *CommandFetcher {
	return newCommandFetcher("wget", run, timeout)
}

func newCommandFetcher(tool string, run exec.CmdRunner, timeout time.Duration) *CommandFetcher {
	if run == nil {
		run = exec.RunCmd
	}
	return &CommandFetcher{
		tool:    tool,
		timeout: timeout,
		run:     run,
	}
}

func (f *CommandFetcher) Name() string {
	return f.tool
}

func (f *CommandFetcher) args(url string) []string {
	secs := strconv.Itoa(max(1, int(f.timeout.Round(time.Second)/time.Second)))
	switch f.tool {
	case "wget":
		return []string{"-q", "-O", "-", "-T", secs, url}
	default:
		return []string{"-fsS", "--max-time", secs, url}
	}
}

func (f *CommandFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	out, err := f.run(ctx, f.tool, f.args(url)...)
	if err != nil {
		if code, ok := exec.ExitCode(err); ok {
			return nil, fmt.Errorf("%s exited with code %d: %s", f.tool, code, truncate([]byte(out)))
		}
		return nil, fmt.Errorf("failed to run %s: %w", f.tool, err)
	}
	return []byte(out), nil
}
