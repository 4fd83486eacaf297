package testutils

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ExitError mimics the error returned by a command that ran and exited with
// a non-zero code.
type ExitError int

func (e ExitError) Error() string {
	return fmt.Sprintf("exit status %d", int(e))
}

func (e ExitError) ExitCode() int {
	return int(e)
}

var ErrCommandNotFound = errors.New("executable file not found in $PATH")

// CmdResponse is the canned result for one command line.
type CmdResponse struct {
	Output string
	Err    error
}

// FakeRunner is a scripted stand-in for exec.RunCmd. Responses are keyed by
// the full command line joined with spaces. Unknown commands fail with
// ErrCommandNotFound.
type FakeRunner struct {
	mu        sync.Mutex
	responses map[string]CmdResponse
	calls     []string
}

func NewFakeRunner(responses map[string]CmdResponse) *FakeRunner {
	return &FakeRunner{responses: responses}
}

func (f *FakeRunner) Run(_ context.Context, name string, arg ...string) (string, error) {
	line := strings.Join(append([]string{name}, arg...), " ")

	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, line)
	resp, ok := f.responses[line]
	if !ok {
		return "", fmt.Errorf("%s: %w", name, ErrCommandNotFound)
	}
	return resp.Output, resp.Err
}

func (f *FakeRunner) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.calls...)
}

// LookPath returns a LookPath function that only finds the given names.
func LookPath(available ...string) func(string) (string, error) {
	return func(file string) (string, error) {
		for _, name := range available {
			if name == file {
				return "/usr/bin/" + file, nil
			}
		}
		return "", fmt.Errorf("%s: %w", file, ErrCommandNotFound)
	}
}
