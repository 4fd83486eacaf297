package exec

import (
	"context"
	"errors"
	"os/exec"
	"strings"

	"al.essio.dev/pkg/shellescape"
)

type CmdRunner func(ctx context.Context, name string, arg ...string) (string, error)

// LookPath reports the resolved path of an executable, or an error when it
// is not available.
type LookPath func(file string) (string, error)

func RunCmd(ctx context.Context, name string, arg ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, arg...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

// Available returns true if the named executable can be found with the given
// LookPath.
func Available(lookPath LookPath, name string) bool {
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	_, err := lookPath(name)
	return err == nil
}

type exitCoder interface {
	ExitCode() int
}

// ExitCode returns the exit code carried by err and true if err came from a
// command that ran and exited unsuccessfully. *exec.ExitError satisfies this,
// as does any error with an ExitCode() int method.
func ExitCode(err error) (int, bool) {
	var coder exitCoder
	if !errors.As(err, &coder) {
		return 0, false
	}
	return coder.ExitCode(), true
}

func CommandString(name string, arg ...string) string {
	parts := make([]string, 0, len(arg)+1)
	parts = append(parts, shellescape.Quote(name))
	for _, a := range arg {
		parts = append(parts, shellescape.Quote(a))
	}
	return strings.Join(parts, " ")
}
