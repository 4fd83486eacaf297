package systemd

import (
	"fmt"

	"github.com/spf13/afero"

	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/config"
	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/exec"
)

// SystemBusSocket is the default location of the system bus socket.
const SystemBusSocket = "/run/dbus/system_bus_socket"

// Env describes the capabilities available on this host. It's consulted once
// at startup to pick a probe.
type Env struct {
	FS       afero.Fs
	LookPath exec.LookPath
	Runner   exec.CmdRunner
}

func (e Env) hasSystemBus() bool {
	fs := e.FS
	if fs == nil {
		fs = afero.NewOsFs()
	}
	_, err := fs.Stat(SystemBusSocket)
	return err == nil
}

func NewProbe(method config.ProbeMethod, env Env) (Probe, error) {
	switch method {
	case config.ProbeMethodDBus:
		return NewDBusProbe(), nil
	case config.ProbeMethodSystemctl:
		return NewSystemctlProbe(env.Runner), nil
	case config.ProbeMethodNone:
		return StaticProbe(true), nil
	case config.ProbeMethodAuto, "":
		if env.hasSystemBus() {
			return NewDBusProbe(), nil
		}
		if exec.Available(env.LookPath, "systemctl") {
			return NewSystemctlProbe(env.Runner), nil
		}
		return nil, fmt.Errorf("%w: no system bus at %s and systemctl is not on PATH", ErrNoProbeAvailable, SystemBusSocket)
	default:
		return nil, fmt.Errorf("unsupported probe method %q", method)
	}
}
