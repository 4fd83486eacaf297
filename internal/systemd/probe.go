package systemd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coreos/go-systemd/v22/dbus"

	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/exec"
)

// Probe answers whether a unit is currently active. Units that don't exist
// are reported as inactive without an error. An error means the probe itself
// could not reach systemd.
type Probe interface {
	Name() string
	Active(ctx context.Context, unit string) (bool, error)
}

var (
	_ Probe = (*DBusProbe)(nil)
	_ Probe = (*SystemctlProbe)(nil)
	_ Probe = StaticProbe(false)
)

type unitPropertyGetter interface {
	GetUnitPropertyContext(ctx context.Context, unit string, propertyName string) (*dbus.Property, error)
	Close()
}

// DBusProbe reads the unit's ActiveState over the system bus.
type DBusProbe struct {
	connect func(ctx context.Context) (unitPropertyGetter, error)
}

func NewDBusProbe() *DBusProbe {
	return &DBusProbe{
		connect: func(ctx context.Context) (unitPropertyGetter, error) {
			return dbus.NewSystemConnectionContext(ctx)
		},
	}
}

func (p *DBusProbe) Name() string {
	return "dbus"
}

func (p *DBusProbe) Active(ctx context.Context, unit string) (bool, error) {
	conn, err := p.connect(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to connect to systemd over dbus: %w", err)
	}
	defer conn.Close()

	prop, err := conn.GetUnitPropertyContext(ctx, NormalizeUnit(unit), "ActiveState")
	if err != nil {
		if isNoSuchUnit(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get ActiveState for unit %q: %w", unit, err)
	}
	state, ok := prop.Value.Value().(string)
	if !ok {
		return false, fmt.Errorf("unexpected ActiveState value for unit %q: %s", unit, prop.Value.String())
	}

	return isActiveState(state), nil
}

func isNoSuchUnit(err error) bool {
	return strings.Contains(err.Error(), "org.freedesktop.systemd1.NoSuchUnit")
}

// SystemctlProbe runs 'systemctl is-active'.
type SystemctlProbe struct {
	run exec.CmdRunner
}

func NewSystemctlProbe(run exec.CmdRunner) *SystemctlProbe {
	if run == nil {
		run = exec.RunCmd
	}
	return &SystemctlProbe{run: run}
}

func (p *SystemctlProbe) Name() string {
	return "systemctl"
}

func (p *SystemctlProbe) Active(ctx context.Context, unit string) (bool, error) {
	out, err := p.run(ctx, "systemctl", "is-active", NormalizeUnit(unit))
	if err != nil {
		// is-active exits non-zero for every state other than active,
		// including units that don't exist.
		if _, ok := exec.ExitCode(err); ok {
			return false, nil
		}
		return false, fmt.Errorf("failed to run systemctl: %w", err)
	}

	return isActiveState(strings.TrimSpace(out)), nil
}

// StaticProbe always returns the same answer. It's used when the service
// isn't managed by systemd.
type StaticProbe bool

func (p StaticProbe) Name() string {
	return "none"
}

func (p StaticProbe) Active(_ context.Context, _ string) (bool, error) {
	return bool(p), nil
}

var ErrNoProbeAvailable = errors.New("no service status probe available")
