package systemd

import "strings"

// unitTypes are the suffixes systemd accepts as a unit type.
var unitTypes = []string{
	".service",
	".socket",
	".target",
	".timer",
	".mount",
	".path",
	".slice",
	".scope",
}

// NormalizeUnit appends the '.service' suffix to bare unit names.
func NormalizeUnit(unit string) string {
	for _, suffix := range unitTypes {
		if strings.HasSuffix(unit, suffix) {
			return unit
		}
	}
	return unit + ".service"
}

// isActiveState reports whether a unit's ActiveState counts as running.
// systemctl is-active uses the same rule.
func isActiveState(state string) bool {
	switch state {
	case "active", "reloading":
		return true
	default:
		return false
	}
}
