package systemd

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/ini.v1"
)

// UnitFile is the subset of a service unit file that's useful when
// diagnosing a failed health check.
type UnitFile struct {
	Path             string   `json:"path"`
	Description      string   `json:"description,omitempty"`
	ExecStart        []string `json:"exec_start,omitempty"`
	WorkingDirectory string   `json:"working_directory,omitempty"`
	EnvironmentFile  []string `json:"environment_file,omitempty"`
	User             string   `json:"user,omitempty"`
	Restart          string   `json:"restart,omitempty"`
}

func ReadUnitFile(fs afero.Fs, path string) (*UnitFile, error) {
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read unit file: %w", err)
	}

	f, err := ini.LoadSources(ini.LoadOptions{
		AllowShadows:        true,
		IgnoreInlineComment: true,
		KeyValueDelimiters:  "=",
	}, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse unit file: %w", err)
	}

	unit := f.Section("Unit")
	service := f.Section("Service")

	return &UnitFile{
		Path:             path,
		Description:      unit.Key("Description").String(),
		ExecStart:        shadowValues(service, "ExecStart"),
		WorkingDirectory: service.Key("WorkingDirectory").String(),
		EnvironmentFile:  shadowValues(service, "EnvironmentFile"),
		User:             service.Key("User").String(),
		Restart:          service.Key("Restart").String(),
	}, nil
}

// shadowValues returns every non-empty value for a repeatable key. An empty
// assignment resets the list, matching systemd's semantics.
func shadowValues(section *ini.Section, name string) []string {
	if !section.HasKey(name) {
		return nil
	}
	var values []string
	for _, v := range section.Key(name).ValueWithShadows() {
		v = strings.TrimSpace(v)
		if v == "" {
			values = nil
			continue
		}
		values = append(values, v)
	}
	return values
}
