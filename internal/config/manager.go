package config

import (
	"fmt"

	"github.com/knadh/koanf/v2"
)

type Manager struct {
	sources []*Source
	config  Config
}

func NewManager(sources ...*Source) *Manager {
	return &Manager{
		sources: sources,
	}
}

func (m *Manager) Config() Config {
	return m.config
}

func (m *Manager) Load() error {
	// Defaults are loaded into the same instance as the user sources so that
	// flag sources can tell which keys already have a value and skip
	// unchanged flags. Source order determines precedence.
	k := koanf.New(".")
	if err := LoadStruct(k, DefaultConfig()); err != nil {
		return fmt.Errorf("failed to load defaults: %w", err)
	}
	for _, source := range m.sources {
		err := k.Load(source.Provider(k), source.Parser, source.Options...)
		if err != nil {
			return fmt.Errorf("failed to load user-specified config: %w", err)
		}
	}

	var combined Config
	if err := k.Unmarshal("", &combined); err != nil {
		return fmt.Errorf("failed to unmarshal combined config: %w", err)
	}

	if err := combined.Validate(); err != nil {
		return err
	}

	m.config = combined

	return nil
}

// LoadSources is a convenience wrapper that loads and validates the given
// sources in order.
func LoadSources(sources ...*Source) (Config, error) {
	m := NewManager(sources...)
	if err := m.Load(); err != nil {
		return Config{}, err
	}
	return m.Config(), nil
}
