package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix for environment variable overrides. Double
// underscores separate nested keys, e.g. HPD_RETRY__MAX_ATTEMPTS.
const EnvPrefix = "HPD_"

// Source is one layer of configuration. Later sources override earlier ones.
type Source struct {
	Provider func(k *koanf.Koanf) koanf.Provider
	Parser   koanf.Parser
	Options  []koanf.Option
}

// NewFileSource reads a config file. Files ending in .yaml or .yml are parsed
// as YAML, everything else as JSON.
func NewFileSource(path string) *Source {
	var parser koanf.Parser = kjson.Parser()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = YAMLParser()
	}
	return &Source{
		Provider: func(_ *koanf.Koanf) koanf.Provider {
			return file.Provider(path)
		},
		Parser: parser,
	}
}

func NewEnvVarSource() *Source {
	return &Source{
		Provider: func(_ *koanf.Koanf) koanf.Provider {
			return env.Provider(EnvPrefix, ".", envKey)
		},
	}
}

// envKey maps HPD_RETRY__MAX_ATTEMPTS to retry.max_attempts.
func envKey(name string) string {
	name = strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	return strings.ReplaceAll(name, "__", ".")
}

// NewPFlagSource reads command-line flags named after config keys. Flags the
// user didn't set are skipped for keys that already have a value.
func NewPFlagSource(flagSet *pflag.FlagSet) *Source {
	return &Source{
		Provider: func(k *koanf.Koanf) koanf.Provider {
			return posflag.ProviderWithFlag(flagSet, ".", k, func(f *pflag.Flag) (string, interface{}) {
				return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flagSet, f)
			})
		},
	}
}

func NewStructSource(config Config) (*Source, error) {
	raw, err := marshalStruct(config)
	if err != nil {
		return nil, err
	}
	return &Source{
		Provider: func(_ *koanf.Koanf) koanf.Provider {
			return rawbytes.Provider(raw)
		},
		Parser: kjson.Parser(),
	}, nil
}

// LoadStruct loads the non-zero fields of config into k.
func LoadStruct(k *koanf.Koanf, config Config) error {
	raw, err := marshalStruct(config)
	if err != nil {
		return err
	}
	if err := k.Load(rawbytes.Provider(raw), kjson.Parser()); err != nil {
		return fmt.Errorf("failed to load config from json bytes: %w", err)
	}
	return nil
}

// marshalStruct goes through JSON rather than the structs provider so that
// omitempty drops zero values instead of merging them over set ones.
func marshalStruct(config Config) ([]byte, error) {
	raw, err := json.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to json: %w", err)
	}
	return raw, nil
}
