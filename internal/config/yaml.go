package config

import (
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/knadh/koanf/v2"
)

type yamlParser struct{}

// YAMLParser is a koanf parser for YAML config files.
func YAMLParser() koanf.Parser {
	return &yamlParser{}
}

func (p *yamlParser) Unmarshal(b []byte) (map[string]interface{}, error) {
	out := map[string]interface{}{}
	if err := yaml.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	return out, nil
}

func (p *yamlParser) Marshal(o map[string]interface{}) ([]byte, error) {
	return yaml.Marshal(o)
}
