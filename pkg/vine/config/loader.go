package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FromFile loads a Config from a YAML or JSON file, picking the parser by
// file extension (.yaml, .yml, .json).
func FromFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FromYAML(raw)
	case ".json":
		return FromJSON(raw)
	default:
		return Config{}, fmt.Errorf("config: unsupported file extension %q", ext)
	}
}

// FromYAML parses YAML data into a Config.
func FromYAML(raw []byte) (Config, error) {
	return parse(yaml.Unmarshal, raw, "yaml")
}

// FromJSON parses JSON data into a Config.
func FromJSON(raw []byte) (Config, error) {
	return parse(json.Unmarshal, raw, "json")
}

// parse funnels both formats through one unmarshal shape so the error
// texture stays uniform.
func parse(unmarshal func([]byte, any) error, raw []byte, format string) (Config, error) {
	var m map[string]any
	if err := unmarshal(raw, &m); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", format, err)
	}
	return New(m), nil
}
