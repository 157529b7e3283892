package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// osUserHomeDir is swapped out in tests.
var osUserHomeDir = os.UserHomeDir

// ExpandPath resolves paths like "~/" to the user's home directory.
func ExpandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := osUserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not get user home directory: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}

// DefaultPath is ~/Dexter/config/welcome.json.
func DefaultPath() (string, error) {
	return ExpandPath(filepath.Join("~/Dexter/config", "welcome.json"))
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func unmarshal(path string, data []byte, v interface{}) error {
	if isYAML(path) {
		return yaml.Unmarshal(data, v)
	}
	return json.Unmarshal(data, v)
}

func marshal(path string, v interface{}) ([]byte, error) {
	if isYAML(path) {
		return yaml.Marshal(v)
	}
	return json.MarshalIndent(v, "", "  ")
}

// writeDefault creates path with the default configuration.
func writeDefault(path string) (*Config, error) {
	cfg := Default()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("could not create config directory: %w", err)
	}
	data, err := marshal(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("could not encode default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("could not write default config file %s: %w", path, err)
	}
	return cfg, nil
}
