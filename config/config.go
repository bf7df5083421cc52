// Package config provides the per-user settings file consulted by the
// provenance CLI. The file is YAML at a fixed location, loaded once into
// an explicit Config value; there is no ambient process-wide state.
// Values are addressed by dotted key paths:
//
//	paths:
//	  experiments: /data/experiments
//
//	cfg.Get("paths.experiments") // "/data/experiments", true
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the settings file name under the user's home
// directory.
const DefaultFileName = ".provenance.yaml"

// Config is a loaded settings file. The zero value is not usable; use
// Load or LoadFile.
type Config struct {
	path string
	data map[string]any
}

// Load reads the settings file from the user's home directory. A missing
// file yields an empty configuration, not an error.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("config: resolving home directory: %w", err)
	}
	return LoadFile(filepath.Join(home, DefaultFileName))
}

// LoadFile reads the settings file at path. A missing file yields an
// empty configuration bound to that path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Config{path: path, data: map[string]any{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if m == nil {
		m = map[string]any{}
	}
	return &Config{path: path, data: m}, nil
}

// Path returns the file location this configuration is bound to.
func (c *Config) Path() string { return c.path }

// Get looks up a dotted key path. The second return is false when any
// segment is missing or a non-mapping intervenes.
func (c *Config) Get(key string) (any, bool) {
	var cur any = c.data
	for _, seg := range strings.Split(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Set writes a value at a dotted key path, creating intermediate
// mappings as needed. A non-mapping intermediate is replaced.
func (c *Config) Set(key string, value any) {
	segs := strings.Split(key, ".")
	m := c.data
	for _, seg := range segs[:len(segs)-1] {
		next, ok := m[seg].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[seg] = next
		}
		m = next
	}
	m[segs[len(segs)-1]] = value
}

// StringMap returns the mapping at a dotted key path with its string
// values, dropping entries of other types. Missing keys yield nil.
func (c *Config) StringMap(key string) map[string]string {
	v, ok := c.Get(key)
	if !ok {
		return nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, val := range m {
		if s, ok := val.(string); ok {
			out[k] = s
		}
	}
	return out
}

// Save writes the configuration back to its file location.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c.data)
	if err != nil {
		return fmt.Errorf("config: encoding: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o600); err != nil {
		return fmt.Errorf("config: writing %s: %w", c.path, err)
	}
	return nil
}
