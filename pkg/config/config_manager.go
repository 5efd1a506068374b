package config

import (
	"reflect"
	"strings"
)

// Manager merges CLI flag values into a Config.
// Priority: CLI flags > config file > defaults.
type Manager struct {
	cfg   *Config
	flags map[string]any
}

// NewManager wraps a loaded Config for flag merging.
func NewManager(cfg *Config) *Manager {
	return &Manager{cfg: cfg, flags: make(map[string]any)}
}

// SetFlag registers a CLI flag value under its YAML key. Zero values are
// ignored at merge time so unset flags never override the file.
func (m *Manager) SetFlag(key string, value any) {
	m.flags[key] = value
}

// Merge applies registered flag values onto the Config, matching fields by
// their YAML tag.
func (m *Manager) Merge() *Config {
	v := reflect.ValueOf(m.cfg).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("yaml")
		if tag == "" {
			continue
		}
		key := strings.Split(tag, ",")[0]
		flagValue, ok := m.flags[key]
		if !ok {
			continue
		}
		fv := reflect.ValueOf(flagValue)
		if fv.IsZero() {
			continue
		}
		field := v.Field(i)
		if field.CanSet() && fv.Type().ConvertibleTo(field.Type()) {
			field.Set(fv.Convert(field.Type()))
		}
	}
	return m.cfg
}
