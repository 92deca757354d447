package memory

import (
	"maps"
	"sync"

	"github.com/custodia-labs/stash/internal/adapters/driven/config/value"
	"github.com/custodia-labs/stash/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in a map and never touches disk.
// Values read back with the same conversions as config.toml.
type ConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewConfigStore creates an empty in-memory config store.
func NewConfigStore() *ConfigStore {
	return NewConfigStoreWith(nil)
}

// NewConfigStoreWith creates a store seeded with a copy of values.
func NewConfigStoreWith(values map[string]any) *ConfigStore {
	seeded := make(map[string]any, len(values))
	maps.Copy(seeded, values)
	return &ConfigStore{values: seeded}
}

// Get returns the raw value for key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *ConfigStore) lookup(key string) any {
	v, _ := s.Get(key)
	return v
}

// GetString returns key as a string, or "".
func (s *ConfigStore) GetString(key string) string { return value.String(s.lookup(key)) }

// GetInt returns key as an int, or 0.
func (s *ConfigStore) GetInt(key string) int { return value.Int(s.lookup(key)) }

// GetFloat returns key as a float64, or 0.
func (s *ConfigStore) GetFloat(key string) float64 { return value.Float(s.lookup(key)) }

// GetBool returns key as a bool, or false.
func (s *ConfigStore) GetBool(key string) bool { return value.Bool(s.lookup(key)) }

// Set stores value under key.
func (s *ConfigStore) Set(key string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = v
	return nil
}

// Save is a no-op.
func (s *ConfigStore) Save() error { return nil }

// Load is a no-op.
func (s *ConfigStore) Load() error { return nil }

// Path reports that nothing is stored on disk.
func (s *ConfigStore) Path() string { return ":memory:" }
