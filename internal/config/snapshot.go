package config

import (
	"sort"
	"strconv"
)

// Snapshot is an immutable, ordered-by-key set of properties. Three snapshots
// exist transiently during startup: defaults, persisted, and effective.
type Snapshot struct {
	props map[string]Property
	keys  []string
}

// NewSnapshot builds a snapshot from the given properties. Later duplicates
// win; keys are kept sorted.
func NewSnapshot(props ...Property) Snapshot {
	byKey := make(map[string]Property, len(props))
	for _, prop := range props {
		byKey[prop.Key] = prop
	}
	keys := make([]string, 0, len(byKey))
	for key := range byKey {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return Snapshot{props: byKey, keys: keys}
}

// Has reports whether the snapshot contains key.
func (s Snapshot) Has(key string) bool {
	_, ok := s.props[key]
	return ok
}

// Lookup returns the property stored under key.
func (s Snapshot) Lookup(key string) (Property, bool) {
	prop, ok := s.props[key]
	return prop, ok
}

// String returns the raw value for key, or "" when absent.
func (s Snapshot) String(key string) string {
	return s.props[key].Value
}

// Int returns the value for key parsed as an integer, or 0 when absent or
// malformed. Validated snapshots never hit the malformed case.
func (s Snapshot) Int(key string) int {
	value, err := strconv.Atoi(s.props[key].Value)
	if err != nil {
		return 0
	}
	return value
}

// Bool returns the value for key parsed as a boolean, false when absent.
func (s Snapshot) Bool(key string) bool {
	value, err := strconv.ParseBool(s.props[key].Value)
	if err != nil {
		return false
	}
	return value
}

// Keys returns the sorted key list.
func (s Snapshot) Keys() []string {
	cp := make([]string, len(s.keys))
	copy(cp, s.keys)
	return cp
}

// Properties returns the properties in key order.
func (s Snapshot) Properties() []Property {
	props := make([]Property, 0, len(s.keys))
	for _, key := range s.keys {
		props = append(props, s.props[key])
	}
	return props
}

// Len returns the number of properties.
func (s Snapshot) Len() int {
	return len(s.keys)
}
