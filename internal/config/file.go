package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// LoadFile parses the persisted configuration file into a snapshot. Section
// headers become key prefixes ("[server]" + "port" -> "server.port"). Unknown
// keys are kept so they can surface as deprecated-key diagnostics later.
func LoadFile(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read config: %w", err)
	}

	raw := map[string]any{}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Snapshot{}, fmt.Errorf("parse config: %w", err)
	}

	var props []Property
	flatten("", raw, &props)
	return NewSnapshot(props...), nil
}

func flatten(prefix string, value any, props *[]Property) {
	table, ok := value.(map[string]any)
	if !ok {
		*props = append(*props, Property{Key: prefix, Value: formatValue(value)})
		return
	}
	keys := make([]string, 0, len(table))
	for key := range table {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		child := key
		if prefix != "" {
			child = prefix + "." + key
		}
		flatten(child, table[key], props)
	}
}

func formatValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// WriteFile persists a full snapshot as a sectioned TOML file, creating
// parent directories as needed. Used for first-run scaffolding and for
// writing a pristine defaults file.
func WriteFile(snapshot Snapshot, path string) error {
	tree := map[string]any{}
	for _, prop := range snapshot.Properties() {
		section := tree
		segments := strings.Split(prop.Key, ".")
		for _, segment := range segments[:len(segments)-1] {
			child, ok := section[segment].(map[string]any)
			if !ok {
				child = map[string]any{}
				section[segment] = child
			}
			section = child
		}
		section[segments[len(segments)-1]] = typedValue(prop.Value)
	}

	data, err := toml.Marshal(tree)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func typedValue(raw string) any {
	if value, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return value
	}
	if raw == "true" || raw == "false" {
		return raw == "true"
	}
	return raw
}
