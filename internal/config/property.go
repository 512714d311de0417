package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Validator normalizes a raw property value or rejects it. The returned
// string replaces the raw value in the snapshot.
type Validator func(string) (string, error)

// Property is a single configuration entry. Keys are dotted and hierarchical
// (for example "server.port"); the first segment is the file section. Hidden
// properties are suppressed from diagnostics and table output.
type Property struct {
	Key      string
	Value    string
	Hidden   bool
	Validate Validator
}

func intRule(min, max int) Validator {
	return func(raw string) (string, error) {
		trimmed := strings.TrimSpace(raw)
		value, err := strconv.Atoi(trimmed)
		if err != nil {
			return "", fmt.Errorf("expected an integer, got %q", raw)
		}
		if value < min || value > max {
			return "", fmt.Errorf("value %d outside range %d..%d", value, min, max)
		}
		return strconv.Itoa(value), nil
	}
}

func portRule() Validator {
	return intRule(1, 65535)
}

func boolRule() Validator {
	return func(raw string) (string, error) {
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "true", "yes", "on", "1":
			return "true", nil
		case "false", "no", "off", "0":
			return "false", nil
		}
		return "", fmt.Errorf("expected a boolean, got %q", raw)
	}
}

func oneOfRule(allowed ...string) Validator {
	return func(raw string) (string, error) {
		value := strings.ToLower(strings.TrimSpace(raw))
		for _, candidate := range allowed {
			if value == candidate {
				return value, nil
			}
		}
		return "", fmt.Errorf("expected one of %s, got %q", strings.Join(allowed, "/"), raw)
	}
}

func pathRule() Validator {
	return func(raw string) (string, error) {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			return "", nil
		}
		return ExpandPath(trimmed)
	}
}
