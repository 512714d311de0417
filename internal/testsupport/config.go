package testsupport

import (
	"testing"

	"cadenza/internal/config"
)

// Effective resolves the default configuration with the provided overrides
// applied as the top layer. Merge errors fail the test.
func Effective(t testing.TB, overrides map[string]string) config.Snapshot {
	t.Helper()

	props := make([]config.Property, 0, len(overrides))
	for key, value := range overrides {
		props = append(props, config.Property{Key: key, Value: value})
	}
	effective, _ := config.Resolve(config.Defaults(), config.NewSnapshot(), config.NewSnapshot(props...),
		func(key string, err error) {
			t.Fatalf("override %s rejected: %v", key, err)
		})
	return effective
}
