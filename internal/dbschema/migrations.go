package dbschema

import (
	"embed"
	"fmt"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const reasonPrefix = "-- reason:"

type migration struct {
	name   string
	reason string
	sql    string
}

func loadMigrations() ([]migration, error) {
	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	migrations := make([]migration, 0, len(names))
	for _, name := range names {
		data, err := migrationFS.ReadFile("migrations/" + name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		text := string(data)
		migrations = append(migrations, migration{
			name:   strings.TrimSuffix(name, ".sql"),
			reason: parseReason(text),
			sql:    text,
		})
	}
	return migrations, nil
}

// parseReason extracts the operator-facing explanation from the migration's
// leading comment. Migrations without one fall back to their file name.
func parseReason(text string) string {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, reasonPrefix) {
			return strings.TrimSpace(strings.TrimPrefix(trimmed, reasonPrefix))
		}
		break
	}
	return ""
}
