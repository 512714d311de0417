package preflight_test

import (
	"path/filepath"
	"strings"
	"testing"

	"cadenza/internal/logging"
	"cadenza/internal/preflight"
	"cadenza/internal/testsupport"
)

func resultByName(t *testing.T, results []preflight.Result, name string) preflight.Result {
	t.Helper()
	for _, result := range results {
		if result.Name == name {
			return result
		}
	}
	t.Fatalf("no result named %q in %v", name, results)
	return preflight.Result{}
}

func TestCheckHealthyDirectories(t *testing.T) {
	media := t.TempDir()
	data := t.TempDir()

	results := preflight.Check(media, data)
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for _, name := range []string{"media directory", "data directory", "disk space"} {
		if result := resultByName(t, results, name); !result.Passed {
			t.Errorf("%s failed: %s", name, result.Detail)
		}
	}
}

func TestCheckEmptyMediaDir(t *testing.T) {
	result := resultByName(t, preflight.Check("", t.TempDir()), "media directory")
	if result.Passed {
		t.Fatal("empty media.basedir should not pass")
	}
	if !strings.Contains(result.Detail, "media.basedir is not set") {
		t.Fatalf("detail = %q", result.Detail)
	}
}

func TestCheckMissingMediaDir(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent")
	result := resultByName(t, preflight.Check(missing, t.TempDir()), "media directory")
	if result.Passed {
		t.Fatal("missing media directory should not pass")
	}
}

func TestCheckMediaDirIsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.mp3")
	testsupport.WriteFile(t, path, 8)

	result := resultByName(t, preflight.Check(path, t.TempDir()), "media directory")
	if result.Passed {
		t.Fatal("a plain file should not pass as the media directory")
	}
}

func TestCheckUnwritableDataDir(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent")
	result := resultByName(t, preflight.Check(t.TempDir(), missing), "data directory")
	if result.Passed {
		t.Fatal("missing data directory should not be writable")
	}
}

func TestLogDoesNotPanic(t *testing.T) {
	preflight.Log(logging.NewNop(), preflight.Check(t.TempDir(), t.TempDir()))
}
