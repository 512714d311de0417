package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cadenza/internal/config"
)

func TestLoadFileFlattensSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
port = 9090
localhost_only = true

[media]
basedir = "/srv/music"

[general]
name = "den"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	snap, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if got := snap.String("server.port"); got != "9090" {
		t.Fatalf("server.port = %q, want %q", got, "9090")
	}
	if got := snap.String("server.localhost_only"); got != "true" {
		t.Fatalf("server.localhost_only = %q, want %q", got, "true")
	}
	if got := snap.String("media.basedir"); got != "/srv/music" {
		t.Fatalf("media.basedir = %q, want %q", got, "/srv/music")
	}
	if got := snap.String("general.name"); got != "den" {
		t.Fatalf("general.name = %q, want %q", got, "den")
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := config.LoadFile(filepath.Join(t.TempDir(), "absent.toml"))
	if err == nil {
		t.Fatal("LoadFile on a missing file should error")
	}
}

func TestLoadFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[server\nport ="), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := config.LoadFile(path); err == nil {
		t.Fatal("LoadFile on malformed TOML should error")
	}
}

func TestWriteFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	if err := config.WriteFile(config.Defaults(), path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	loaded, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile after write: %v", err)
	}
	for _, prop := range config.Defaults().Properties() {
		got, ok := loaded.Lookup(prop.Key)
		if !ok {
			t.Fatalf("key %s missing after round trip", prop.Key)
		}
		if got.Value != prop.Value {
			t.Fatalf("key %s = %q after round trip, want %q", prop.Key, got.Value, prop.Value)
		}
	}
}

func TestWriteFileUsesSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.WriteFile(config.Defaults(), path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "[server]") {
		t.Fatalf("expected a [server] section, got:\n%s", text)
	}
	if strings.Contains(text, "server.port") {
		t.Fatalf("expected sectioned keys, found dotted key in:\n%s", text)
	}
}
