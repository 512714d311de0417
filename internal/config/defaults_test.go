package config_test

import (
	"testing"

	"cadenza/internal/config"
)

func TestDefaultsCoreKeys(t *testing.T) {
	defaults := config.Defaults()

	cases := []struct {
		key  string
		want string
	}{
		{"server.port", "8080"},
		{"server.ssl_enabled", "false"},
		{"server.ssl_port", "8443"},
		{"server.localhost_only", "false"},
		{"server.rootpath", "/"},
		{"media.basedir", ""},
		{"search.maxresults", "20"},
		{"browser.maxshowfiles", "100"},
		{"general.log_level", "info"},
	}
	for _, tc := range cases {
		if got := defaults.String(tc.key); got != tc.want {
			t.Errorf("%s = %q, want %q", tc.key, got, tc.want)
		}
	}
}

func TestDefaultsValidateThemselves(t *testing.T) {
	for _, prop := range config.Defaults().Properties() {
		if prop.Validate == nil {
			continue
		}
		if _, err := prop.Validate(prop.Value); err != nil {
			t.Errorf("default value for %s fails its own validator: %v", prop.Key, err)
		}
	}
}

func TestDefaultsHiddenKeys(t *testing.T) {
	defaults := config.Defaults()
	for _, key := range []string{"server.session_duration", "general.log_format"} {
		prop, ok := defaults.Lookup(key)
		if !ok {
			t.Fatalf("missing default %s", key)
		}
		if !prop.Hidden {
			t.Errorf("%s should be hidden", key)
		}
	}
}

func TestPortValidatorRange(t *testing.T) {
	prop, ok := config.Defaults().Lookup("server.port")
	if !ok {
		t.Fatal("missing server.port default")
	}

	if _, err := prop.Validate("0"); err == nil {
		t.Error("port 0 should be rejected")
	}
	if _, err := prop.Validate("70000"); err == nil {
		t.Error("port 70000 should be rejected")
	}
	if got, err := prop.Validate(" 8081 "); err != nil || got != "8081" {
		t.Errorf("Validate(\" 8081 \") = %q, %v, want 8081, nil", got, err)
	}
}

func TestBoolValidatorSpellings(t *testing.T) {
	prop, ok := config.Defaults().Lookup("media.fetch_album_art")
	if !ok {
		t.Fatal("missing media.fetch_album_art default")
	}

	for raw, want := range map[string]string{
		"yes": "true", "ON": "true", "1": "true",
		"no": "false", "Off": "false", "0": "false",
	} {
		got, err := prop.Validate(raw)
		if err != nil {
			t.Errorf("Validate(%q) error: %v", raw, err)
			continue
		}
		if got != want {
			t.Errorf("Validate(%q) = %q, want %q", raw, got, want)
		}
	}
	if _, err := prop.Validate("maybe"); err == nil {
		t.Error("Validate(\"maybe\") should fail")
	}
}
