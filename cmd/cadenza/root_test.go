package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestBuildRefreshRequest(t *testing.T) {
	request, err := buildRefreshRequest(false, nil)
	if err != nil {
		t.Fatalf("buildRefreshRequest: %v", err)
	}
	if !request.IsZero() {
		t.Error("no flags should yield the zero request")
	}

	request, err = buildRefreshRequest(true, nil)
	if err != nil {
		t.Fatalf("buildRefreshRequest: %v", err)
	}
	if !request.IsFull() {
		t.Error("--refresh-all should yield the full request")
	}

	request, err = buildRefreshRequest(false, []string{"albums/x", "albums/y"})
	if err != nil {
		t.Fatalf("buildRefreshRequest: %v", err)
	}
	if got := request.Targets(); len(got) != 2 || got[0] != "albums/x" {
		t.Errorf("targets = %v, want [albums/x albums/y]", got)
	}

	if _, err := buildRefreshRequest(true, []string{"albums/x"}); err == nil {
		t.Error("combining --refresh-all with --refresh should fail")
	}
}

func TestParseOverrides(t *testing.T) {
	overrides, err := parseOverrides([]string{"server.port=9090", "media.basedir=/srv/music"})
	if err != nil {
		t.Fatalf("parseOverrides: %v", err)
	}
	if overrides["server.port"] != "9090" {
		t.Errorf("server.port = %q, want 9090", overrides["server.port"])
	}
	if overrides["media.basedir"] != "/srv/music" {
		t.Errorf("media.basedir = %q, want /srv/music", overrides["media.basedir"])
	}

	// Values may contain '='; only the first one splits.
	overrides, err = parseOverrides([]string{"general.name=a=b"})
	if err != nil {
		t.Fatalf("parseOverrides: %v", err)
	}
	if overrides["general.name"] != "a=b" {
		t.Errorf("general.name = %q, want a=b", overrides["general.name"])
	}

	if _, err := parseOverrides([]string{"noequals"}); err == nil {
		t.Error("a pair without '=' should fail")
	}
	if _, err := parseOverrides([]string{"=value"}); err == nil {
		t.Error("an empty key should fail")
	}
	if overrides, err := parseOverrides(nil); err != nil || overrides != nil {
		t.Errorf("parseOverrides(nil) = %v, %v, want nil, nil", overrides, err)
	}
}

func TestBuildOptionsCarriesFlags(t *testing.T) {
	flags := &rootFlags{
		configPath: "/etc/cadenza.toml",
		dataDir:    "/var/lib/cadenza",
		refreshAll: true,
		rebuild:    true,
		setupOnly:  true,
		overrides:  []string{"server.port=9090"},
	}

	opts, err := buildOptions(flags)
	if err != nil {
		t.Fatalf("buildOptions: %v", err)
	}
	if opts.ConfigPath != "/etc/cadenza.toml" {
		t.Errorf("ConfigPath = %q", opts.ConfigPath)
	}
	if opts.DataDir != "/var/lib/cadenza" {
		t.Errorf("DataDir = %q", opts.DataDir)
	}
	if !opts.Refresh.IsFull() {
		t.Error("Refresh should be full")
	}
	if !opts.RebuildDatabase || !opts.SetupOnly {
		t.Error("boolean intents not carried")
	}
	if opts.Overrides["server.port"] != "9090" {
		t.Errorf("override = %q", opts.Overrides["server.port"])
	}
	if opts.Consent == nil {
		t.Error("consent handler not wired")
	}
}

func TestVersionCommand(t *testing.T) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out.String(), "cadenza") {
		t.Fatalf("version output = %q", out.String())
	}
}

func TestRootRejectsConflictingRefreshFlags(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--refresh-all", "--refresh", "albums/x"})

	if err := cmd.Execute(); err == nil {
		t.Fatal("conflicting refresh flags should fail")
	}
}

func TestDatabaseLocation(t *testing.T) {
	if got := databaseLocation("/var/lib/cadenza"); got != "/var/lib/cadenza/index.db" {
		t.Fatalf("databaseLocation = %q", got)
	}
	if got := databaseLocation(""); got == "" {
		t.Fatal("databaseLocation with empty dataDir should still name a path")
	}
}
