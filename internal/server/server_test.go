package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"cadenza/internal/index"
	"cadenza/internal/logging"
	"cadenza/internal/testsupport"
)

func newTestServer(t *testing.T, overrides map[string]string) *Server {
	t.Helper()

	store, _ := testsupport.MustOpenStore(t)
	media := testsupport.MediaTree(t, t.TempDir(),
		"first_song.mp3",
		"second_song.mp3",
	)
	if overrides == nil {
		overrides = map[string]string{}
	}
	if _, ok := overrides["media.basedir"]; !ok {
		overrides["media.basedir"] = media
	}
	cfg := testsupport.Effective(t, overrides)

	engine := index.New(store, cfg.String("media.basedir"), logging.NewNop())
	if err := engine.FullUpdate(context.Background()); err != nil {
		t.Fatalf("FullUpdate: %v", err)
	}
	return New(cfg, engine, t.TempDir(), "test", logging.NewNop())
}

func TestBindAddress(t *testing.T) {
	cases := []struct {
		name      string
		overrides map[string]string
		wantAddr  string
		wantTLS   bool
	}{
		{
			name:     "defaults",
			wantAddr: "0.0.0.0:8080",
		},
		{
			name:      "localhost only",
			overrides: map[string]string{"server.localhost_only": "true"},
			wantAddr:  "localhost:8080",
		},
		{
			name:      "ipv6",
			overrides: map[string]string{"server.ipv6_enabled": "true"},
			wantAddr:  "[::]:8080",
		},
		{
			name:      "ssl uses ssl port",
			overrides: map[string]string{"server.ssl_enabled": "true"},
			wantAddr:  "0.0.0.0:8443",
			wantTLS:   true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(t, tc.overrides)
			addr, tls := srv.bindAddress()
			if addr != tc.wantAddr {
				t.Errorf("addr = %q, want %q", addr, tc.wantAddr)
			}
			if tls != tc.wantTLS {
				t.Errorf("tls = %v, want %v", tls, tc.wantTLS)
			}
			if _, _, err := net.SplitHostPort(addr); err != nil {
				t.Errorf("addr %q is not a valid host:port: %v", addr, err)
			}
		})
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	srv.router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var payload struct {
		Name    string `json:"name"`
		Version string `json:"version"`
		Tracks  int64  `json:"tracks"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode status payload: %v", err)
	}
	if payload.Name != "cadenza" {
		t.Errorf("name = %q, want %q", payload.Name, "cadenza")
	}
	if payload.Version != "test" {
		t.Errorf("version = %q, want %q", payload.Version, "test")
	}
	if payload.Tracks != 2 {
		t.Errorf("tracks = %d, want 2", payload.Tracks)
	}
}

func TestSearchEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	srv.router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/search?q=first", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var tracks []index.Track
	if err := json.NewDecoder(rec.Body).Decode(&tracks); err != nil {
		t.Fatalf("decode search payload: %v", err)
	}
	if len(tracks) != 1 {
		t.Fatalf("got %d tracks, want 1", len(tracks))
	}
	if tracks[0].Title != "First Song" {
		t.Errorf("title = %q, want %q", tracks[0].Title, "First Song")
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	srv.router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/search", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRootpathPrefix(t *testing.T) {
	srv := newTestServer(t, map[string]string{"server.rootpath": "/music"})
	router := srv.router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/music/api/status", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("prefixed status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	if rec.Code == http.StatusOK {
		t.Fatal("unprefixed route should not resolve when rootpath is set")
	}
}

func TestServeStaticFiles(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	srv.router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/serve/first_song.mp3", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("static file status = %d, want 200", rec.Code)
	}
	if rec.Body.Len() == 0 {
		t.Fatal("static file served empty body")
	}
}

func TestEnsureSessionDir(t *testing.T) {
	srv := newTestServer(t, nil)
	if err := srv.ensureSessionDir(); err != nil {
		t.Fatalf("ensureSessionDir: %v", err)
	}
	if _, err := os.Stat(filepath.Join(srv.dataDir, "sessions")); err != nil {
		t.Fatalf("session directory missing: %v", err)
	}
}

func TestEnsureSessionDirSkippedInRAMMode(t *testing.T) {
	srv := newTestServer(t, map[string]string{"server.keep_session_in_ram": "true"})
	if err := srv.ensureSessionDir(); err != nil {
		t.Fatalf("ensureSessionDir: %v", err)
	}
	if _, err := os.Stat(filepath.Join(srv.dataDir, "sessions")); !os.IsNotExist(err) {
		t.Fatal("session directory created despite keep_session_in_ram")
	}
}
