// Package server is the service layer: it binds the network listener
// described by the effective configuration and serves the HTTP surface until
// shutdown. Startup orchestration treats it as an opaque collaborator.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"cadenza/internal/config"
	"cadenza/internal/index"
	"cadenza/internal/logging"
)

// Server hosts the HTTP surface for one effective configuration.
type Server struct {
	cfg     config.Snapshot
	engine  *index.Engine
	logger  *slog.Logger
	dataDir string
	version string
}

// New constructs a server bound to the effective configuration.
func New(cfg config.Snapshot, engine *index.Engine, dataDir, version string, logger *slog.Logger) *Server {
	return &Server{
		cfg:     cfg,
		engine:  engine,
		logger:  logging.NewComponentLogger(logger, "server"),
		dataDir: dataDir,
		version: version,
	}
}

// Start binds the listener per the configuration and blocks until ctx is
// cancelled, then shuts the server down gracefully.
func (s *Server) Start(ctx context.Context) error {
	if err := s.ensureSessionDir(); err != nil {
		return err
	}

	router := s.router()
	addr, tls := s.bindAddress()
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", logging.String("addr", addr), logging.Bool("tls", tls))
		var err error
		if tls {
			err = httpServer.ListenAndServeTLS(
				s.cfg.String("server.ssl_certificate"),
				s.cfg.String("server.ssl_private_key"),
			)
		} else {
			err = httpServer.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("shutdown", logging.Error(err))
	}
	return nil
}

// bindAddress derives the listen address from the localhost_only,
// ipv6_enabled, and ssl settings.
func (s *Server) bindAddress() (string, bool) {
	host := "0.0.0.0"
	if s.cfg.Bool("server.ipv6_enabled") {
		host = "::"
	}
	if s.cfg.Bool("server.localhost_only") {
		host = "localhost"
	}

	tls := s.cfg.Bool("server.ssl_enabled")
	port := s.cfg.Int("server.port")
	if tls {
		port = s.cfg.Int("server.ssl_port")
	}
	return net.JoinHostPort(host, strconv.Itoa(port)), tls
}

func (s *Server) router() *mux.Router {
	root := mux.NewRouter()
	router := root
	if rootpath := s.cfg.String("server.rootpath"); rootpath != "" && rootpath != "/" {
		router = root.PathPrefix(rootpath).Subrouter()
	}

	router.HandleFunc("/api/status", s.handleStatus).Methods(http.MethodGet)
	router.HandleFunc("/api/search", s.handleSearch).Methods(http.MethodGet)

	if baseDir := s.cfg.String("media.basedir"); baseDir != "" {
		router.PathPrefix("/serve/").Handler(
			http.StripPrefix(routePrefix(s.cfg.String("server.rootpath"), "/serve/"),
				http.FileServer(http.Dir(baseDir))))
	}
	return root
}

func routePrefix(rootpath, route string) string {
	if rootpath == "" || rootpath == "/" {
		return route
	}
	return rootpath + route
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	count, err := s.engine.Count(r.Context())
	if err != nil {
		s.logger.Warn("status query", logging.Error(err))
		http.Error(w, "index unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{
		"name":    s.cfg.String("general.name"),
		"version": s.version,
		"tracks":  count,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	if term == "" {
		http.Error(w, "missing query parameter q", http.StatusBadRequest)
		return
	}
	tracks, err := s.engine.Search(r.Context(), term, s.cfg.Int("search.maxresults"))
	if err != nil {
		s.logger.Warn("search query", logging.Error(err))
		http.Error(w, "search failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, tracks)
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

// ensureSessionDir scaffolds the on-disk session directory unless sessions
// are kept in RAM.
func (s *Server) ensureSessionDir() error {
	if s.cfg.Bool("server.keep_session_in_ram") {
		return nil
	}
	dir := filepath.Join(s.dataDir, "sessions")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}
	return nil
}
