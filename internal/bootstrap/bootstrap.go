package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"cadenza/internal/config"
	"cadenza/internal/dbschema"
	"cadenza/internal/index"
	"cadenza/internal/instance"
	"cadenza/internal/logging"
	"cadenza/internal/preflight"
	"cadenza/internal/refresh"
	"cadenza/internal/server"
)

// ErrConsentRefused indicates the operator declined the schema update.
var ErrConsentRefused = errors.New("schema update refused")

// ServeFunc starts the service layer and blocks until shutdown.
type ServeFunc func(ctx context.Context, cfg config.Snapshot, engine *index.Engine, dataDir, version string, logger *slog.Logger) error

// Options carries the CLI intents and the injected collaborators.
type Options struct {
	ConfigPath      string            // alternate config file; "" uses the default location
	DataDir         string            // alternate data directory; "" uses the default location
	Overrides       map[string]string // highest configuration layer, from --set flags
	Refresh         refresh.Request
	RebuildDatabase bool // drop the index and force a full refresh
	SetupOnly       bool // stop after launching the refresh, do not serve
	WriteNewConfig  bool // write a pristine defaults file and exit
	Version         string

	// Consent decides whether pending schema migrations may run. It is
	// invoked at most once and may block on interactive input.
	Consent func(reasons []string) bool

	// Serve replaces the service layer; tests inject fakes here.
	Serve ServeFunc

	// Stdout receives the operator-facing contract messages.
	Stdout io.Writer
}

type orchestrator struct {
	opts   Options
	out    io.Writer
	logger *slog.Logger
	state  State
}

// Run drives the startup sequence and blocks until shutdown or abort. A nil
// return means a clean or informational exit; sentinel errors describe the
// fatal-before-start conditions.
func Run(ctx context.Context, opts Options) error {
	out := opts.Stdout
	if out == nil {
		out = os.Stdout
	}
	bootLogger, err := logging.New(logging.Options{})
	if err != nil {
		return err
	}
	o := &orchestrator{opts: opts, out: out, logger: bootLogger, state: StateInit}
	return o.run(ctx)
}

func (o *orchestrator) to(next State) {
	o.logger.Debug("startup state", logging.String("state", next.String()))
	o.state = next
}

func (o *orchestrator) run(ctx context.Context) error {
	cfgPath := o.opts.ConfigPath
	if cfgPath == "" {
		var err error
		cfgPath, err = config.DefaultConfigPath()
		if err != nil {
			return err
		}
	}

	// Explicit create-config request and the first-run gate both exit after
	// producing output; neither is an error path.
	if o.opts.WriteNewConfig {
		target := cfgPath + ".new"
		if err := config.WriteFile(config.Defaults(), target); err != nil {
			return err
		}
		fmt.Fprintf(o.out, newConfigMessage, target)
		o.to(StateAborted)
		return nil
	}
	if _, err := os.Stat(cfgPath); errors.Is(err, os.ErrNotExist) {
		if err := config.WriteFile(config.Defaults(), cfgPath); err != nil {
			return err
		}
		fmt.Fprintf(o.out, welcomeMessage, o.opts.Version, cfgPath)
		o.to(StateAborted)
		return nil
	} else if err != nil {
		return fmt.Errorf("stat config file: %w", err)
	}

	dataDir := o.opts.DataDir
	if dataDir == "" {
		var err error
		dataDir, err = config.DefaultDataDir()
		if err != nil {
			return err
		}
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	signalCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	guard := instance.New(filepath.Join(dataDir, "cadenza.pid"), o.logger)
	if err := guard.Acquire(); err != nil {
		if errors.Is(err, instance.ErrAlreadyRunning) {
			fmt.Fprintf(o.out, markerConflictMessage, guard.Path())
			o.to(StateAborted)
		}
		return err
	}
	o.to(StateGuardAcquired)
	defer func() {
		guard.Release()
		o.to(StateGuardReleased)
	}()

	cfg, err := o.resolveConfig(cfgPath, dataDir)
	if err != nil {
		return err
	}
	o.to(StateConfigResolved)

	preflight.Log(o.logger, preflight.Check(cfg.String("media.basedir"), dataDir))

	request := o.opts.Refresh
	dbPath := filepath.Join(dataDir, "index.db")
	if o.opts.RebuildDatabase {
		// The explicit rebuild action is the consent; the gate is bypassed.
		if err := dbschema.Reset(dbPath); err != nil {
			return err
		}
		request = refresh.Full()
		o.logger.Info("index database dropped, forcing full refresh")
	}

	store, err := dbschema.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	ready, err := store.EnsureCurrent(signalCtx, o.consent(store.Path()))
	if err != nil {
		return err
	}
	if !ready {
		o.logger.Info("database schema update aborted, quitting")
		o.to(StateAborted)
		return ErrConsentRefused
	}
	o.to(StateSchemaChecked)

	engine := index.New(store, cfg.String("media.basedir"), o.logger)
	refresh.Launch(o.logger, engine, request)
	o.to(StateRefreshLaunched)

	if o.opts.SetupOnly {
		// Setup-only mode hands off without serving and without waiting for
		// the refresh; the task lives only as long as the process does.
		o.logger.Info("setup complete, not starting the service layer")
		return nil
	}

	serve := o.opts.Serve
	if serve == nil {
		serve = func(ctx context.Context, cfg config.Snapshot, engine *index.Engine, dataDir, version string, logger *slog.Logger) error {
			return server.New(cfg, engine, dataDir, version, logger).Start(ctx)
		}
	}
	o.to(StateServiceStarted)
	if err := serve(signalCtx, cfg, engine, dataDir, o.opts.Version, o.logger); err != nil {
		return err
	}

	o.to(StateShuttingDown)
	fmt.Fprintln(o.out, "Exiting...")
	return nil
}

// resolveConfig merges defaults, the persisted file, and CLI overrides, then
// rebuilds the logger from the effective snapshot so the rest of startup logs
// with the configured level, format, and file output.
func (o *orchestrator) resolveConfig(cfgPath, dataDir string) (config.Snapshot, error) {
	persisted, err := config.LoadFile(cfgPath)
	if err != nil {
		return config.Snapshot{}, err
	}

	overrideProps := make([]config.Property, 0, len(o.opts.Overrides))
	for key, value := range o.opts.Overrides {
		overrideProps = append(overrideProps, config.Property{Key: key, Value: value})
	}
	override := config.NewSnapshot(overrideProps...)

	type mergeError struct {
		key string
		err error
	}
	var mergeErrors []mergeError
	defaults := config.Defaults()
	effective, diag := config.Resolve(defaults, persisted, override, func(key string, err error) {
		mergeErrors = append(mergeErrors, mergeError{key: key, err: err})
	})

	logger, err := logging.New(logging.Options{
		Level:            effective.String("general.log_level"),
		Format:           effective.String("general.log_format"),
		OutputPaths:      []string{"stdout", filepath.Join(dataDir, "cadenza.log")},
		ErrorOutputPaths: []string{"stderr", filepath.Join(dataDir, "cadenza.log")},
	})
	if err != nil {
		return config.Snapshot{}, err
	}
	o.logger = logger

	for _, bad := range mergeErrors {
		logger.Error("configuration value rejected, keeping previous layer",
			logging.String(logging.FieldKey, bad.key), logging.Error(bad.err))
	}
	for _, key := range diag.NewKeys {
		logger.Info("new configuration option available, using default",
			logging.String(logging.FieldKey, key))
	}
	for _, key := range diag.DeprecatedKeys {
		logger.Info("configuration option is not used anymore",
			logging.String(logging.FieldKey, key))
	}
	if len(diag.NewKeys) > 0 || len(diag.DeprecatedKeys) > 0 {
		logger.Info("start with --new-config to write a fresh default file next to your current one")
	}
	return effective, nil
}

// consent wraps the injected callback, defaulting to deny so non-interactive
// deployments never migrate silently.
func (o *orchestrator) consent(dbPath string) func(reasons []string) bool {
	return func(reasons []string) bool {
		if o.opts.Consent == nil {
			o.logger.Warn("schema update required but no consent handler is available, refusing",
				logging.String("database", dbPath))
			return false
		}
		return o.opts.Consent(reasons)
	}
}
