// Package instance enforces single-instance execution through a process
// marker file.
//
// The marker holds the decimal pid of the running server. Its presence alone
// gates startup: no liveness check is made against the recorded process, so a
// marker left behind by a crashed instance keeps blocking until an operator
// removes the file. That limitation is deliberate and documented in the
// startup error text.
package instance

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"cadenza/internal/logging"
)

// ErrAlreadyRunning indicates the marker file already exists.
var ErrAlreadyRunning = errors.New("another instance appears to be running")

// Guard owns the marker file across acquire and release.
type Guard struct {
	path   string
	logger *slog.Logger
}

// New returns a guard for the marker at path.
func New(path string, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Guard{path: path, logger: logger}
}

// Path returns the marker file location.
func (g *Guard) Path() string {
	return g.path
}

// Acquire creates the marker file holding this process id. It fails with
// ErrAlreadyRunning when the marker exists, regardless of whether the
// recorded process is still alive.
func (g *Guard) Acquire() error {
	if _, err := os.Stat(g.path); err == nil {
		return fmt.Errorf("%w: marker file %s exists", ErrAlreadyRunning, g.path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat marker file: %w", err)
	}

	value := strconv.Itoa(os.Getpid()) + "\n"
	if err := os.WriteFile(g.path, []byte(value), 0o644); err != nil {
		return fmt.Errorf("write marker file: %w", err)
	}
	g.logger.Debug("instance marker created", logging.String("path", g.path))
	return nil
}

// Release removes the marker file. A missing marker is logged and ignored so
// the normal exit path and the signal path can both call Release safely.
func (g *Guard) Release() {
	err := os.Remove(g.path)
	switch {
	case err == nil:
		g.logger.Debug("instance marker removed", logging.String("path", g.path))
	case errors.Is(err, os.ErrNotExist):
		g.logger.Info("instance marker already gone", logging.String("path", g.path))
	default:
		g.logger.Warn("remove instance marker", logging.Error(err))
	}
}
