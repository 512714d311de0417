// Package refresh launches the background index update task.
//
// The task is fire-and-forget: the caller gets no handle and never joins it.
// It runs to completion or process death, and any failure inside it is
// confined to its own logging boundary.
package refresh

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"cadenza/internal/logging"
)

// Engine is the slice of the index collaborator the refresher drives.
type Engine interface {
	FullUpdate(ctx context.Context) error
	PartialUpdate(ctx context.Context, targets ...string) error
}

// Request describes the refresh work decided at startup. It is constructed
// once from CLI intent and consumed exactly once by Launch.
type Request struct {
	full    bool
	targets []string
}

// None returns the zero request: no refresh.
func None() Request {
	return Request{}
}

// Full requests a rebuild of the entire index.
func Full() Request {
	return Request{full: true}
}

// Partial requests a rebuild scoped to the named targets. An empty target
// list degrades to the zero request.
func Partial(targets []string) Request {
	if len(targets) == 0 {
		return Request{}
	}
	cp := make([]string, len(targets))
	copy(cp, targets)
	return Request{targets: cp}
}

// IsZero reports whether the request asks for no work.
func (r Request) IsZero() bool {
	return !r.full && len(r.targets) == 0
}

// IsFull reports whether the request asks for a complete rebuild.
func (r Request) IsFull() bool {
	return r.full
}

// Targets returns the partial-update target list.
func (r Request) Targets() []string {
	cp := make([]string, len(r.targets))
	copy(cp, r.targets)
	return cp
}

func (r Request) String() string {
	switch {
	case r.full:
		return "full"
	case len(r.targets) > 0:
		return fmt.Sprintf("partial(%d targets)", len(r.targets))
	default:
		return "none"
	}
}

// Launch starts the refresh task on its own goroutine and returns
// immediately. A zero request is a no-op. Errors and panics inside the task
// are logged and never reach the caller.
func Launch(logger *slog.Logger, engine Engine, request Request) {
	if request.IsZero() {
		return
	}
	jobID := uuid.NewString()
	logger = logging.NewComponentLogger(logger, "refresh").With(logging.String(logging.FieldJobID, jobID))
	logger.Info("background refresh launched", logging.String("request", request.String()))

	go run(logger, engine, request)
}

func run(logger *slog.Logger, engine Engine, request Request) {
	defer func() {
		if recovered := recover(); recovered != nil {
			logger.Error("refresh task panicked", logging.Any("panic", recovered))
		}
	}()

	var err error
	if request.IsFull() {
		err = engine.FullUpdate(context.Background())
	} else {
		err = engine.PartialUpdate(context.Background(), request.Targets()...)
	}
	if err != nil {
		logger.Error("refresh task failed", logging.Error(err))
		return
	}
	logger.Info("background refresh finished")
}
