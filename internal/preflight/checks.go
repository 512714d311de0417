// Package preflight runs advisory environment checks before the service
// layer starts. Results are logged, never fatal.
package preflight

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"cadenza/internal/logging"
)

// Result captures the outcome of one check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

const lowDiskGiB = 1

// Check inspects the media and data directories.
func Check(mediaDir, dataDir string) []Result {
	return []Result{
		checkMediaDir(mediaDir),
		checkDataDir(dataDir),
		checkDiskSpace(dataDir),
	}
}

func checkMediaDir(dir string) Result {
	const name = "media directory"
	if dir == "" {
		return Result{Name: name, Detail: "media.basedir is not set; the index will stay empty"}
	}
	info, err := os.Stat(dir)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("cannot read %s: %v", dir, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s is not a directory", dir)}
	}
	return Result{Name: name, Passed: true, Detail: dir}
}

func checkDataDir(dir string) Result {
	const name = "data directory"
	probe := filepath.Join(dir, ".write-probe")
	if err := os.WriteFile(probe, []byte("probe"), 0o644); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("not writable: %v", err)}
	}
	_ = os.Remove(probe)
	return Result{Name: name, Passed: true, Detail: dir}
}

func checkDiskSpace(dir string) Result {
	const name = "disk space"
	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("statfs %s: %v", dir, err)}
	}
	freeGiB := stat.Bavail * uint64(stat.Bsize) / (1 << 30)
	detail := fmt.Sprintf("%d GiB free at %s", freeGiB, dir)
	if freeGiB < lowDiskGiB {
		return Result{Name: name, Detail: detail + " (low)"}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// Log emits one line per result.
func Log(logger *slog.Logger, results []Result) {
	logger = logging.NewComponentLogger(logger, "preflight")
	for _, result := range results {
		if result.Passed {
			logger.Debug("preflight check passed",
				logging.String("check", result.Name), logging.String("detail", result.Detail))
			continue
		}
		logger.Warn("preflight check failed",
			logging.String("check", result.Name), logging.String("detail", result.Detail))
	}
}
