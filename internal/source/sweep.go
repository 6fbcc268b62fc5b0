package source

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"vidmeta/internal/logging"
)

const lockFileName = ".vidmeta.lock"

// SweepResult contains the outcome of a scratch sweep.
type SweepResult struct {
	Removed []string
	Errors  []SweepError
	// Skipped is set when an active run held the directory.
	Skipped bool
}

// SweepError pairs a file path with its cleanup error.
type SweepError struct {
	Path  string
	Error error
}

// Claim holds a shared lock on a scratch directory for the life of a run.
type Claim struct {
	lock *flock.Flock
}

// ClaimDir takes a shared lock on dir, waiting for any sweep in progress.
func ClaimDir(dir string) (*Claim, error) {
	lock, err := openLock(dir)
	if err != nil {
		return nil, err
	}
	if err := lock.RLock(); err != nil {
		return nil, fmt.Errorf("lock scratch dir: %w", err)
	}
	return &Claim{lock: lock}, nil
}

// Release drops the shared lock.
func (c *Claim) Release() error {
	if c == nil || c.lock == nil {
		return nil
	}
	return c.lock.Unlock()
}

// Sweep removes scratch files in dir older than maxAge. It does nothing when
// another process holds a claim on the directory.
func Sweep(dir string, maxAge time.Duration, logger *slog.Logger) SweepResult {
	result := SweepResult{}

	dir = strings.TrimSpace(dir)
	if dir == "" {
		return result
	}
	if _, err := os.Stat(dir); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			result.Errors = append(result.Errors, SweepError{Path: dir, Error: err})
		}
		return result
	}

	lock, err := openLock(dir)
	if err != nil {
		result.Errors = append(result.Errors, SweepError{Path: dir, Error: err})
		return result
	}
	locked, err := lock.TryLock()
	if err != nil {
		result.Errors = append(result.Errors, SweepError{Path: dir, Error: err})
		return result
	}
	if !locked {
		result.Skipped = true
		if logger != nil {
			logger.Info("scratch sweep skipped; directory in use",
				logging.String("path", dir),
				logging.String(logging.FieldEventType, "scratch_sweep_skipped"),
			)
		}
		return result
	}
	defer func() { _ = lock.Unlock() }()

	entries, err := os.ReadDir(dir)
	if err != nil {
		result.Errors = append(result.Errors, SweepError{Path: dir, Error: err})
		return result
	}

	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), scratchPrefix) {
			continue
		}
		filePath := filepath.Join(dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, SweepError{Path: filePath, Error: err})
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filePath); err != nil {
			result.Errors = append(result.Errors, SweepError{Path: filePath, Error: err})
			logging.WarnWithContext(logger, "failed to remove stale scratch file", "scratch_cleanup_failed",
				logging.String("path", filePath),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check scratch_dir permissions"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
			continue
		}
		result.Removed = append(result.Removed, filePath)
		if logger != nil {
			logger.Info("removed stale scratch file",
				logging.String("path", filePath),
				logging.Duration("age", time.Since(info.ModTime())),
				logging.String(logging.FieldEventType, "scratch_cleanup"),
			)
		}
	}
	return result
}

func openLock(dir string) (*flock.Flock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	return flock.New(filepath.Join(dir, lockFileName)), nil
}
