package preflight

import (
	"path/filepath"
	"strings"

	"vidmeta/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckFFprobe(cfg),
		CheckCreatableDirectory("Scratch directory", cfg.Paths.ScratchDir),
	}
	if cfg.Logging.ToFile {
		results = append(results, CheckCreatableDirectory("Log directory", cfg.Paths.LogDir))
	}
	if cfg.History.Enabled && strings.TrimSpace(cfg.Paths.HistoryPath) != "" {
		results = append(results, CheckCreatableDirectory("History directory", filepath.Dir(cfg.Paths.HistoryPath)))
	}
	return results
}

// FirstFailure returns the first failing result, if any.
func FirstFailure(results []Result) (Result, bool) {
	for _, result := range results {
		if !result.Passed {
			return result, true
		}
	}
	return Result{}, false
}
