package testsupport

import (
	"testing"

	"vidmeta/internal/config"
	"vidmeta/internal/history"
)

// MustOpenHistory opens the history store at cfg.Paths.HistoryPath and
// registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg.Paths.HistoryPath)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
