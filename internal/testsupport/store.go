package testsupport

import (
	"testing"

	"subreel/internal/config"
	"subreel/internal/history"
)

// MustOpenHistory opens the run ledger at cfg's history path and closes it
// when the test ends.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("history.Open(%s): %v", cfg.HistoryDBPath(), err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close history: %v", err)
		}
	})
	return store
}
