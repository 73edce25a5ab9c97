package ingest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"subreel/internal/progress"
	"subreel/internal/services"
)

// PrepareWorkDir ensures dir exists and is empty, creating it when absent and
// removing every entry inside it otherwise. It returns the number of entries
// removed. Calling it twice in a row leaves dir empty both times.
func PrepareWorkDir(dir string, factory progress.Factory) (int, error) {
	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, services.Wrap(ErrWorkDirectory, "prepare", "create work directory", dir, err)
		}
		return 0, nil
	case err != nil:
		return 0, services.Wrap(ErrWorkDirectory, "prepare", "stat work directory", dir, err)
	case !info.IsDir():
		return 0, services.Wrap(ErrWorkDirectory, "prepare", "inspect work directory", fmt.Sprintf("%s is not a directory", dir), nil)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, services.Wrap(ErrWorkDirectory, "prepare", "list work directory", dir, err)
	}
	if len(entries) == 0 {
		return 0, nil
	}

	if factory == nil {
		factory = progress.NopFactory()
	}
	reporter := factory("Clearing Folder")
	reporter.Start(len(entries))
	defer reporter.Stop()

	removed := 0
	for _, entry := range entries {
		target := filepath.Join(dir, entry.Name())
		if err := os.RemoveAll(target); err != nil {
			return removed, services.Wrap(ErrWorkDirectory, "prepare", "remove stale entry", target, err)
		}
		removed++
		reporter.Increment()
	}
	return removed, nil
}
