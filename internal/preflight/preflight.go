package preflight

import (
	"subreel/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the filesystem checks an ingest run depends on.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	return []Result{
		CheckDirectoryReadable("Source directory", cfg.Paths.SourceDir),
		CheckCreatable("Work directory", cfg.Paths.WorkDir),
		CheckCreatable("Catalog directory", parentDir(cfg.Paths.CatalogFile)),
		CheckDirectoryAccess("Scratch directory", scratchDir(cfg)),
	}
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}

func scratchDir(cfg *config.Config) string {
	if cfg.Paths.ScratchDir != "" {
		return cfg.Paths.ScratchDir
	}
	return "."
}
