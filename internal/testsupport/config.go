package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"subreel/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The source and scratch directories exist; the work directory and catalog
// do not.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.SourceDir = filepath.Join(base, "assets", "videos")
	cfgVal.Paths.WorkDir = filepath.Join(base, "assets", "video-files")
	cfgVal.Paths.CatalogFile = filepath.Join(base, "assets", "videos.json")
	cfgVal.Paths.ScratchDir = filepath.Join(base, "scratch")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = ""
	cfgVal.Server.Bind = "127.0.0.1:0"
	cfgVal.Server.PublicDir = filepath.Join(base, "public")
	cfgVal.Server.AssJSPath = filepath.Join(base, "node_modules", "assjs", "dist", "ass.js")

	for _, dir := range []string{cfgVal.Paths.SourceDir, cfgVal.Paths.ScratchDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithHistoryDisabled turns off the run ledger.
func WithHistoryDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}

// WithToolScripts writes fake mkvmerge and mkvextract shell scripts into the
// temp tree and points the config at them. Tests using it must skip on
// platforms without /bin/sh.
func WithToolScripts(mkvmerge, mkvextract string) ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		write := func(name, body string) string {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
			return target
		}
		b.cfg.MKVToolNix.MkvmergeBinary = write("mkvmerge", mkvmerge)
		b.cfg.MKVToolNix.MkvextractBinary = write("mkvextract", mkvextract)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.ScratchDir)
}
