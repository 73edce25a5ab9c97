package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateMKVToolNix(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	source, err := absPath("paths.source_dir", c.Paths.SourceDir)
	if err != nil {
		return err
	}
	work, err := absPath("paths.work_dir", c.Paths.WorkDir)
	if err != nil {
		return err
	}
	if source == work {
		return errors.New("paths.work_dir must differ from paths.source_dir; the work directory is emptied on every run")
	}

	// The work directory is wiped before each run, so nothing else the run
	// depends on may live inside it. An empty scratch_dir means the current
	// directory.
	scratch := c.Paths.ScratchDir
	if scratch == "" {
		scratch = "."
	}
	nested := []struct {
		key  string
		path string
	}{
		{"paths.source_dir", c.Paths.SourceDir},
		{"paths.catalog_file", c.Paths.CatalogFile},
		{"paths.scratch_dir", scratch},
		{"paths.state_dir", c.Paths.StateDir},
		{"paths.log_dir", c.Paths.LogDir},
	}
	for _, n := range nested {
		if n.path == "" {
			continue
		}
		abs, err := absPath(n.key, n.path)
		if err != nil {
			return err
		}
		if isWithin(abs, work) {
			return fmt.Errorf("%s %q must not live inside paths.work_dir %q", n.key, n.path, c.Paths.WorkDir)
		}
	}
	return nil
}

func absPath(key, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s %q: %w", key, path, err)
	}
	return abs, nil
}

func (c *Config) validateMKVToolNix() error {
	if c.MKVToolNix.TimeoutSeconds < 0 {
		return errors.New("mkvtoolnix.timeout_seconds must be >= 0")
	}
	if strings.ContainsAny(c.MKVToolNix.SubtitleExtension, `/\:`) {
		return fmt.Errorf("mkvtoolnix.subtitle_extension %q must be a bare extension", c.MKVToolNix.SubtitleExtension)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

// isWithin reports whether path equals dir or is nested below it.
func isWithin(path, dir string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
