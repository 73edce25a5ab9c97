package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeMKVToolNix()
	if err := c.normalizeServer(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		key      string
		value    *string
		fallback string
	}{
		{"paths.source_dir", &c.Paths.SourceDir, defaultSourceDir},
		{"paths.work_dir", &c.Paths.WorkDir, defaultWorkDir},
		{"paths.catalog_file", &c.Paths.CatalogFile, defaultCatalogFile},
		{"paths.state_dir", &c.Paths.StateDir, defaultStateDir},
		{"paths.scratch_dir", &c.Paths.ScratchDir, ""},
		{"paths.log_dir", &c.Paths.LogDir, ""},
	}
	for _, field := range fields {
		if strings.TrimSpace(*field.value) == "" {
			*field.value = field.fallback
		}
		expanded, err := expandPath(*field.value)
		if err != nil {
			return fmt.Errorf("%s: %w", field.key, err)
		}
		*field.value = expanded
	}
	return nil
}

func (c *Config) normalizeMKVToolNix() {
	c.MKVToolNix.MkvmergeBinary = strings.TrimSpace(c.MKVToolNix.MkvmergeBinary)
	if c.MKVToolNix.MkvmergeBinary == "" {
		c.MKVToolNix.MkvmergeBinary = defaultMkvmergeBinary
	}
	c.MKVToolNix.MkvextractBinary = strings.TrimSpace(c.MKVToolNix.MkvextractBinary)
	if c.MKVToolNix.MkvextractBinary == "" {
		c.MKVToolNix.MkvextractBinary = defaultMkvextractBinary
	}
	ext := strings.TrimSpace(c.MKVToolNix.SubtitleExtension)
	if ext == "" {
		ext = defaultSubtitleExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	c.MKVToolNix.SubtitleExtension = strings.ToLower(ext)
}

func (c *Config) normalizeServer() error {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultServerBind
	}
	var err error
	if strings.TrimSpace(c.Server.PublicDir) == "" {
		c.Server.PublicDir = defaultPublicDir
	}
	if c.Server.PublicDir, err = expandPath(c.Server.PublicDir); err != nil {
		return fmt.Errorf("server.public_dir: %w", err)
	}
	if c.Server.IndexTemplate, err = expandPath(c.Server.IndexTemplate); err != nil {
		return fmt.Errorf("server.index_template: %w", err)
	}
	if strings.TrimSpace(c.Server.AssJSPath) == "" {
		c.Server.AssJSPath = defaultAssJSPath
	}
	if c.Server.AssJSPath, err = expandPath(c.Server.AssJSPath); err != nil {
		return fmt.Errorf("server.assjs_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	if value, ok := os.LookupEnv("SUBREEL_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
