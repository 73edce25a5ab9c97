package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the directories and files an ingest run reads and writes.
type Paths struct {
	SourceDir   string `toml:"source_dir"`
	WorkDir     string `toml:"work_dir"`
	CatalogFile string `toml:"catalog_file"`
	ScratchDir  string `toml:"scratch_dir"`
	StateDir    string `toml:"state_dir"`
	LogDir      string `toml:"log_dir"`
}

// MKVToolNix contains settings for the mkvmerge/mkvextract invocations.
type MKVToolNix struct {
	MkvmergeBinary    string `toml:"mkvmerge_binary"`
	MkvextractBinary  string `toml:"mkvextract_binary"`
	SubtitleExtension string `toml:"subtitle_extension"`
	// StrictWarnings treats exit status 1 (completed with warnings) as a failure.
	StrictWarnings bool `toml:"strict_warnings"`
	// TimeoutSeconds bounds each tool invocation. Zero disables the bound.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Server contains settings for the catalog HTTP server.
type Server struct {
	Bind          string `toml:"bind"`
	PublicDir     string `toml:"public_dir"`
	IndexTemplate string `toml:"index_template"`
	AssJSPath     string `toml:"assjs_path"`
}

// History contains settings for the ingest run ledger.
type History struct {
	Enabled bool `toml:"enabled"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for subreel.
//
// Configuration sections by subsystem:
//   - Paths: source videos, managed work directory, catalog file, state
//   - MKVToolNix: probe/extract binaries and exit status policy
//   - Server: bind address and static assets for `subreel serve`
//   - History: SQLite run ledger
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	MKVToolNix MKVToolNix `toml:"mkvtoolnix"`
	Server     Server     `toml:"server"`
	History    History    `toml:"history"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	path, err := expandPath("~/.config/subreel/config.toml")
	if err != nil {
		return "", err
	}
	return filepath.Abs(path)
}

// Load locates, parses, and validates a configuration file. It returns the
// normalized config, the path that was considered, and whether that file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if strings.TrimSpace(path) != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", false, fmt.Errorf("config file %s does not exist", expanded)
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("subreel.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories. The work directory
// is deliberately left alone: it is owned by the ingest run.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// HistoryDBPath returns the location of the run ledger database.
func (c *Config) HistoryDBPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// LockPath returns the advisory lock file guarding the work directory.
func (c *Config) LockPath() string {
	return filepath.Clean(c.Paths.WorkDir) + ".lock"
}

// ToolTimeout returns the per-invocation bound for mkvtoolnix commands.
func (c *Config) ToolTimeout() time.Duration {
	if c.MKVToolNix.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.MKVToolNix.TimeoutSeconds) * time.Second
}

// expandPath resolves a leading tilde and cleans the path. Relative paths stay
// relative to the process working directory so catalog entries remain portable
// with the project tree.
func expandPath(pathValue string) (string, error) {
	pathValue = strings.TrimSpace(pathValue)
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	return filepath.Clean(pathValue), nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
