package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"subreel/internal/config"
	"subreel/internal/testsupport"
)

const probeWithSubtitles = `printf "File '%s': container: Matroska\n" "$1"
printf "Track ID 0: video (MPEG-H/HEVC/H.265)\n"
printf "Track ID 1: audio (AAC)\n"
printf "Track ID 2: subtitles (SubStationAlpha)\n"
`

const probeWithoutSubtitles = `printf "File '%s': container: Matroska\n" "$1"
printf "Track ID 0: video (MPEG-H/HEVC/H.265)\n"
printf "Track ID 1: audio (AAC)\n"
`

// extractToFile writes the file named after "<id>:" in the third argument.
const extractToFile = `out="${3#*:}"
printf '[Script Info]\n' > "$out"
`

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	home := filepath.Join(testsupport.BaseDir(cfg), "home")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", home)

	configPath := filepath.Join(testsupport.BaseDir(cfg), "subreel.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath}
}

func setupToolEnv(t *testing.T, probe string) *cliTestEnv {
	t.Helper()
	requireShell(t)
	return setupCLITestEnv(t, testsupport.WithToolScripts(probe, extractToFile))
}

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake mkvtoolnix binaries are shell scripts")
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	var b strings.Builder
	fmt.Fprintf(&b, "[paths]\n")
	fmt.Fprintf(&b, "source_dir = %q\n", cfg.Paths.SourceDir)
	fmt.Fprintf(&b, "work_dir = %q\n", cfg.Paths.WorkDir)
	fmt.Fprintf(&b, "catalog_file = %q\n", cfg.Paths.CatalogFile)
	fmt.Fprintf(&b, "scratch_dir = %q\n", cfg.Paths.ScratchDir)
	fmt.Fprintf(&b, "state_dir = %q\n", cfg.Paths.StateDir)
	fmt.Fprintf(&b, "\n[mkvtoolnix]\n")
	fmt.Fprintf(&b, "mkvmerge_binary = %q\n", cfg.MKVToolNix.MkvmergeBinary)
	fmt.Fprintf(&b, "mkvextract_binary = %q\n", cfg.MKVToolNix.MkvextractBinary)
	fmt.Fprintf(&b, "strict_warnings = %t\n", cfg.MKVToolNix.StrictWarnings)
	fmt.Fprintf(&b, "\n[server]\n")
	fmt.Fprintf(&b, "bind = %q\n", cfg.Server.Bind)
	fmt.Fprintf(&b, "public_dir = %q\n", cfg.Server.PublicDir)
	fmt.Fprintf(&b, "assjs_path = %q\n", cfg.Server.AssJSPath)
	fmt.Fprintf(&b, "\n[history]\n")
	fmt.Fprintf(&b, "enabled = %t\n", cfg.History.Enabled)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
