package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"subreel/internal/catalog"
	"subreel/internal/ingest"
	"subreel/internal/testsupport"
)

func TestIngestWritesCatalog(t *testing.T) {
	env := setupToolEnv(t, probeWithSubtitles)
	testsupport.WriteSources(t, env.cfg.Paths.SourceDir, "Alpha Movie.mkv", "beta.mkv")

	out, _, err := runCLI(t, []string{"ingest"}, env.configPath)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	requireContains(t, out, "Successfully Loaded Videos")
	requireContains(t, out, "2 videos written to")

	records, err := catalog.Load(env.cfg.Paths.CatalogFile)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	want := []catalog.Record{
		{
			Name:         "Alpha Movie.mkv",
			Slug:         "alpha-movie-mkv",
			Path:         filepath.Join(env.cfg.Paths.SourceDir, "Alpha Movie.mkv"),
			SubtitlePath: filepath.Join(env.cfg.Paths.WorkDir, "Alpha Movie.ass"),
		},
		{
			Name:         "beta.mkv",
			Slug:         "beta-mkv",
			Path:         filepath.Join(env.cfg.Paths.SourceDir, "beta.mkv"),
			SubtitlePath: filepath.Join(env.cfg.Paths.WorkDir, "beta.ass"),
		},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Fatalf("catalog mismatch (-want +got):\n%s", diff)
	}
	for _, rec := range records {
		if _, err := os.Stat(rec.SubtitlePath); err != nil {
			t.Fatalf("subtitle %s missing: %v", rec.SubtitlePath, err)
		}
	}
}

func TestBareCommandRunsIngest(t *testing.T) {
	env := setupToolEnv(t, probeWithSubtitles)
	testsupport.WriteSources(t, env.cfg.Paths.SourceDir, "one.mkv")

	out, _, err := runCLI(t, nil, env.configPath)
	if err != nil {
		t.Fatalf("subreel: %v", err)
	}
	requireContains(t, out, "Successfully Loaded Videos")
	if _, err := os.Stat(env.cfg.Paths.CatalogFile); err != nil {
		t.Fatalf("expected catalog: %v", err)
	}
}

func TestIngestAbortLeavesCatalogUntouched(t *testing.T) {
	env := setupToolEnv(t, probeWithoutSubtitles)
	testsupport.WriteSources(t, env.cfg.Paths.SourceDir, "silent.mkv")

	previous := []byte("[]\n")
	if err := os.MkdirAll(filepath.Dir(env.cfg.Paths.CatalogFile), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(env.cfg.Paths.CatalogFile, previous, 0o644); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}

	out, stderr, err := runCLI(t, []string{"ingest"}, env.configPath)
	if !errors.Is(err, ingest.ErrTrackNotFound) {
		t.Fatalf("expected ErrTrackNotFound, got %v", err)
	}
	if code := ingest.ExitCode(err); code != ingest.ExitAborted {
		t.Fatalf("exit code = %d, want %d", code, ingest.ExitAborted)
	}
	if strings.Contains(out, "Successfully Loaded Videos") {
		t.Fatalf("unexpected success message in %q", out)
	}
	requireContains(t, stderr, "Track ID 1: audio (AAC)")
	requireContains(t, stderr, "Hint: the file has no subtitle track")

	got, err := os.ReadFile(env.cfg.Paths.CatalogFile)
	if err != nil {
		t.Fatalf("read catalog: %v", err)
	}
	if string(got) != string(previous) {
		t.Fatalf("catalog changed to %q", got)
	}
}

func TestIngestRejectsMissingTools(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.MKVToolNix.MkvmergeBinary = filepath.Join(testsupport.BaseDir(env.cfg), "missing", "mkvmerge")
	env.cfg.MKVToolNix.MkvextractBinary = filepath.Join(testsupport.BaseDir(env.cfg), "missing", "mkvextract")
	writeTestConfig(t, env.configPath, env.cfg)

	_, _, err := runCLI(t, []string{"ingest"}, env.configPath)
	if err == nil {
		t.Fatal("expected preflight error")
	}
	requireContains(t, err.Error(), "missing required tools")
	requireContains(t, err.Error(), "mkvmerge")
	if code := ingest.ExitCode(err); code != ingest.ExitAborted {
		t.Fatalf("exit code = %d, want %d", code, ingest.ExitAborted)
	}
	if _, err := os.Stat(env.cfg.Paths.WorkDir); !os.IsNotExist(err) {
		t.Fatalf("work directory should not be created, stat err=%v", err)
	}
}

func TestIngestRejectsConcurrentRun(t *testing.T) {
	env := setupToolEnv(t, probeWithSubtitles)

	lock, err := ingest.AcquireLock(env.cfg.LockPath())
	if err != nil {
		t.Fatalf("acquire lock: %v", err)
	}
	defer lock.Release()

	_, _, err = runCLI(t, []string{"ingest"}, env.configPath)
	if !errors.Is(err, ingest.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}

func TestHistoryRecordsRuns(t *testing.T) {
	env := setupToolEnv(t, probeWithSubtitles)
	testsupport.WriteSources(t, env.cfg.Paths.SourceDir, "ok.mkv")

	if _, _, err := runCLI(t, []string{"ingest"}, env.configPath); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "succeeded")
	requireContains(t, out, "1/1")
}

func TestHistoryRecordsFailure(t *testing.T) {
	env := setupToolEnv(t, probeWithoutSubtitles)
	testsupport.WriteSources(t, env.cfg.Paths.SourceDir, "bad.mkv")

	if _, _, err := runCLI(t, []string{"ingest"}, env.configPath); err == nil {
		t.Fatal("expected ingest failure")
	}

	out, _, err := runCLI(t, []string{"history", "--limit", "5"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "aborted")
	requireContains(t, out, "track_not_found (bad.mkv)")
}

func TestHistoryDisabled(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithHistoryDisabled())

	_, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err == nil {
		t.Fatal("expected error when history is disabled")
	}
	requireContains(t, err.Error(), "history.enabled = false")
}
