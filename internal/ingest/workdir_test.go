package ingest_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"subreel/internal/ingest"
	"subreel/internal/progress"
)

func TestPrepareWorkDirCreatesMissing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	removed, err := ingest.PrepareWorkDir(dir, nil)
	if err != nil {
		t.Fatalf("PrepareWorkDir returned error: %v", err)
	}
	if removed != 0 {
		t.Fatalf("removed = %d, want 0", removed)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("expected directory to exist, err=%v", err)
	}
}

func TestPrepareWorkDirIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "sub", "deeper"), 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"one.ass", ".hidden", filepath.Join("sub", "deeper", "two.ass")} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	for i := 0; i < 2; i++ {
		if _, err := ingest.PrepareWorkDir(dir, progress.NopFactory()); err != nil {
			t.Fatalf("call %d: PrepareWorkDir returned error: %v", i+1, err)
		}
		if entries := listDir(t, dir); len(entries) != 0 {
			t.Fatalf("call %d: expected empty directory, got %v", i+1, entries)
		}
	}
}

func TestPrepareWorkDirRejectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := ingest.PrepareWorkDir(path, nil)
	if !errors.Is(err, ingest.ErrWorkDirectory) {
		t.Fatalf("expected ErrWorkDirectory, got %v", err)
	}
	if ingest.ExitCode(err) != ingest.ExitAborted {
		t.Fatalf("exit code = %d, want %d", ingest.ExitCode(err), ingest.ExitAborted)
	}
}

func TestScanSourceOrdersEntries(t *testing.T) {
	l := newLayout(t, "c.mkv", "a.mkv", "b.mkv")
	if err := os.Mkdir(filepath.Join(l.source, "extras"), 0o755); err != nil {
		t.Fatal(err)
	}
	names, err := ingest.ScanSource(l.source)
	if err != nil {
		t.Fatalf("ScanSource returned error: %v", err)
	}
	want := []string{"a.mkv", "b.mkv", "c.mkv", "extras"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}
}

func TestScanSourceMissing(t *testing.T) {
	_, err := ingest.ScanSource(filepath.Join(t.TempDir(), "absent"))
	if !errors.Is(err, ingest.ErrScan) {
		t.Fatalf("expected ErrScan, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected underlying not-exist error, got %v", err)
	}
}
