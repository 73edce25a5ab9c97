package deps

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestCheckBinaries(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs not supported on windows")
	}
	binDir := t.TempDir()
	present := filepath.Join(binDir, "mkvmerge")
	if err := os.WriteFile(present, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	notExecutable := filepath.Join(binDir, "mkvextract")
	if err := os.WriteFile(notExecutable, []byte("plain file"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	tests := []struct {
		req        Requirement
		available  bool
		wantPath   string
		wantDetail string
	}{
		{req: Requirement{Name: "present", Command: present}, available: true, wantPath: present},
		{req: Requirement{Name: "missing", Command: "clearly-not-present-binary"}, wantDetail: `binary "clearly-not-present-binary" not found`},
		{req: Requirement{Name: "not executable", Command: notExecutable}, wantDetail: `binary "` + notExecutable + `" not found`},
		{req: Requirement{Name: "blank", Command: "  "}, wantDetail: "command not configured"},
	}

	reqs := make([]Requirement, len(tests))
	for i, tt := range tests {
		reqs[i] = tt.req
	}
	results := CheckBinaries(reqs)
	if len(results) != len(tests) {
		t.Fatalf("expected %d results, got %d", len(tests), len(results))
	}
	for i, tt := range tests {
		got := results[i]
		if got.Name != tt.req.Name {
			t.Fatalf("result %d out of order: %q", i, got.Name)
		}
		if got.Available != tt.available || got.Path != tt.wantPath || got.Detail != tt.wantDetail {
			t.Fatalf("%s: got %#v", tt.req.Name, got)
		}
	}
}

func TestMissingSkipsOptional(t *testing.T) {
	statuses := []Status{
		{Requirement: Requirement{Name: "a"}, Available: true},
		{Requirement: Requirement{Name: "b"}},
		{Requirement: Requirement{Name: "c", Optional: true}},
	}
	missing := Missing(statuses)
	if len(missing) != 1 || missing[0].Name != "b" {
		t.Fatalf("unexpected missing set: %#v", missing)
	}
}

func TestDescribe(t *testing.T) {
	got := Describe([]Status{
		{Requirement: Requirement{Name: "mkvmerge"}, Detail: `binary "mkvmerge" not found`},
		{Requirement: Requirement{Name: "mkvextract"}},
	})
	want := `mkvmerge (binary "mkvmerge" not found), mkvextract`
	if got != want {
		t.Fatalf("Describe = %q, want %q", got, want)
	}
}
