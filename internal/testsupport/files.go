package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// ebmlMagic opens every Matroska file.
var ebmlMagic = []byte{0x1a, 0x45, 0xdf, 0xa3}

// WriteFile creates path and any missing parents, holding size bytes that
// start with the Matroska EBML signature. Sizes smaller than the signature are
// raised to fit it.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	n := int(size)
	if n < len(ebmlMagic) {
		n = len(ebmlMagic)
	}
	data := append(append([]byte(nil), ebmlMagic...), bytes.Repeat([]byte{0x42}, n-len(ebmlMagic))...)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteSources creates one small video per name in dir and returns their
// paths in the same order.
func WriteSources(t testing.TB, dir string, names ...string) []string {
	t.Helper()
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
		WriteFile(t, paths[i], 64)
	}
	return paths
}
