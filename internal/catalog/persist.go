package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

// Persist verifies the accumulated records and writes them to path as one
// JSON array. The file is replaced atomically: readers observe either the
// previous catalog or the complete new one.
func (b *Builder) Persist(path string) error {
	records := b.Records()
	if err := Verify(records); err != nil {
		return fmt.Errorf("verify catalog: %w", err)
	}
	return Write(path, records)
}

// Write atomically replaces path with records encoded as indented JSON.
func Write(path string, records []Record) error {
	if path == "" {
		return errors.New("catalog path required")
	}
	if records == nil {
		records = []Record{}
	}
	data, err := Encode(records)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create catalog directory: %w", err)
		}
	}

	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending catalog file: %w", err)
	}
	defer func() {
		_ = pending.Cleanup()
	}()

	if _, err := pending.Write(data); err != nil {
		return fmt.Errorf("write catalog data: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace catalog: %w", err)
	}
	return nil
}

// Encode renders records the way they are stored on disk: a two-space
// indented array followed by a newline.
func Encode(records []Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("encode catalog: %w", err)
	}
	return buf.Bytes(), nil
}

// Load reads a persisted catalog.
func Load(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// Index maps slugs to records for lookup by the serving layer.
func Index(records []Record) map[string]Record {
	out := make(map[string]Record, len(records))
	for _, rec := range records {
		out[rec.Slug] = rec
	}
	return out
}
