package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"subreel/internal/textutil"
)

// Record describes one ingested video and its extracted subtitle file.
type Record struct {
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Path         string `json:"path"`
	SubtitlePath string `json:"subtitle_path"`
}

// NewRecord builds a record whose slug is derived from name.
func NewRecord(name, path, subtitlePath string) Record {
	return Record{
		Name:         name,
		Slug:         textutil.Slug(name),
		Path:         path,
		SubtitlePath: subtitlePath,
	}
}

// Builder accumulates records in processing order. It is not safe for
// concurrent use; a run appends from a single goroutine.
type Builder struct {
	records []Record
	slugs   map[string]struct{}
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{slugs: make(map[string]struct{})}
}

// Append adds rec to the catalog and returns the stored record. When the slug
// is already taken a numeric suffix (-2, -3, ...) is added.
func (b *Builder) Append(rec Record) Record {
	if b.slugs == nil {
		b.slugs = make(map[string]struct{})
	}
	if rec.Slug == "" {
		rec.Slug = textutil.Slug(rec.Name)
	}
	rec.Slug = b.uniqueSlug(rec.Slug)
	b.slugs[rec.Slug] = struct{}{}
	b.records = append(b.records, rec)
	return rec
}

func (b *Builder) uniqueSlug(slug string) string {
	if _, taken := b.slugs[slug]; !taken {
		return slug
	}
	for n := 2; ; n++ {
		candidate := slug + "-" + strconv.Itoa(n)
		if _, taken := b.slugs[candidate]; !taken {
			return candidate
		}
	}
}

// Len reports the number of appended records.
func (b *Builder) Len() int {
	return len(b.records)
}

// Records returns a copy of the appended records in order.
func (b *Builder) Records() []Record {
	out := make([]Record, len(b.records))
	copy(out, b.records)
	return out
}

// Verify checks the invariants a persisted catalog must satisfy: slugs are
// unique and non-empty, subtitle files are not shared or aliased to the
// video, and every referenced file exists as a regular file.
func Verify(records []Record) error {
	var errs []error
	seen := make(map[string]string, len(records))
	subtitles := make(map[string]string, len(records))
	for _, rec := range records {
		if rec.Slug == "" {
			errs = append(errs, fmt.Errorf("%s: empty slug", rec.Name))
		} else if prev, dup := seen[rec.Slug]; dup {
			errs = append(errs, fmt.Errorf("slug %q shared by %s and %s", rec.Slug, prev, rec.Name))
		} else {
			seen[rec.Slug] = rec.Name
		}
		if prev, dup := subtitles[filepath.Clean(rec.SubtitlePath)]; dup && rec.SubtitlePath != "" {
			errs = append(errs, fmt.Errorf("subtitle %s shared by %s and %s", rec.SubtitlePath, prev, rec.Name))
		} else {
			subtitles[filepath.Clean(rec.SubtitlePath)] = rec.Name
		}
		if rec.Path != "" && filepath.Clean(rec.Path) == filepath.Clean(rec.SubtitlePath) {
			errs = append(errs, fmt.Errorf("%s: video and subtitle both reference %s", rec.Name, rec.Path))
		}
		if err := regularFile(rec.Path); err != nil {
			errs = append(errs, fmt.Errorf("%s: video: %w", rec.Name, err))
		}
		if err := regularFile(rec.SubtitlePath); err != nil {
			errs = append(errs, fmt.Errorf("%s: subtitle: %w", rec.Name, err))
		}
	}
	return errors.Join(errs...)
}

func regularFile(path string) error {
	if path == "" {
		return errors.New("path missing")
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", path)
	}
	return nil
}
