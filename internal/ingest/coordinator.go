package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"subreel/internal/catalog"
	"subreel/internal/logging"
	"subreel/internal/services"
	"subreel/internal/services/mkvtoolnix"
)

// Toolchain is the subset of the mkvtoolnix client the coordinator drives.
type Toolchain interface {
	Identify(ctx context.Context, input string) (mkvtoolnix.Result, error)
	ExtractTrack(ctx context.Context, dir, input string, trackID int, output string) (mkvtoolnix.Result, error)
}

// CoordinatorOptions configures a Coordinator.
type CoordinatorOptions struct {
	SourceDir string
	WorkDir   string
	// ScratchDir is where the extraction tool writes its output before it is
	// moved into WorkDir. Empty means the process working directory.
	ScratchDir        string
	SubtitleExtension string
	Logger            *slog.Logger
}

// Coordinator turns one source entry into a catalog record by probing it,
// locating its subtitle track, extracting that track and moving the result
// into the work directory.
type Coordinator struct {
	tools      Toolchain
	sourceDir  string
	workDir    string
	scratchDir string
	extension  string
	logger     *slog.Logger
	rename     func(oldpath, newpath string) error
}

// NewCoordinator constructs a coordinator around tools.
func NewCoordinator(tools Toolchain, opts CoordinatorOptions) *Coordinator {
	ext := strings.TrimSpace(opts.SubtitleExtension)
	if ext == "" {
		ext = ".ass"
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	scratch := strings.TrimSpace(opts.ScratchDir)
	if scratch == "" {
		scratch = "."
	}
	return &Coordinator{
		tools:      tools,
		sourceDir:  opts.SourceDir,
		workDir:    opts.WorkDir,
		scratchDir: scratch,
		extension:  ext,
		logger:     logging.NewComponentLogger(opts.Logger, "coordinator"),
		rename:     os.Rename,
	}
}

// SubtitleName derives the extracted subtitle file name for a source entry by
// replacing its extension.
func SubtitleName(name, extension string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + extension
}

// Process runs the probe, locate, extract and relocate steps for name and
// returns the resulting record. Any failure is reported as a *FileError.
func (c *Coordinator) Process(ctx context.Context, name string) (catalog.Record, error) {
	sourcePath := filepath.Join(c.sourceDir, name)
	input, err := filepath.Abs(sourcePath)
	if err != nil {
		return catalog.Record{}, &FileError{Kind: ErrProbe, File: name, Err: err}
	}
	attrs := append(services.LogAttrs(ctx), logging.String(logging.FieldFile, name))
	logger := c.logger.With(logging.Args(attrs...)...)

	probeCtx := services.WithStage(ctx, "probe")
	probe, err := c.tools.Identify(probeCtx, input)
	if err != nil {
		return catalog.Record{}, &FileError{Kind: ErrProbe, File: name, Output: diagnostic(probe, err), Err: err}
	}

	trackID, ok := mkvtoolnix.SubtitleTrackID(probe.Stdout)
	if !ok {
		return catalog.Record{}, &FileError{
			Kind:   ErrTrackNotFound,
			File:   name,
			Output: probe.Stdout,
			Err:    errors.New("mkvmerge listed no subtitles track"),
		}
	}
	logger.Debug("subtitle track located", logging.Int("track_id", trackID))

	subtitle := SubtitleName(name, c.extension)
	scratch, err := filepath.Abs(c.scratchDir)
	if err != nil {
		return catalog.Record{}, &FileError{Kind: ErrExtraction, File: name, Err: err}
	}
	extractCtx := services.WithStage(ctx, "extract")
	extracted, err := c.tools.ExtractTrack(extractCtx, scratch, input, trackID, subtitle)
	if err != nil {
		return catalog.Record{}, &FileError{Kind: ErrExtraction, File: name, Output: diagnostic(extracted, err), Err: err}
	}
	if s := strings.TrimSpace(extracted.Stderr); s != "" {
		logging.WarnWithContext(logger, "mkvextract reported warnings", "extract_warnings",
			logging.String("stderr", s),
			logging.String(logging.FieldImpact, "subtitle extracted; output may be incomplete"),
		)
	}

	target := filepath.Join(c.workDir, subtitle)
	if err := c.relocate(filepath.Join(scratch, subtitle), target); err != nil {
		return catalog.Record{}, &FileError{Kind: ErrRelocation, File: name, Err: err}
	}

	logger.Debug("subtitle relocated", logging.String("subtitle_path", target))
	return catalog.NewRecord(name, sourcePath, target), nil
}

func (c *Coordinator) relocate(from, to string) error {
	if _, err := os.Lstat(to); err == nil {
		return fmt.Errorf("%s already exists; another entry produced the same subtitle name", to)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("inspect %s: %w", to, err)
	}
	if err := c.rename(from, to); err != nil {
		if errors.Is(err, unix.EXDEV) {
			return fmt.Errorf("move %s to %s: %w: %w", from, to, ErrCrossDevice, err)
		}
		return fmt.Errorf("move %s to %s: %w", from, to, err)
	}
	return nil
}

func diagnostic(result mkvtoolnix.Result, err error) string {
	var cmdErr *mkvtoolnix.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Diagnostic()
	}
	if s := strings.TrimSpace(result.Stderr); s != "" {
		return s
	}
	return strings.TrimSpace(result.Stdout)
}
