package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Failure classifications. Every error returned by this package matches
// exactly one of them with errors.Is.
var (
	ErrScan          = errors.New("scan failed")
	ErrWorkDirectory = errors.New("work directory preparation failed")
	ErrProbe         = errors.New("probe failed")
	ErrTrackNotFound = errors.New("subtitle track not found")
	ErrExtraction    = errors.New("extraction failed")
	ErrRelocation    = errors.New("relocation failed")
	ErrPersist       = errors.New("catalog persistence failed")
	ErrLocked        = errors.New("work directory locked by another run")
)

// ErrCrossDevice marks a relocation that failed because the scratch and work
// directories live on different filesystems.
var ErrCrossDevice = errors.New("scratch and work directories are on different filesystems")

// FileError reports a failure while processing one source entry.
type FileError struct {
	Kind error
	File string
	// Output is the raw tool output relevant to the failure, suitable for
	// showing to the operator verbatim.
	Output string
	Err    error
}

func (e *FileError) Error() string {
	var b strings.Builder
	kind := "ingest failed"
	if e.Kind != nil {
		kind = e.Kind.Error()
	}
	fmt.Fprintf(&b, "%s: %s", kind, e.File)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *FileError) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// Exit statuses reported by the CLI.
const (
	ExitSuccess    = 0
	ExitAborted    = 1
	ExitRelocation = 2
)

// ExitCode maps a pipeline error to the process exit status. Relocation
// failures get their own status because they indicate a filesystem fault
// rather than a bad input file.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrRelocation):
		return ExitRelocation
	default:
		return ExitAborted
	}
}

// Kind returns the classification marker of err, or nil when err did not
// originate in this package.
func Kind(err error) error {
	for _, kind := range []error{
		ErrScan, ErrWorkDirectory, ErrProbe, ErrTrackNotFound,
		ErrExtraction, ErrRelocation, ErrPersist, ErrLocked,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// KindName returns a stable identifier for err's classification, used for
// event types and the run history.
func KindName(err error) string {
	switch Kind(err) {
	case ErrScan:
		return "scan"
	case ErrWorkDirectory:
		return "work_directory"
	case ErrProbe:
		return "probe"
	case ErrTrackNotFound:
		return "track_not_found"
	case ErrExtraction:
		return "extraction"
	case ErrRelocation:
		return "relocation"
	case ErrPersist:
		return "persist"
	case ErrLocked:
		return "locked"
	}
	if err == nil {
		return ""
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "canceled"
	}
	return "unknown"
}

// Hint returns an operator-facing next step for err.
func Hint(err error) string {
	switch Kind(err) {
	case ErrScan:
		return "check that paths.source_dir exists and is readable"
	case ErrWorkDirectory:
		return "check permissions on paths.work_dir"
	case ErrProbe:
		return "verify the file is a readable Matroska container"
	case ErrTrackNotFound:
		return "the file has no subtitle track; remove it from the source directory"
	case ErrExtraction:
		return "inspect the mkvextract output above"
	case ErrRelocation:
		if errors.Is(err, ErrCrossDevice) {
			return "place paths.scratch_dir on the same filesystem as paths.work_dir"
		}
		return "check free space and permissions on paths.work_dir"
	case ErrPersist:
		return "check permissions on the catalog file directory"
	case ErrLocked:
		return "wait for the other ingest run to finish"
	}
	return "check logs for details"
}

// FailedFile returns the source entry named by a FileError in err's chain.
func FailedFile(err error) string {
	var fileErr *FileError
	if errors.As(err, &fileErr) {
		return fileErr.File
	}
	return ""
}

// ToolOutput returns the raw tool output attached to err, if any.
func ToolOutput(err error) string {
	var fileErr *FileError
	if errors.As(err, &fileErr) {
		return fileErr.Output
	}
	return ""
}
