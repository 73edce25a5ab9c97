// Package ingest builds the video catalog from a directory of Matroska files.
//
// A run is strictly sequential and fail-fast:
//
//  1. ScanSource lists the source directory.
//  2. PrepareWorkDir creates or empties the managed work directory.
//  3. For each entry the Coordinator probes the file with mkvmerge, locates
//     the first subtitle track, extracts it with mkvextract and moves the
//     result into the work directory.
//  4. The catalog is persisted in a single atomic replace.
//
// The Pipeline drives these steps through an explicit state Machine. Any
// failure moves the machine to StateAborted, from which persistence is
// unreachable, so an aborted run leaves the previous catalog untouched.
// Errors carry a classification (ErrProbe, ErrRelocation, ...) that ExitCode
// maps to the process exit status.
package ingest
