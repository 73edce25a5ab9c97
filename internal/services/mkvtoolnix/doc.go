// Package mkvtoolnix mediates access to the mkvmerge and mkvextract CLIs used
// during ingestion.
//
// It normalizes command invocation behind the Executor interface so the
// pipeline can be exercised with scripted output, classifies failures from
// the process exit status (1 means "finished with warnings" in mkvtoolnix),
// and parses the `mkvmerge -i` track inventory to find the subtitle track.
//
// Prefer this package over ad-hoc exec.Command usage when interacting with
// mkvtoolnix so timeout handling and diagnostics remain consistent.
package mkvtoolnix
