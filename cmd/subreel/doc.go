// Package main hosts the subreel CLI entrypoint and command graph.
//
// Running subreel with no arguments ingests the configured source directory:
// every video is probed with mkvmerge, its first subtitle track is extracted
// with mkvextract into the work directory, and the catalog JSON is rewritten
// only when the whole batch succeeds. The remaining commands serve, inspect,
// and diagnose that catalog.
//
// Exit statuses: 0 on success, 2 when an extracted subtitle could not be moved
// into the work directory, 1 for every other failure.
package main
