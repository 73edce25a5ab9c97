// Package catalog owns the video catalog: the ordered list of records an
// ingest run produces and the JSON document it persists.
//
// Builder collects records during a run and Persist commits them in one
// atomic replace. Nothing is written when a run aborts, so the catalog on
// disk always describes a fully successful run.
package catalog
