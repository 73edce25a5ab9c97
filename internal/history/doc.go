// Package history keeps a SQLite ledger of ingest runs so operators can see
// when the catalog was last rebuilt and why earlier runs aborted.
//
// The ledger is advisory: it never influences whether a run proceeds, and a
// failure to record is logged rather than failing the run.
package history
