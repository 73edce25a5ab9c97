package history

import "time"

// Status is the lifecycle state of a recorded run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusAborted   Status = "aborted"
)

// Run is one ingest invocation as recorded in the ledger.
type Run struct {
	ID           string
	Status       Status
	StartedAt    time.Time
	FinishedAt   time.Time
	SourceDir    string
	WorkDir      string
	CatalogPath  string
	Total        int
	Processed    int
	Removed      int
	FailedFile   string
	ErrorKind    string
	ErrorMessage string
}

// Duration returns how long the run took, or zero while it is still running.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Outcome carries the values recorded when a run finishes.
type Outcome struct {
	Succeeded    bool
	Total        int
	Processed    int
	Removed      int
	FailedFile   string
	ErrorKind    string
	ErrorMessage string
}
