package reconcile

import (
	"errors"
	"fmt"

	"dirsync/core/models"
)

// Decision is the outcome of comparing a remote record with the local copy.
type Decision string

const (
	// DecisionSkip leaves the local copy as it is.
	DecisionSkip Decision = "skip"
	// DecisionDownload fetches the remote file and replaces the local copy.
	DecisionDownload Decision = "download"
	// DecisionDeleteLocal removes the local copy of a deleted remote file.
	DecisionDeleteLocal Decision = "delete_local"
)

// ErrUnsafePath is returned for remote paths that are absolute or would
// resolve outside the destination root.
var ErrUnsafePath = errors.New("unsafe path")

// Action is a planned step for a single path.
type Action struct {
	// Decision is what Apply will do.
	Decision Decision `json:"decision"`
	// Record is the remote record the decision was made for.
	Record models.FileRecord `json:"record"`
	// Reason explains the decision.
	Reason string `json:"reason"`
}

// Plan is the full set of steps for one listing.
type Plan struct {
	// Actions are sorted by path.
	Actions []Action `json:"actions"`
	// Rejected holds paths that could not be planned at all.
	Rejected []*TransferError `json:"-"`
	// Summary provides aggregate counts.
	Summary PlanSummary `json:"summary"`
}

// PlanSummary provides aggregate statistics for a plan.
type PlanSummary struct {
	// Total is the number of remote records considered.
	Total int `json:"total"`
	// Downloads counts planned downloads.
	Downloads int `json:"downloads"`
	// Deletes counts planned local deletions.
	Deletes int `json:"deletes"`
	// Skips counts paths left untouched.
	Skips int `json:"skips"`
	// Rejected counts paths that failed planning.
	Rejected int `json:"rejected"`
	// DownloadBytes is the announced size of all planned downloads.
	DownloadBytes uint64 `json:"download_bytes"`
}

// Report is the outcome of applying a plan.
type Report struct {
	Downloaded int   `json:"downloaded"`
	Deleted    int   `json:"deleted"`
	Skipped    int   `json:"skipped"`
	Failed     int   `json:"failed"`
	Bytes      int64 `json:"bytes"`
}

// ProgressFunc receives transfer progress for a path. Total is -1 when
// unknown.
type ProgressFunc func(path string, current, total int64)

// Options controls engine behavior.
type Options struct {
	// Workers limits concurrent actions. Values below one mean one.
	Workers int
	// DryRun makes Sync stop after planning.
	DryRun bool
	// Progress is called while downloads stream.
	Progress ProgressFunc
	// Finished is called once per download attempt, after its last
	// Progress call, with the outcome.
	Finished func(path string, err error)
}

// TransferError is a failure of a single path. It never aborts the batch.
type TransferError struct {
	Path     string
	Decision Decision
	Err      error
}

func (e *TransferError) Error() string {
	if e.Decision == "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Decision, e.Path, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}
