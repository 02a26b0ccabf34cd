package reconcile

import (
	"fmt"
	"path/filepath"

	"dirsync/core/models"
)

// Decide chooses what to do with one remote record. local is nil when no
// local copy exists; cached, when present, is used for comparison instead of
// local. A copy is refreshed when its size differs or it is strictly older
// than the remote.
func Decide(remote models.FileRecord, local, cached *models.FileState) Decision {
	d, _ := decide(remote, local, cached)
	return d
}

func decide(remote models.FileRecord, local, cached *models.FileState) (Decision, string) {
	if remote.Deleted {
		if local != nil {
			return DecisionDeleteLocal, "deleted on server"
		}
		return DecisionSkip, "deleted on server, no local copy"
	}
	if local == nil {
		return DecisionDownload, "missing locally"
	}

	source, known := "local", local
	if cached != nil {
		source, known = "cached", cached
	}
	if known.Size != remote.Size {
		return DecisionDownload, fmt.Sprintf("size differs: %s=%d remote=%d", source, known.Size, remote.Size)
	}
	if known.ModifiedAt < remote.ModifiedAt {
		return DecisionDownload, fmt.Sprintf("older: %s=%d remote=%d", source, known.ModifiedAt, remote.ModifiedAt)
	}
	return DecisionSkip, "up to date"
}

// IsSafePath reports whether a slash separated remote path stays below the
// destination root.
func IsSafePath(p string) bool {
	return p != "" && filepath.IsLocal(filepath.FromSlash(p))
}
