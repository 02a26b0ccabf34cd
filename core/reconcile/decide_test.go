package reconcile

import (
	"testing"

	"dirsync/core/models"

	"github.com/stretchr/testify/assert"
)

func state(size uint64, mtime int64) *models.FileState {
	return &models.FileState{Size: size, ModifiedAt: mtime}
}

func TestDecide(t *testing.T) {
	remote := models.FileRecord{Path: "a.txt", Size: 10, ModifiedAt: 100}
	deleted := models.FileRecord{Path: "a.txt", Deleted: true}

	tests := []struct {
		name   string
		remote models.FileRecord
		local  *models.FileState
		cached *models.FileState
		want   Decision
	}{
		{"DeletedWithLocalCopy", deleted, state(10, 100), nil, DecisionDeleteLocal},
		{"DeletedWithoutLocalCopy", deleted, nil, nil, DecisionSkip},
		{"DeletedIgnoresCache", deleted, nil, state(10, 100), DecisionSkip},
		{"MissingLocally", remote, nil, nil, DecisionDownload},
		{"MissingLocallyDespiteCache", remote, nil, state(10, 100), DecisionDownload},
		{"Identical", remote, state(10, 100), nil, DecisionSkip},
		{"LocalNewer", remote, state(10, 200), nil, DecisionSkip},
		{"LocalOlder", remote, state(10, 99), nil, DecisionDownload},
		{"SizeDiffers", remote, state(11, 100), nil, DecisionDownload},
		{"CacheWinsOverLocalTime", remote, state(10, 5), state(10, 100), DecisionSkip},
		{"CacheOlder", remote, state(10, 100), state(10, 50), DecisionDownload},
		{"CacheSizeDiffers", remote, state(10, 100), state(9, 100), DecisionDownload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.remote, tt.local, tt.cached))
		})
	}
}

func TestIsSafePath(t *testing.T) {
	for _, p := range []string{"a.txt", "docs/a.txt", "docs/../a.txt", "..a"} {
		assert.True(t, IsSafePath(p), p)
	}
	for _, p := range []string{"", "/etc/passwd", "../a.txt", "docs/../../a.txt", ".."} {
		assert.False(t, IsSafePath(p), p)
	}
}
