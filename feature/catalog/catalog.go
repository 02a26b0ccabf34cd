package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"dirsync/core/metrics"
	"dirsync/core/models"
	"dirsync/core/scanner"
	"dirsync/core/trie"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrNotScanned is returned while no scan has completed.
var ErrNotScanned = errors.New("catalog not scanned yet")

// Catalog publishes the files of one directory tree. The index and tree are
// built by Rescan; listing with refresh re-checks matched files against the
// filesystem and keeps the result, including tombstones for vanished files.
type Catalog struct {
	fs        afero.Fs
	root      string
	recursive bool
	logger    *zap.Logger

	mu        sync.Mutex
	index     *trie.Trie[*models.FileRecord]
	tree      *models.DirectoryNode
	scannedAt time.Time

	sf singleflight.Group
}

// New creates an empty catalog for root. Call Rescan before serving.
func New(fs afero.Fs, root string, recursive bool, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{
		fs:        fs,
		root:      root,
		recursive: recursive,
		logger:    logger,
		index:     trie.New[*models.FileRecord](),
	}
}

// Root returns the published directory.
func (c *Catalog) Root() string {
	return c.root
}

// Rescan rebuilds the index and the tree from the filesystem. On failure the
// previous state is kept.
func (c *Catalog) Rescan(ctx context.Context) (*scanner.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	index := trie.New[*models.FileRecord]()
	res, err := scanner.New(c.fs, index, c.logger).Scan(c.root, c.recursive)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	c.mu.Lock()
	c.index = index
	c.tree = res.Tree
	c.scannedAt = time.Now()
	c.mu.Unlock()

	metrics.RecordScan(elapsed, res.Files, res.Warnings)
	c.logger.Info("Catalog scanned",
		zap.String("root", c.root),
		zap.Bool("recursive", c.recursive),
		zap.Int("files", res.Files),
		zap.Int("directories", res.Directories),
		zap.Int("warnings", res.Warnings),
		zap.Duration("took", elapsed),
	)
	return res, nil
}

// DescribeTree returns the directory summary of the last scan.
func (c *Catalog) DescribeTree() (*models.DirectoryNode, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tree == nil {
		return nil, ErrNotScanned
	}
	return c.tree, nil
}

// Len returns the number of indexed records, tombstones included.
func (c *Catalog) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index.Len()
}

// ScannedAt returns the completion time of the last scan, or zero.
func (c *Catalog) ScannedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scannedAt
}

// ListByPrefix returns the records whose path starts with prefix, sorted by
// path. With refresh, each matched record is first updated from the
// filesystem. Identical concurrent queries share one execution.
func (c *Catalog) ListByPrefix(ctx context.Context, prefix string, refresh bool) ([]models.FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := strconv.FormatBool(refresh) + ":" + prefix
	v, err, shared := c.sf.Do(key, func() (any, error) {
		return c.list(prefix, refresh), nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Debug("Listing shared", zap.String("prefix", prefix), zap.Bool("refresh", refresh))
	}

	records := v.([]models.FileRecord)
	return append([]models.FileRecord(nil), records...), nil
}

func (c *Catalog) list(prefix string, refresh bool) []models.FileRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	matched := c.index.PrefixSearch(prefix)
	out := make([]models.FileRecord, 0, len(matched))
	tombstoned := 0
	for _, rec := range matched {
		if refresh && c.refresh(rec) {
			tombstoned++
		}
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })

	metrics.RecordList(refresh, tombstoned)
	return out
}

// refresh updates rec from the filesystem and reports whether it became a
// tombstone. The caller holds c.mu.
func (c *Catalog) refresh(rec *models.FileRecord) bool {
	full := filepath.Join(c.root, filepath.FromSlash(rec.Path))
	info, err := c.fs.Stat(full)
	switch {
	case err == nil && info.Mode().IsRegular():
		rec.Size = uint64(info.Size())
		rec.ModifiedAt = info.ModTime().Unix()
		rec.Deleted = false
		return false
	case err == nil || os.IsNotExist(err):
		wasDeleted := rec.Deleted
		rec.Size = 0
		rec.ModifiedAt = 0
		rec.Deleted = true
		if !wasDeleted {
			c.logger.Info("File vanished", zap.String("path", rec.Path))
		}
		return !wasDeleted
	default:
		c.logger.Warn("Failed to refresh file", zap.String("path", rec.Path), zap.Error(err))
		return false
	}
}
