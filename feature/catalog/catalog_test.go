package catalog

import (
	"context"
	"sync"
	"testing"
	"time"

	"dirsync/core/models"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var mtime = time.Unix(1700000000, 0)

func memCatalog(t *testing.T, recursive bool) (*Catalog, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	files := map[string]string{
		"/srv/a.txt":          "hello",
		"/srv/docs/b.txt":     "bb",
		"/srv/docs/sub/c.txt": "c",
	}
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
		require.NoError(t, fs.Chtimes(name, mtime, mtime))
	}
	return New(fs, "/srv", recursive, zap.NewNop()), fs
}

func paths(records []models.FileRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Path)
	}
	return out
}

func TestCatalogBeforeScan(t *testing.T) {
	c, _ := memCatalog(t, true)

	_, err := c.DescribeTree()
	assert.ErrorIs(t, err, ErrNotScanned)
	assert.True(t, c.ScannedAt().IsZero())

	records, err := c.ListByPrefix(context.Background(), "", false)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRescan(t *testing.T) {
	c, _ := memCatalog(t, true)

	res, err := c.Rescan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Files)
	assert.Equal(t, 3, c.Len())
	assert.False(t, c.ScannedAt().IsZero())

	tree, err := c.DescribeTree()
	require.NoError(t, err)
	assert.Equal(t, "srv", tree.Name)
	assert.Equal(t, 3, tree.TotalFiles())

	t.Run("MissingRootKeepsPreviousState", func(t *testing.T) {
		broken := New(afero.NewMemMapFs(), "/nope", true, zap.NewNop())
		_, err := broken.Rescan(context.Background())
		assert.Error(t, err)
		_, err = broken.DescribeTree()
		assert.ErrorIs(t, err, ErrNotScanned)
	})

	t.Run("CancelledContext", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := c.Rescan(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestListByPrefix(t *testing.T) {
	c, _ := memCatalog(t, true)
	_, err := c.Rescan(context.Background())
	require.NoError(t, err)

	tests := []struct {
		name   string
		prefix string
		want   []string
	}{
		{"All", "", []string{"a.txt", "docs/b.txt", "docs/sub/c.txt"}},
		{"Directory", "docs/", []string{"docs/b.txt", "docs/sub/c.txt"}},
		{"Nested", "docs/sub", []string{"docs/sub/c.txt"}},
		{"NoMatch", "zzz", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := c.ListByPrefix(context.Background(), tt.prefix, false)
			require.NoError(t, err)
			assert.Equal(t, tt.want, paths(records))
		})
	}

	t.Run("RecordValues", func(t *testing.T) {
		records, err := c.ListByPrefix(context.Background(), "a.txt", false)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, models.FileRecord{Path: "a.txt", Size: 5, ModifiedAt: mtime.Unix()}, records[0])
	})

	t.Run("ReturnsCopies", func(t *testing.T) {
		records, err := c.ListByPrefix(context.Background(), "a.txt", false)
		require.NoError(t, err)
		records[0].Size = 999

		again, err := c.ListByPrefix(context.Background(), "a.txt", false)
		require.NoError(t, err)
		assert.Equal(t, uint64(5), again[0].Size)
	})
}

func TestListByPrefixRefresh(t *testing.T) {
	c, fs := memCatalog(t, true)
	_, err := c.Rescan(context.Background())
	require.NoError(t, err)
	ctx := context.Background()

	later := mtime.Add(time.Hour)
	require.NoError(t, afero.WriteFile(fs, "/srv/a.txt", []byte("hello world"), 0o644))
	require.NoError(t, fs.Chtimes("/srv/a.txt", later, later))
	require.NoError(t, fs.Remove("/srv/docs/b.txt"))

	t.Run("WithoutUpdateKeepsScanState", func(t *testing.T) {
		records, err := c.ListByPrefix(ctx, "", false)
		require.NoError(t, err)
		assert.Equal(t, uint64(5), records[0].Size)
		assert.False(t, records[1].Deleted)
	})

	t.Run("UpdateReflectsDisk", func(t *testing.T) {
		records, err := c.ListByPrefix(ctx, "", true)
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, models.FileRecord{Path: "a.txt", Size: 11, ModifiedAt: later.Unix()}, records[0])
		assert.Equal(t, models.FileRecord{Path: "docs/b.txt", Deleted: true}, records[1])
		assert.False(t, records[2].Deleted)
	})

	t.Run("TombstonePersists", func(t *testing.T) {
		records, err := c.ListByPrefix(ctx, "docs/b", false)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.True(t, records[0].Deleted)
		assert.Equal(t, 3, c.Len())
	})

	t.Run("ReappearedFileIsLive", func(t *testing.T) {
		require.NoError(t, afero.WriteFile(fs, "/srv/docs/b.txt", []byte("back"), 0o644))
		records, err := c.ListByPrefix(ctx, "docs/b", true)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.False(t, records[0].Deleted)
		assert.Equal(t, uint64(4), records[0].Size)
	})

	t.Run("ReplacedByDirectoryIsTombstone", func(t *testing.T) {
		require.NoError(t, fs.Remove("/srv/docs/sub/c.txt"))
		require.NoError(t, fs.MkdirAll("/srv/docs/sub/c.txt", 0o755))
		records, err := c.ListByPrefix(ctx, "docs/sub/", true)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.True(t, records[0].Deleted)
	})
}

func TestListByPrefixConcurrent(t *testing.T) {
	c, fs := memCatalog(t, true)
	_, err := c.Rescan(context.Background())
	require.NoError(t, err)
	require.NoError(t, fs.Remove("/srv/a.txt"))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(refresh bool) {
			defer wg.Done()
			records, err := c.ListByPrefix(context.Background(), "", refresh)
			assert.NoError(t, err)
			assert.Len(t, records, 3)
		}(i%2 == 0)
	}
	wg.Wait()

	records, err := c.ListByPrefix(context.Background(), "a.txt", false)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Deleted)
}

func TestListByPrefixCancelled(t *testing.T) {
	c, _ := memCatalog(t, true)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.ListByPrefix(ctx, "", false)
	assert.ErrorIs(t, err, context.Canceled)
}
