package scanner

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dirsync/core/models"
	"dirsync/core/trie"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeFile(t *testing.T, fs afero.Fs, name string, size int, mtime time.Time) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(filepath.Dir(name), 0o755))
	require.NoError(t, afero.WriteFile(fs, name, make([]byte, size), 0o644))
	require.NoError(t, fs.Chtimes(name, mtime, mtime))
}

func newFixture(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	ts := time.Unix(1700000000, 500_000_000)
	writeFile(t, fs, "/data/a.txt", 5, ts)
	writeFile(t, fs, "/data/sub/b.txt", 7, ts)
	writeFile(t, fs, "/data/sub/c.txt", 0, ts)
	writeFile(t, fs, "/data/sub/deeper/d.txt", 1, ts)
	return fs
}

func TestScanRecursive(t *testing.T) {
	fs := newFixture(t)
	idx := trie.New[*models.FileRecord]()

	res, err := New(fs, idx, zap.NewNop()).Scan("/data", true)
	require.NoError(t, err)

	assert.Equal(t, 4, res.Files)
	assert.Equal(t, 3, res.Directories)
	assert.Equal(t, 0, res.Warnings)
	assert.Equal(t, 4, idx.Len())

	tree := res.Tree
	assert.Equal(t, "data", tree.Name)
	assert.Equal(t, uint32(1), tree.FileCount)
	require.Len(t, tree.Children, 1)
	assert.Equal(t, "sub", tree.Children[0].Name)
	assert.Equal(t, uint32(2), tree.Children[0].FileCount)
	require.Len(t, tree.Children[0].Children, 1)
	assert.Equal(t, uint32(1), tree.Children[0].Children[0].FileCount)
	assert.Equal(t, 4, tree.TotalFiles())

	rec, ok := idx.Lookup("sub/b.txt")
	require.True(t, ok)
	assert.Equal(t, models.FileRecord{Path: "sub/b.txt", Size: 7, ModifiedAt: 1700000000}, *rec)

	_, ok = idx.Lookup("/data/a.txt")
	assert.False(t, ok, "paths are stored relative to the root")
}

func TestScanNonRecursive(t *testing.T) {
	fs := newFixture(t)
	idx := trie.New[*models.FileRecord]()

	res, err := New(fs, idx, nil).Scan("/data", false)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Files)
	assert.Empty(t, res.Tree.Children)
	assert.Len(t, idx.PrefixSearch(""), 1)
	_, ok := idx.Lookup("a.txt")
	assert.True(t, ok)
}

func TestScanEmptyRoot(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/empty", 0o755))

	res, err := New(fs, trie.New[*models.FileRecord](), nil).Scan("/empty", true)
	require.NoError(t, err)
	assert.Equal(t, "empty", res.Tree.Name)
	assert.Zero(t, res.Tree.FileCount)
	assert.Nil(t, res.Tree.Children)
}

func TestScanRootErrors(t *testing.T) {
	fs := newFixture(t)
	s := New(fs, trie.New[*models.FileRecord](), nil)

	_, err := s.Scan("/missing", true)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Scan("/data/a.txt", true)
	assert.ErrorIs(t, err, ErrNotADirectory)
}

// brokenFs fails to open one directory.
type brokenFs struct {
	afero.Fs
	broken string
}

func (b brokenFs) Open(name string) (afero.File, error) {
	if filepath.Clean(name) == b.broken {
		return nil, &os.PathError{Op: "open", Path: name, Err: errors.New("permission denied")}
	}
	return b.Fs.Open(name)
}

func TestScanSkipsUnreadableDirectory(t *testing.T) {
	fs := brokenFs{Fs: newFixture(t), broken: "/data/sub/deeper"}
	idx := trie.New[*models.FileRecord]()

	res, err := New(fs, idx, zap.NewNop()).Scan("/data", true)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Warnings)
	assert.Equal(t, 3, res.Files)
	_, ok := idx.Lookup("sub/deeper/d.txt")
	assert.False(t, ok)
	require.Len(t, res.Tree.Children, 1)
	assert.Empty(t, res.Tree.Children[0].Children)
}

func TestScanSymlinks(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "real"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "real", "f.txt"), []byte("abc"), 0o644))
	if err := os.Symlink(root, filepath.Join(root, "real", "loop")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	require.NoError(t, os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "alias")))
	require.NoError(t, os.Symlink(filepath.Join(root, "real", "f.txt"), filepath.Join(root, "link.txt")))

	index := trie.New[*models.FileRecord]()
	res, err := New(afero.NewOsFs(), index, zap.NewNop()).Scan(root, true)
	require.NoError(t, err)

	var paths []string
	for _, rec := range index.PrefixSearch("") {
		paths = append(paths, rec.Path)
	}
	assert.ElementsMatch(t, []string{"real/f.txt", "alias/f.txt", "link.txt"}, paths)
	assert.Equal(t, 3, res.Files)
	assert.Equal(t, 2, res.Warnings, "each loop link is skipped once per descent")

	rec, ok := index.Lookup("link.txt")
	require.True(t, ok)
	assert.Equal(t, uint64(3), rec.Size)

	t.Run("NonRecursiveIgnoresDirectoryLinks", func(t *testing.T) {
		index := trie.New[*models.FileRecord]()
		res, err := New(afero.NewOsFs(), index, zap.NewNop()).Scan(root, false)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Files)
		assert.Zero(t, res.Warnings)
	})
}
