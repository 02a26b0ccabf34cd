package scanner

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"dirsync/core/models"
	"dirsync/core/trie"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when the scan root does not exist.
	ErrNotFound = errors.New("root not found")
	// ErrNotADirectory is returned when the scan root is not a directory.
	ErrNotADirectory = errors.New("root is not a directory")
	// ErrSymlinkLoop is logged for directory symlinks pointing back into the
	// tree being descended.
	ErrSymlinkLoop = errors.New("symlink points to an ancestor directory")
)

// Result is the outcome of a completed scan.
type Result struct {
	// Tree is the directory summary rooted at the scanned root.
	Tree *models.DirectoryNode
	// Files is the number of regular files indexed.
	Files int
	// Directories is the number of directories in Tree, root included.
	Directories int
	// Warnings counts entries that were skipped because of an error.
	Warnings int
}

// Scanner walks a directory tree and fills a prefix index with file records.
type Scanner struct {
	fs     afero.Fs
	index  *trie.Trie[*models.FileRecord]
	logger *zap.Logger
}

// New creates a scanner that inserts into index.
func New(fs afero.Fs, index *trie.Trie[*models.FileRecord], logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{fs: fs, index: index, logger: logger}
}

// Scan indexes the regular files below root. Subdirectories are descended
// only when recursive is set. Unreadable entries are logged and skipped.
func (s *Scanner) Scan(root string, recursive bool) (*Result, error) {
	info, err := s.fs.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, root)
		}
		return nil, fmt.Errorf("stat root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotADirectory, root)
	}

	res := &Result{Tree: &models.DirectoryNode{Name: rootName(root)}}
	if err := s.scanDir(root, "", res.Tree, recursive, []os.FileInfo{info}, res); err != nil {
		return nil, fmt.Errorf("read root %s: %w", root, err)
	}

	s.logger.Debug("Scan finished",
		zap.String("root", root),
		zap.Int("files", res.Files),
		zap.Int("directories", res.Directories),
		zap.Int("warnings", res.Warnings),
	)
	return res, nil
}

// scanDir indexes dir. ancestors holds the directories on the current
// descent path, root first, and stops symlinks from looping back into them.
func (s *Scanner) scanDir(dir, rel string, node *models.DirectoryNode, recursive bool, ancestors []os.FileInfo, res *Result) error {
	res.Directories++

	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())
		relPath := path.Join(rel, entry.Name())

		name := entry.Name()
		if entry.Mode()&os.ModeSymlink != 0 {
			target, err := s.fs.Stat(full)
			if err != nil {
				s.warn("Failed to resolve symlink", full, err, res)
				continue
			}
			if target.IsDir() && recursive && isAncestor(ancestors, target) {
				s.warn("Skipping symlink loop", full, ErrSymlinkLoop, res)
				continue
			}
			entry = target
		}

		switch {
		case entry.IsDir():
			if !recursive {
				continue
			}
			child := &models.DirectoryNode{Name: name}
			if err := s.scanDir(full, relPath, child, recursive, append(ancestors[:len(ancestors):len(ancestors)], entry), res); err != nil {
				s.warn("Failed to read directory", full, err, res)
				continue
			}
			node.Children = append(node.Children, child)
		case entry.Mode().IsRegular():
			rec := &models.FileRecord{
				Path:       relPath,
				Size:       uint64(entry.Size()),
				ModifiedAt: entry.ModTime().Unix(),
			}
			if err := s.index.Insert(rec.Path, rec); err != nil {
				s.warn("Failed to index file", full, err, res)
				continue
			}
			node.FileCount++
			res.Files++
			s.logger.Debug("File", zap.String("path", rec.Path), zap.Int64("time", rec.ModifiedAt))
		}
	}
	return nil
}

func (s *Scanner) warn(msg, p string, err error, res *Result) {
	res.Warnings++
	s.logger.Warn(msg, zap.String("path", p), zap.Error(err))
}

func isAncestor(ancestors []os.FileInfo, dir os.FileInfo) bool {
	for _, a := range ancestors {
		if os.SameFile(a, dir) {
			return true
		}
	}
	return false
}

func rootName(root string) string {
	name := filepath.Base(filepath.Clean(root))
	if name == "." || name == string(filepath.Separator) {
		if abs, err := filepath.Abs(root); err == nil {
			name = filepath.Base(abs)
		}
	}
	return name
}
