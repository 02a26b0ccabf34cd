package reconcile

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"dirsync/core/models"

	"github.com/spf13/afero"
)

const tempPattern = ".dirsync-*.tmp"

// LocalDestination mirrors files into a directory.
type LocalDestination struct {
	fs   afero.Fs
	root string
}

// NewLocalDestination creates a destination rooted at root on fs.
func NewLocalDestination(fs afero.Fs, root string) *LocalDestination {
	return &LocalDestination{fs: fs, root: root}
}

// Scope implements Destination.
func (d *LocalDestination) Scope() string {
	root := d.root
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return "file://" + filepath.ToSlash(root)
}

func (d *LocalDestination) resolve(p string) (string, error) {
	if !IsSafePath(p) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, p)
	}
	return filepath.Join(d.root, filepath.FromSlash(p)), nil
}

// Stat implements Destination.
func (d *LocalDestination) Stat(_ context.Context, p string) (*models.FileState, error) {
	full, err := d.resolve(p)
	if err != nil {
		return nil, err
	}
	info, err := d.fs.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", full)
	}
	return &models.FileState{Size: uint64(info.Size()), ModifiedAt: info.ModTime().Unix()}, nil
}

// Remove implements Destination.
func (d *LocalDestination) Remove(_ context.Context, p string) error {
	full, err := d.resolve(p)
	if err != nil {
		return err
	}
	if err := d.fs.Remove(full); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Write implements Destination. Content goes to a temporary file in the
// target directory which is renamed into place once complete.
func (d *LocalDestination) Write(ctx context.Context, p string, r io.Reader, state models.FileState) (err error) {
	full, err := d.resolve(p)
	if err != nil {
		return err
	}
	dir := filepath.Dir(full)
	if err := d.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := afero.TempFile(d.fs, dir, tempPattern)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = d.fs.Remove(tmpName)
		}
	}()

	n, err := io.Copy(tmp, ContextReader(ctx, r))
	if err != nil {
		return err
	}
	if uint64(n) != state.Size {
		return fmt.Errorf("short write: got %d bytes, want %d", n, state.Size)
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = d.fs.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	mtime := time.Unix(state.ModifiedAt, 0)
	if err = d.fs.Chtimes(tmpName, mtime, mtime); err != nil {
		return err
	}
	if err = d.fs.Rename(tmpName, full); err != nil {
		return err
	}
	return nil
}

// IsTempFile reports whether name is a leftover temporary file.
func IsTempFile(name string) bool {
	ok, _ := filepath.Match(tempPattern, filepath.Base(name))
	return ok
}

var _ Destination = (*LocalDestination)(nil)
