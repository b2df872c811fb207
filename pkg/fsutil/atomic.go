// Package fsutil provides file helpers for the CLI: input opening and
// atomic output replacement.
package fsutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DefaultFileMode is the default permission mode for newly created files.
const DefaultFileMode os.FileMode = 0644

// StdioPath names standard input or output in place of a file path.
const StdioPath = "-"

// AtomicFile is an output file that only replaces its target on Commit.
// Until then the data lives in a temp file in the target's directory.
type AtomicFile struct {
	tmp  *os.File
	path string
	mode os.FileMode
	done bool
}

// CreateAtomic opens a temp file next to path. If mode is 0, the mode of an
// existing target is kept, falling back to DefaultFileMode.
func CreateAtomic(ctx context.Context, path string, mode os.FileMode) (*AtomicFile, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("create atomic: %w", ctx.Err())
	default:
	}

	if mode == 0 {
		mode = DefaultFileMode
		if info, err := os.Stat(path); err == nil {
			mode = info.Mode().Perm()
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp.*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	return &AtomicFile{tmp: tmp, path: path, mode: mode}, nil
}

// Write implements io.Writer.
func (f *AtomicFile) Write(p []byte) (int, error) {
	if f.done {
		return 0, os.ErrClosed
	}
	return f.tmp.Write(p)
}

// Commit syncs the temp file and renames it over the target.
func (f *AtomicFile) Commit() error {
	if f.done {
		return os.ErrClosed
	}
	f.done = true
	tmpPath := f.tmp.Name()

	err := f.tmp.Sync()
	err = errors.Join(err, f.tmp.Close())
	if err == nil {
		err = os.Chmod(tmpPath, f.mode)
	}
	if err == nil {
		err = os.Rename(tmpPath, f.path)
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("commit %s: %w", f.path, err)
	}
	return nil
}

// Abort discards the temp file and leaves the target untouched. It is a
// no-op after Commit, so it can be deferred.
func (f *AtomicFile) Abort() {
	if f.done {
		return
	}
	f.done = true
	_ = f.tmp.Close()
	_ = os.Remove(f.tmp.Name())
}

// WriteAtomic writes content to path atomically using a temp file and rename.
// If mode is 0, DefaultFileMode (0644) is used. On error the original file
// remains untouched.
func WriteAtomic(ctx context.Context, path string, content []byte, mode os.FileMode) error {
	if mode == 0 {
		mode = DefaultFileMode
	}
	f, err := CreateAtomic(ctx, path, mode)
	if err != nil {
		return err
	}
	defer f.Abort()

	if _, err := f.Write(content); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	return f.Commit()
}

// Open opens path for reading. An empty path or StdioPath reads stdin,
// which Close leaves open.
func Open(ctx context.Context, path string, stdin io.Reader) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("open: %w", ctx.Err())
	default:
	}

	if path == "" || path == StdioPath {
		return io.NopCloser(stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return f, nil
}
