package media

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"redactor/internal/fileutil"
)

// ErrReleased is returned when a released handle is read.
var ErrReleased = errors.New("media handle released")

// File is a file-backed handle. Owned files are staged copies and are removed
// on release; borrowed files (user input) are left in place.
type File struct {
	path  string
	owned bool

	mu       sync.Mutex
	released bool
}

// Borrow wraps a file the caller owns.
func Borrow(path string) *File {
	return &File{path: path}
}

// Own wraps a staged file that is deleted on release.
func Own(path string) *File {
	return &File{path: path, owned: true}
}

// Path returns the backing file path.
func (f *File) Path() string {
	return f.path
}

// ReadAll returns the file contents.
func (f *File) ReadAll() ([]byte, error) {
	f.mu.Lock()
	released := f.released
	f.mu.Unlock()
	if released {
		return nil, ErrReleased
	}
	return os.ReadFile(f.path)
}

// Size returns the file size in bytes.
func (f *File) Size() (int64, error) {
	info, err := os.Stat(f.path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// CopyTo writes the file contents to dst, replacing any existing file, and
// verifies the copy.
func (f *File) CopyTo(dst string) (int64, error) {
	n, err := fileutil.CopyFileVerified(f.path, dst)
	if err != nil {
		return n, fmt.Errorf("copy %s to %s: %w", f.path, dst, err)
	}
	return n, nil
}

// Release marks the handle released. It is safe to call more than once.
func (f *File) Release() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.released {
		return nil
	}
	f.released = true
	if !f.owned {
		return nil
	}
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", f.path, err)
	}
	return nil
}
