package source

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ambrydata/mpr/errs"
)

// FileSystem abstracts the backing store a writer/reader opens paths
// against. LocalFS is the only implementation this module ships; remote
// object-store implementations MUST reject Remove (spec.md §6: "remote
// stores must reject remove" — there is no safe way to recall a partially
// uploaded object the way a local writer recalls a partial file on Abort).
type FileSystem interface {
	Exists(path string) bool
	Open(path string) (io.ReadCloser, error)
	MakeDir(path string) error
	Remove(path string) error
	// GetSysPath returns the local filesystem path backing path, if any.
	GetSysPath(path string) (string, bool)
}

// LocalFS is the FileSystem backed directly by the host filesystem.
type LocalFS struct{}

func (LocalFS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (LocalFS) Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("source: open %s: %w", path, errs.IOError)
	}
	return f, nil
}

func (LocalFS) MakeDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("source: mkdir %s: %w", path, errs.IOError)
	}
	return nil
}

func (LocalFS) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("source: remove %s: %w", path, errs.IOError)
	}
	return nil
}

func (LocalFS) GetSysPath(path string) (string, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	return abs, true
}
