//go:build linux

package proc

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const (
	// DefaultRoot is where the kernel mounts the process pseudo-filesystem.
	DefaultRoot = "/proc"
	// DefaultStatPath is the kernel-wide statistics file.
	DefaultStatPath = "/proc/stat"
)

// Source is the read-only view of the proc pseudo-filesystem used by the
// sampler. Paths are passed through untouched so that fakes can serve
// fixtures for any layout.
type Source interface {
	// OpenSnapshot opens the kernel statistics file for line reading.
	OpenSnapshot(path string) (io.ReadCloser, error)
	// ListEntries returns the names of the immediate entries of root, in the
	// order the directory listing produced them. No filtering is applied.
	ListEntries(root string) ([]string, error)
	// ReadStat returns the first line of <root>/<id>/stat without the
	// trailing newline. Errors wrap ErrStatOpen or ErrStatRead.
	ReadStat(root, id string) (string, error)
}

// StatPath returns <root>/<id>/stat.
func StatPath(root, id string) string {
	return filepath.Join(root, id, "stat")
}

// IsPID reports whether an entry name consists of decimal digits only.
// Names such as "self", "thread-self", "1a" or ".git" are rejected.
func IsPID(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if name[i] < '0' || name[i] > '9' {
			return false
		}
	}
	return true
}

// FS reads the real filesystem.
type FS struct{}

// NewFS returns a Source backed by the operating system.
func NewFS() *FS { return &FS{} }

func (FS) OpenSnapshot(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// ListEntries uses Readdirnames rather than os.ReadDir, which would sort.
func (FS) ListEntries(root string) ([]string, error) {
	d, err := os.Open(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRootOpen, err)
	}
	defer func() {
		_ = d.Close()
	}()

	names, err := d.Readdirnames(-1)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRootOpen, err)
	}
	return names, nil
}

// ReadStat reads the raw scheduler statistics line of one process.
//
// An empty stat file yields an empty line and no error. The line is never
// parsed; comm may contain spaces and parentheses.
func (FS) ReadStat(root, id string) (string, error) {
	path := StatPath(root, id)
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrStatOpen, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", fmt.Errorf("%w: %w", ErrStatRead, err)
		}
		return "", nil
	}
	return sc.Text(), nil
}
