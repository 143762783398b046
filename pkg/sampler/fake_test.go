//go:build linux

package sampler

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"testing/iotest"

	"github.com/ja7ad/mibtop/pkg/system/proc"
)

var errBoom = errors.New("boom")

// fakeSource serves fixtures keyed by path and pid.
type fakeSource struct {
	snapshots map[string]string
	brokenAt  map[string]bool // snapshot reads fail after the content
	entries   map[string][]string
	stats     map[string]string
	statErrs  map[string]error

	listCalls int
	readCalls []string
}

func (f *fakeSource) OpenSnapshot(path string) (io.ReadCloser, error) {
	content, ok := f.snapshots[path]
	if !ok {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}
	var r io.Reader = strings.NewReader(content)
	if f.brokenAt[path] {
		r = io.MultiReader(r, iotest.ErrReader(errBoom))
	}
	return io.NopCloser(r), nil
}

func (f *fakeSource) ListEntries(root string) ([]string, error) {
	f.listCalls++
	names, ok := f.entries[root]
	if !ok {
		return nil, fmt.Errorf("%w: %w", proc.ErrRootOpen, os.ErrNotExist)
	}
	return append([]string(nil), names...), nil
}

func (f *fakeSource) ReadStat(root, id string) (string, error) {
	f.readCalls = append(f.readCalls, id)
	if err, ok := f.statErrs[id]; ok {
		return "", err
	}
	line, ok := f.stats[id]
	if !ok {
		return "", fmt.Errorf("%w: %w", proc.ErrStatOpen, os.ErrNotExist)
	}
	return line, nil
}

// failingSink rejects appends after limit lines.
type failingSink struct {
	lines []string
	limit int
}

func (s *failingSink) Append(line string) error {
	if len(s.lines) >= s.limit {
		return errBoom
	}
	s.lines = append(s.lines, line)
	return nil
}

func (s *failingSink) Flush() error { return nil }
func (s *failingSink) Close() error { return nil }
