package sink

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/ja7ad/mibtop/pkg/types"
)

// ErrClosed is returned by operations on a closed sink.
var ErrClosed = errors.New("sink: closed")

// File is an append-only, buffered log file. It has a single writer (the
// sampling loop); it is not safe for concurrent use.
type File struct {
	path    string
	f       *os.File
	w       *bufio.Writer
	written types.Bytes
	closed  bool
}

// OpenFile opens path for appending, creating it with mode 0644 if needed.
// Existing content is never truncated.
func OpenFile(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return &File{
		path: path,
		f:    f,
		w:    bufio.NewWriter(f),
	}, nil
}

// Path returns the file path the sink was opened with.
func (s *File) Path() string { return s.path }

// Written returns the number of bytes appended through this sink.
func (s *File) Written() types.Bytes { return s.written }

// Append writes line followed by a newline.
func (s *File) Append(line string) error {
	if s.closed {
		return ErrClosed
	}
	n, err := s.w.WriteString(line)
	s.written += types.Bytes(n)
	if err != nil {
		return err
	}
	if err := s.w.WriteByte('\n'); err != nil {
		return err
	}
	s.written++
	return nil
}

// Flush pushes buffered lines to the file.
func (s *File) Flush() error {
	if s.closed {
		return ErrClosed
	}
	return s.w.Flush()
}

// Close flushes and closes the file. Closing twice returns ErrClosed.
func (s *File) Close() error {
	if s.closed {
		return ErrClosed
	}
	s.closed = true
	return errors.Join(s.w.Flush(), s.f.Close())
}

// Memory is an in-memory sink. Lines become visible in Lines only after
// Flush, mirroring the file sink's buffering.
type Memory struct {
	mu      sync.Mutex
	pending []string
	lines   []string
	flushes int
	closed  bool
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Append(line string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.pending = append(m.pending, line)
	return nil
}

func (m *Memory) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.lines = append(m.lines, m.pending...)
	m.pending = m.pending[:0]
	m.flushes++
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.lines = append(m.lines, m.pending...)
	m.pending = nil
	m.closed = true
	return nil
}

// Lines returns a copy of the flushed lines.
func (m *Memory) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lines...)
}

// Pending returns lines appended since the last flush.
func (m *Memory) Pending() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.pending...)
}

func (m *Memory) Flushes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flushes
}

func (m *Memory) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
