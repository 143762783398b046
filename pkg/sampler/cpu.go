//go:build linux

package sampler

import (
	"bufio"
	"bytes"
	"errors"
	"io"

	"github.com/ja7ad/mibtop/pkg/system/proc"
)

// SnapshotPolicy decides how much of the statistics file is consumed.
type SnapshotPolicy int

const (
	// StopAtFirstMismatch stops at the first line without the "cpu" prefix.
	// The kernel emits the aggregate and per-core lines contiguously at the
	// top of /proc/stat, so nothing is lost.
	StopAtFirstMismatch SnapshotPolicy = iota
	// ScanAll reads the whole file and keeps every "cpu" line.
	ScanAll
)

func (p SnapshotPolicy) String() string {
	switch p {
	case ScanAll:
		return "scan-all"
	default:
		return "stop-at-first-mismatch"
	}
}

const cpuPrefix = "cpu"

// SnapshotResult summarizes one pass of LogCPUUsage.
type SnapshotResult struct {
	Lines  int  // cpu lines appended
	Failed bool // the file could not be opened or read to the end
}

// LogCPUUsage appends the "cpu" lines of the statistics file at path to the
// sink, in file order. If the file cannot be opened it appends
// "Failed to open <path>" and returns; that is not an error for the caller.
// The returned error reports sink failures only.
func LogCPUUsage(sink Sink, src proc.Source, path string, policy SnapshotPolicy) (SnapshotResult, error) {
	var res SnapshotResult

	rc, err := src.OpenSnapshot(path)
	if err != nil {
		res.Failed = true
		return res, sink.Append("Failed to open " + path)
	}
	defer func() {
		_ = rc.Close()
	}()

	br := bufio.NewReader(rc)
	for {
		line, match, err := readLine(br, policy == StopAtFirstMismatch)
		if errors.Is(err, io.EOF) {
			return res, nil
		}
		if err != nil {
			res.Failed = true
			return res, sink.Append("Failed to read " + path)
		}
		if !match {
			if policy == StopAtFirstMismatch {
				return res, nil
			}
			continue
		}
		if err := sink.Append(line); err != nil {
			return res, err
		}
		res.Lines++
	}
}

// readLine returns the next line of br without its line ending, and whether
// it starts with the cpu prefix. Only cpu lines are kept whole, so the length
// of the interrupt counter lines does not matter. When stopEarly is set the
// rest of a non-cpu line is left unread. io.EOF means no line was left.
func readLine(br *bufio.Reader, stopEarly bool) (string, bool, error) {
	var (
		buf   []byte
		match bool
	)
	for first := true; ; first = false {
		frag, err := br.ReadSlice('\n')
		if first {
			if len(frag) == 0 && err != nil {
				return "", false, err
			}
			match = bytes.HasPrefix(frag, []byte(cpuPrefix))
		}
		if match {
			buf = append(buf, frag...)
		}

		switch {
		case errors.Is(err, bufio.ErrBufferFull):
			if !match && stopEarly {
				return "", false, nil
			}
		case err == nil, errors.Is(err, io.EOF):
			buf = bytes.TrimSuffix(buf, []byte("\n"))
			buf = bytes.TrimSuffix(buf, []byte("\r"))
			return string(buf), match, nil
		default:
			return "", match, err
		}
	}
}
