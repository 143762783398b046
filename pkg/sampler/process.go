//go:build linux

package sampler

import (
	"errors"
	"slices"
	"strconv"
	"strings"

	"github.com/ja7ad/mibtop/pkg/system/proc"
)

// ScanResult summarizes one pass of LogProcesses.
type ScanResult struct {
	Scanned    int  // stat lines read and appended
	Failed     int  // pids whose stat could not be opened or read
	RootFailed bool // the proc root itself could not be listed
}

// LogProcesses appends one "Process <pid>: <stat line>" entry per live
// process found under root, then "Processes scanned: <n>".
//
// A pid whose stat file vanished between listing and opening gets a
// "Could not open <path>" line and the scan moves on. Only a root that
// cannot be listed aborts the pass, with a single diagnostic line and no
// summary. The returned error reports sink failures only.
func LogProcesses(sink Sink, src proc.Source, root string, sortPIDs bool) (ScanResult, error) {
	var res ScanResult

	names, err := src.ListEntries(root)
	if err != nil {
		res.RootFailed = true
		return res, sink.Append("Failed to open " + root + " directory")
	}

	pids := make([]string, 0, len(names))
	for _, name := range names {
		if proc.IsPID(name) {
			pids = append(pids, name)
		}
	}
	if sortPIDs {
		slices.SortFunc(pids, comparePID)
	}

	for _, pid := range pids {
		line, err := src.ReadStat(root, pid)
		var out string
		switch {
		case err == nil:
			out = "Process " + pid + ": " + line
			res.Scanned++
		case errors.Is(err, proc.ErrStatRead):
			out = "Could not read " + proc.StatPath(root, pid)
			res.Failed++
		default:
			out = "Could not open " + proc.StatPath(root, pid)
			res.Failed++
		}
		if err := sink.Append(out); err != nil {
			return res, err
		}
	}

	return res, sink.Append("Processes scanned: " + strconv.Itoa(res.Scanned))
}

// comparePID orders digit strings numerically without parsing them, so
// arbitrarily long names cannot overflow.
func comparePID(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		return len(a) - len(b)
	}
	return strings.Compare(a, b)
}
