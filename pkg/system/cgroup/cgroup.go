//go:build linux

package cgroup

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

type Version int

const (
	Unsupported Version = iota // no cgroup mounts
	V1                         // legacy multi-hierarchy cgroup v1
	V2                         // unified cgroup v2
	Hybrid                     // both v1 and v2 present
)

func (v Version) String() string {
	switch v {
	case V1:
		return "cgroup v1"
	case V2:
		return "cgroup v2"
	case Hybrid:
		return "cgroup hybrid"
	default:
		return "unsupported"
	}
}

// Layout is the cgroup hierarchy visible under a proc root. It is logged
// once at startup so a sample log can be matched to the host it came from.
type Layout struct {
	V1 []string // cgroup v1 mount points, mountinfo order
	V2 []string // cgroup2 mount points
}

// Version classifies the layout.
func (l Layout) Version() Version {
	switch {
	case len(l.V1) > 0 && len(l.V2) > 0:
		return Hybrid
	case len(l.V2) > 0:
		return V2
	case len(l.V1) > 0:
		return V1
	default:
		return Unsupported
	}
}

// LogValue implements slog.LogValuer.
func (l Layout) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("version", l.Version().String())}
	if len(l.V2) > 0 {
		attrs = append(attrs, slog.Any("v2", l.V2))
	}
	if len(l.V1) > 0 {
		attrs = append(attrs, slog.Any("v1", l.V1))
	}
	return slog.GroupValue(attrs...)
}

// Detect reads <procRoot>/self/mountinfo. A proc root other than /proc is
// honored so the startup log describes the tree that is actually sampled.
func Detect(procRoot string) (Layout, error) {
	f, err := os.Open(filepath.Join(procRoot, "self", "mountinfo"))
	if err != nil {
		return Layout{}, fmt.Errorf("open mountinfo: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return Parse(f)
}

// Parse collects cgroup mount points from a mountinfo stream. Lines that do
// not follow the proc(5) format are skipped.
func Parse(r io.Reader) (Layout, error) {
	var l Layout
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fstype, mountPoint, ok := mountEntry(sc.Text())
		if !ok {
			continue
		}
		switch fstype {
		case "cgroup2":
			l.V2 = append(l.V2, mountPoint)
		case "cgroup":
			l.V1 = append(l.V1, mountPoint)
		}
	}
	if err := sc.Err(); err != nil {
		return Layout{}, fmt.Errorf("scan mountinfo: %w", err)
	}
	return l, nil
}

// mountEntry splits "id parent major:minor root mount-point opts... - fstype src sopts".
func mountEntry(line string) (fstype, mountPoint string, ok bool) {
	i := strings.LastIndex(line, " - ")
	if i < 0 {
		return "", "", false
	}
	post := strings.Fields(line[i+3:])
	pre := strings.Fields(line[:i])
	if len(post) == 0 || len(pre) < 5 {
		return "", "", false
	}
	return post[0], pre[4], true
}
