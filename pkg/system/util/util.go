//go:build linux

package util

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// Summary describes the host being sampled. It is logged once at startup
// so that a log file can be matched to the machine that produced it.
type Summary struct {
	Host    string
	Kernel  string
	Machine string
	CPUs    int
}

// SystemSummary returns host name, kernel release and CPU count.
// Fields that cannot be determined are left as "unknown".
func SystemSummary() Summary {
	s := Summary{
		Host:    "unknown",
		Kernel:  "unknown",
		Machine: "unknown",
		CPUs:    runtime.NumCPU(),
	}

	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return s
	}
	if v := unix.ByteSliceToString(u.Nodename[:]); v != "" {
		s.Host = v
	}
	if v := unix.ByteSliceToString(u.Release[:]); v != "" {
		s.Kernel = v
	}
	if v := unix.ByteSliceToString(u.Machine[:]); v != "" {
		s.Machine = v
	}
	return s
}

