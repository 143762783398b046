package types

import (
	"fmt"
	"log/slog"
)

// Bytes is a size in bytes. The sink uses it to report how much a run
// appended to the log file.
type Bytes uint64

var units = []string{"KB", "MB", "GB", "TB"}

// Humanized returns a human-readable string with automatic unit (B, KB, MB, GB, TB),
// 1024 based.
func (b Bytes) Humanized() string {
	if b < 1<<10 {
		return fmt.Sprintf("%d B", uint64(b))
	}
	v := float64(b) / 1024
	i := 0
	for v >= 1024 && i < len(units)-1 {
		v /= 1024
		i++
	}
	return fmt.Sprintf("%.2f %s", v, units[i])
}

func (b Bytes) String() string { return b.Humanized() }

// LogValue implements slog.LogValuer.
func (b Bytes) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("bytes", uint64(b)),
		slog.String("human", b.Humanized()),
	)
}
