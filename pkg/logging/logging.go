package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

// ParseLevel converts a level name (debug, info, warn/warning, error) into a
// slog.Level. Matching is case-insensitive; an empty name means info.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// NewStructuredLogger returns a JSON logger writing to w, tagged with module,
// version and a random per-run id. Debug level adds source locations.
func NewStructuredLogger(w io.Writer, module, version string, level slog.Level) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
	})
	return slog.New(h).With(
		slog.String("module", module),
		slog.String("version", version),
		slog.String("run", uuid.NewString()),
	)
}

// SetDefaultStructuredLogger installs a stderr logger as the slog default
// and returns it.
func SetDefaultStructuredLogger(module, version string, level slog.Level) *slog.Logger {
	l := NewStructuredLogger(os.Stderr, module, version, level)
	slog.SetDefault(l)
	return l
}
