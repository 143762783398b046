package proc

import "errors"

var (
	// ErrStatOpen indicates that <root>/<pid>/stat could not be opened,
	// usually because the process exited after the directory listing.
	ErrStatOpen = errors.New("proc: open stat")

	// ErrStatRead indicates that <root>/<pid>/stat was opened but reading
	// its first line failed.
	ErrStatRead = errors.New("proc: read stat")

	// ErrRootOpen indicates that the proc root directory could not be listed.
	ErrRootOpen = errors.New("proc: open root")
)
