package sampler

import "errors"

var (
	// ErrNilSink indicates that New was called without a sink.
	ErrNilSink = errors.New("sampler: nil sink")

	// ErrNilSource indicates that New was called without a proc source.
	ErrNilSource = errors.New("sampler: nil source")

	// ErrBadInterval indicates a negative interval.
	ErrBadInterval = errors.New("sampler: interval must be >= 0")

	// ErrNotRunning indicates Shutdown on a loop that already stopped.
	ErrNotRunning = errors.New("sampler: not running")
)
