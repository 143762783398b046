package config

import "errors"

var (
	// ErrInvalidInterval indicates an interval that is not a positive whole
	// number of seconds.
	ErrInvalidInterval = errors.New("config: invalid interval")

	// ErrInvalidLogLevel indicates an unknown log level name.
	ErrInvalidLogLevel = errors.New("config: invalid log level")

	// ErrInvalidConfig indicates an unreadable config file, bad arguments or
	// an empty required path.
	ErrInvalidConfig = errors.New("config: invalid configuration")
)
