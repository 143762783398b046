package sampler

import "time"

// TimestampLayout matches strftime "%a %b %e %T %Y". Go layouts use fixed
// English names, so the output does not depend on the process locale.
const TimestampLayout = "Mon Jan _2 15:04:05 2006"

// TimestampPrefix starts the marker line that opens every cycle.
const TimestampPrefix = "### Timestamp: "

// TimestampLine returns the cycle marker for t, in t's location.
func TimestampLine(t time.Time) string {
	return TimestampPrefix + t.Format(TimestampLayout)
}
