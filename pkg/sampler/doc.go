// Package sampler implements the sampling loop: once per interval it appends
// a timestamp marker, the "cpu" lines of the kernel statistics file and the
// raw stat line of every live process to a log sink.
//
// A cycle in the log looks like this:
//
//	### Timestamp: Mon Oct 19 14:30:00 2026
//	cpu  4705 356 584 3699 23 23 0 0 0 0
//	cpu0 1393 280 234 1099 4 11 0 0 0 0
//	Process 1: 1 (systemd) S 0 1 1 0 -1 4194560 ...
//	Could not open /proc/4242/stat
//	Processes scanned: 1
//
// Consumers split the log on the marker line, so the order timestamp, cpu
// lines, process entries, summary is fixed.
//
// Collection failures never stop the loop. They are written to the sink as
// plain text lines and the next cycle starts as usual.
package sampler
