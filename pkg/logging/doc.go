// Package logging builds the structured slog logger used across mibtop.
//
// Diagnostics go to stderr as JSON; the sample log file is never used for
// them. Every record carries the module name, the build version and a random
// run id, so records from overlapping runs can be told apart:
//
//	{"time":"2026-10-19T14:30:00Z","level":"INFO","msg":"sampling started",
//	 "module":"mibtop","version":"v0.1.0","run":"5f0c...","interval":"1s"}
//
// Levels are debug, info (default), warn (or warning) and error. Debug adds
// source locations and a per-cycle record.
package logging
