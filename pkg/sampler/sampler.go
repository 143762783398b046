//go:build linux

package sampler

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ja7ad/mibtop/pkg/system/proc"
)

// Sink is the append-only destination of every cycle.
type Sink interface {
	// Append writes one line; the newline is added by the sink.
	Append(line string) error
	Flush() error
	Close() error
}

// Recorder observes cycles, e.g. to export metrics. It must not block.
type Recorder interface {
	ObserveCycle(CycleStats)
	ObserveSinkError()
}

// CycleStats is what one cycle reports back to the loop. It is never
// written to the sink.
type CycleStats struct {
	CPULines       int
	Processes      int
	Failures       int
	SnapshotFailed bool
	RootFailed     bool
	Duration       time.Duration
}

// State of the sampling loop.
type State int32

const (
	Running State = iota
	Stopping
	Terminated
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Options configures a Sampler. Zero values fall back to the defaults.
type Options struct {
	Interval time.Duration  // pause between cycles, default DefaultInterval
	StatPath string         // default proc.DefaultStatPath
	ProcRoot string         // default proc.DefaultRoot
	Policy   SnapshotPolicy // default StopAtFirstMismatch
	SortPIDs bool

	Now      func() time.Time // default time.Now
	Recorder Recorder
	Logger   *slog.Logger
}

// DefaultInterval is the pause between two cycles.
const DefaultInterval = time.Second

// Sampler appends one timestamped cycle of CPU and process data to its sink
// per interval until its context is cancelled.
type Sampler struct {
	sink  Sink
	src   proc.Source
	opts  Options
	log   *slog.Logger
	state atomic.Int32
	cycle uint64
}

// New returns a Sampler in the Running state. The sink must already be open;
// failing to acquire it is the caller's startup fault.
func New(sink Sink, src proc.Source, opts Options) (*Sampler, error) {
	if sink == nil {
		return nil, ErrNilSink
	}
	if src == nil {
		return nil, ErrNilSource
	}
	if opts.Interval < 0 {
		return nil, ErrBadInterval
	}
	if opts.Interval == 0 {
		opts.Interval = DefaultInterval
	}
	if opts.StatPath == "" {
		opts.StatPath = proc.DefaultStatPath
	}
	if opts.ProcRoot == "" {
		opts.ProcRoot = proc.DefaultRoot
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Sampler{
		sink: sink,
		src:  src,
		opts: opts,
		log:  opts.Logger.With("component", "sampler"),
	}
	s.state.Store(int32(Running))
	return s, nil
}

// State returns the current loop state. Safe for concurrent use.
func (s *Sampler) State() State {
	return State(s.state.Load())
}

// Run executes cycles until ctx is cancelled, then flushes and closes the
// sink. Cancellation is observed between cycles only: a cycle in progress
// always completes. The pause between cycles is interrupted by cancellation.
func (s *Sampler) Run(ctx context.Context) error {
	s.log.Info("sampling started",
		"interval", s.opts.Interval,
		"stat_path", s.opts.StatPath,
		"proc_root", s.opts.ProcRoot,
		"policy", s.opts.Policy.String(),
		"sort_pids", s.opts.SortPIDs,
	)

	for ctx.Err() == nil {
		if _, err := s.Cycle(); err != nil {
			s.log.Error("cycle output incomplete", "cycle", s.cycle, "error", err)
		}
		if !sleep(ctx, s.opts.Interval) {
			break
		}
	}

	s.log.Info("stop requested", "cycles", s.cycle)
	return s.Shutdown()
}

// Cycle performs one sampling cycle: timestamp marker, cpu lines, process
// entries, flush. The error reports sink failures; collection failures are
// written to the sink as diagnostic lines instead.
func (s *Sampler) Cycle() (CycleStats, error) {
	start := time.Now()
	s.cycle++

	var stats CycleStats
	err := s.collect(&stats)
	if ferr := s.sink.Flush(); ferr != nil {
		err = errors.Join(err, ferr)
	}
	stats.Duration = time.Since(start)

	if err != nil {
		s.opts.Recorder.ObserveSinkError()
	}
	s.opts.Recorder.ObserveCycle(stats)

	s.log.Debug("cycle done",
		"cycle", s.cycle,
		"cpu_lines", stats.CPULines,
		"processes", stats.Processes,
		"failures", stats.Failures,
		"duration", stats.Duration,
	)
	if stats.SnapshotFailed {
		s.log.Warn("statistics file unavailable", "path", s.opts.StatPath)
	}
	if stats.RootFailed {
		s.log.Warn("proc root unavailable", "path", s.opts.ProcRoot)
	}
	return stats, err
}

func (s *Sampler) collect(stats *CycleStats) error {
	if err := s.sink.Append(TimestampLine(s.opts.Now())); err != nil {
		return err
	}

	snap, err := LogCPUUsage(s.sink, s.src, s.opts.StatPath, s.opts.Policy)
	stats.CPULines = snap.Lines
	stats.SnapshotFailed = snap.Failed
	if err != nil {
		return err
	}

	scan, err := LogProcesses(s.sink, s.src, s.opts.ProcRoot, s.opts.SortPIDs)
	stats.Processes = scan.Scanned
	stats.Failures = scan.Failed
	stats.RootFailed = scan.RootFailed
	return err
}

// Shutdown moves the loop through Stopping to Terminated, flushing and
// closing the sink on the way. It is called by Run; call it directly only
// when driving Cycle by hand.
func (s *Sampler) Shutdown() error {
	if !s.state.CompareAndSwap(int32(Running), int32(Stopping)) {
		return ErrNotRunning
	}
	err := errors.Join(s.sink.Flush(), s.sink.Close())
	s.state.Store(int32(Terminated))
	if err != nil {
		s.log.Error("closing log sink", "error", err)
		return err
	}
	s.log.Info("sampling terminated", "cycles", s.cycle)
	return nil
}

// sleep waits for d or until ctx is done, reporting whether the full
// duration elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

type nopRecorder struct{}

func (nopRecorder) ObserveCycle(CycleStats) {}
func (nopRecorder) ObserveSinkError()       {}
