//go:build linux

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/ja7ad/mibtop/pkg/config"
	"github.com/ja7ad/mibtop/pkg/logging"
	"github.com/ja7ad/mibtop/pkg/metrics"
	"github.com/ja7ad/mibtop/pkg/sampler"
	"github.com/ja7ad/mibtop/pkg/sink"
	"github.com/ja7ad/mibtop/pkg/system/cgroup"
	"github.com/ja7ad/mibtop/pkg/system/proc"
	"github.com/ja7ad/mibtop/pkg/system/util"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

type opts struct {
	configFile  string
	once        bool
	printConfig bool
}

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(exitCode(err))
	}
}

func newRootCmd() *cobra.Command {
	var o opts
	v := viper.New()

	root := &cobra.Command{
		Use:   "mibtop [interval] [logpath]",
		Short: "Append raw /proc CPU and process samples to a log file",
		Long: `mibtop samples the host on a fixed interval. Each cycle appends a
timestamp marker, the cpu lines of /proc/stat and the raw /proc/<pid>/stat
line of every live process to a plain text log file, until SIGINT or SIGTERM.

  interval  seconds between cycles (default 1)
  logpath   file to append to (default /tmp/mibtop_log.txt)

Examples:
  mibtop
  mibtop 5 /var/log/mibtop.txt
  mibtop --sort-pids --metrics-addr 127.0.0.1:9101 2 ./samples.txt`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.MaximumNArgs(2)(cmd, args); err != nil {
				return fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, v, o, args)
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	})

	f := root.Flags()
	f.StringVar(&o.configFile, "config", "", "YAML config file")
	f.BoolVar(&o.once, "once", false, "write a single cycle and exit")
	f.BoolVar(&o.printConfig, "print-config", false, "print the effective configuration as YAML and exit")
	f.String("log-level", config.DefaultLogLevel, "diagnostic log level: debug, info, warn, error")
	f.String("stat-path", config.DefaultStatPath, "kernel statistics file")
	f.String("proc-root", config.DefaultProcRoot, "process pseudo-filesystem root")
	f.Bool("scan-all", false, "keep every cpu line of the statistics file instead of stopping at the first other line")
	f.Bool("sort-pids", false, "write processes in numeric pid order instead of directory order")
	f.String("metrics-addr", "", "serve Prometheus metrics on this address (disabled when empty)")

	for key, name := range map[string]string{
		config.KeyLogLevel:    "log-level",
		config.KeyStatPath:    "stat-path",
		config.KeyProcRoot:    "proc-root",
		config.KeyScanAll:     "scan-all",
		config.KeySortPIDs:    "sort-pids",
		config.KeyMetricsAddr: "metrics-addr",
	} {
		cobra.CheckErr(v.BindPFlag(key, f.Lookup(name)))
	}

	return root
}

func run(cmd *cobra.Command, v *viper.Viper, o opts, args []string) error {
	cfg, err := config.Load(v, o.configFile)
	if err != nil {
		return err
	}
	if err := cfg.ApplyArgs(args); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if o.printConfig {
		b, err := cfg.YAML()
		if err != nil {
			return fmt.Errorf("render config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(b)
		return err
	}

	level, _ := logging.ParseLevel(cfg.LogLevel)
	logger := logging.SetDefaultStructuredLogger("mibtop", version, level)

	host := util.SystemSummary()
	cg, err := cgroup.Detect(cfg.ProcRoot)
	if err != nil {
		logger.Debug("cgroup detection failed", "error", err)
	}
	logger.Info("host",
		"host", host.Host,
		"kernel", host.Kernel,
		"machine", host.Machine,
		"cpus", host.CPUs,
		"cgroup", cg,
	)

	out, err := sink.OpenFile(cfg.LogPath)
	if err != nil {
		return err
	}

	var rec sampler.Recorder
	var m *metrics.Metrics
	if cfg.MetricsAddr != "" {
		m = metrics.New()
		rec = m
	}

	policy := sampler.StopAtFirstMismatch
	if cfg.ScanAll {
		policy = sampler.ScanAll
	}

	s, err := sampler.New(out, proc.NewFS(), sampler.Options{
		Interval: cfg.IntervalDuration(),
		StatPath: cfg.StatPath,
		ProcRoot: cfg.ProcRoot,
		Policy:   policy,
		SortPIDs: cfg.SortPIDs,
		Recorder: rec,
		Logger:   logger,
	})
	if err != nil {
		_ = out.Close()
		return err
	}

	if o.once {
		_, cerr := s.Cycle()
		err := errors.Join(cerr, s.Shutdown())
		logger.Info("log file closed", "path", out.Path(), "written", out.Written())
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.Run(gctx)
	})
	if m != nil {
		g.Go(func() error {
			return m.Serve(gctx, cfg.MetricsAddr)
		})
	}

	err = g.Wait()
	logger.Info("log file closed", "path", out.Path(), "written", out.Written())
	return err
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, config.ErrInvalidInterval),
		errors.Is(err, config.ErrInvalidLogLevel),
		errors.Is(err, config.ErrInvalidConfig):
		return exitUsage
	default:
		return exitFailure
	}
}
