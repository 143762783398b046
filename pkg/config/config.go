package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ja7ad/mibtop/pkg/logging"
)

const (
	DefaultInterval = 1 // seconds
	DefaultLogPath  = "/tmp/mibtop_log.txt"
	DefaultStatPath = "/proc/stat"
	DefaultProcRoot = "/proc"
	DefaultLogLevel = "info"

	// MaxInterval is the largest interval, in seconds, that fits a
	// time.Duration.
	MaxInterval = math.MaxInt64 / int64(time.Second)
)

// Keys shared by flags, the config file and viper.
const (
	KeyInterval    = "interval"
	KeyLogPath     = "log_path"
	KeyStatPath    = "stat_path"
	KeyProcRoot    = "proc_root"
	KeyScanAll     = "scan_all"
	KeySortPIDs    = "sort_pids"
	KeyLogLevel    = "log_level"
	KeyMetricsAddr = "metrics_addr"
)

// Config is the effective configuration of one run.
type Config struct {
	// Interval between cycles, in whole seconds.
	Interval    int    `mapstructure:"interval" yaml:"interval"`
	LogPath     string `mapstructure:"log_path" yaml:"log_path"`
	StatPath    string `mapstructure:"stat_path" yaml:"stat_path"`
	ProcRoot    string `mapstructure:"proc_root" yaml:"proc_root"`
	ScanAll     bool   `mapstructure:"scan_all" yaml:"scan_all"`
	SortPIDs    bool   `mapstructure:"sort_pids" yaml:"sort_pids"`
	LogLevel    string `mapstructure:"log_level" yaml:"log_level"`
	MetricsAddr string `mapstructure:"metrics_addr" yaml:"metrics_addr,omitempty"`
}

// Default returns the configuration used when nothing is specified.
func Default() Config {
	return Config{
		Interval: DefaultInterval,
		LogPath:  DefaultLogPath,
		StatPath: DefaultStatPath,
		ProcRoot: DefaultProcRoot,
		LogLevel: DefaultLogLevel,
	}
}

// SetDefaults registers Default() on v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault(KeyInterval, d.Interval)
	v.SetDefault(KeyLogPath, d.LogPath)
	v.SetDefault(KeyStatPath, d.StatPath)
	v.SetDefault(KeyProcRoot, d.ProcRoot)
	v.SetDefault(KeyScanAll, d.ScanAll)
	v.SetDefault(KeySortPIDs, d.SortPIDs)
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyMetricsAddr, d.MetricsAddr)
}

// Load resolves the configuration from v. If file is not empty it is read as
// YAML first; values set through bound flags take precedence over it.
// Environment variables are not consulted.
func Load(v *viper.Viper, file string) (Config, error) {
	SetDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("%w: read %s: %w", ErrInvalidConfig, file, err)
		}
	}

	// viper decodes weakly and would truncate 1.5 to 1.
	if err := checkInterval(v.Get(KeyInterval)); err != nil {
		return Config{}, err
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return c, nil
}

// ApplyArgs applies the positional arguments [interval] [logpath]. The
// command limits them to two.
func (c *Config) ApplyArgs(args []string) error {
	if len(args) > 0 {
		n, err := ParseInterval(args[0])
		if err != nil {
			return err
		}
		c.Interval = n
	}
	if len(args) > 1 {
		c.LogPath = args[1]
	}
	return nil
}

// ParseInterval parses a whole, positive number of seconds.
func ParseInterval(s string) (int, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a whole number of seconds", ErrInvalidInterval, s)
	}
	if err := checkRange(n); err != nil {
		return 0, err
	}
	return int(n), nil
}

func checkRange(n int64) error {
	if n <= 0 {
		return fmt.Errorf("%w: %d must be greater than zero", ErrInvalidInterval, n)
	}
	if n > MaxInterval || n > math.MaxInt {
		return fmt.Errorf("%w: %d exceeds %d seconds", ErrInvalidInterval, n, MaxInterval)
	}
	return nil
}

// checkInterval validates a raw interval value as decoded from YAML.
func checkInterval(raw any) error {
	switch n := raw.(type) {
	case int:
		return checkRange(int64(n))
	case int64:
		return checkRange(n)
	case string:
		_, err := ParseInterval(n)
		return err
	default:
		return fmt.Errorf("%w: %v is not a whole number of seconds", ErrInvalidInterval, raw)
	}
}

// Validate checks the configuration for values the sampler cannot run with.
func (c Config) Validate() error {
	if err := checkRange(int64(c.Interval)); err != nil {
		return err
	}
	if c.LogPath == "" {
		return fmt.Errorf("%w: log path is empty", ErrInvalidConfig)
	}
	if c.StatPath == "" {
		return fmt.Errorf("%w: stat path is empty", ErrInvalidConfig)
	}
	if c.ProcRoot == "" {
		return fmt.Errorf("%w: proc root is empty", ErrInvalidConfig)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidLogLevel, err)
	}
	return nil
}

// IntervalDuration returns Interval as a time.Duration.
func (c Config) IntervalDuration() time.Duration {
	return time.Duration(c.Interval) * time.Second
}

// YAML renders the configuration in config file form.
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
