// Package config loads solver and CLI settings with Viper.
//
// Precedence, highest first: command-line flags, SKETCHSOLVE_* environment
// variables, the config file, built-in defaults.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chazu/sketchsolve/pkg/engine"
	"github.com/chazu/sketchsolve/pkg/export"
	"github.com/chazu/sketchsolve/pkg/solver"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configFileName = "sketchsolve"
	configFileType = "yaml"
	configFileExt  = "sketchsolve.yaml"

	// EnvPrefix prefixes every environment override, e.g. SKETCHSOLVE_DAMPING.
	EnvPrefix = "SKETCHSOLVE"

	KeyTolerance     = "tolerance"
	KeyMaxIterations = "max_iterations"
	KeyDamping       = "damping"
	KeyLogLevel      = "log_level"
	KeyEvalTimeout   = "eval_timeout"
	KeyDXFSegments   = "dxf_segments"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid value")

// DefaultYAML is written by WriteDefault.
const DefaultYAML = `# sketchsolve configuration

# Newton-Raphson convergence threshold on the residual norm.
tolerance: 0.0001

# Iteration budget per solve.
max_iterations: 200

# Step scale, clamped to [0.1, 1.0].
damping: 0.8

# debug, info, warn or error.
log_level: info

# Hard limit for evaluating one sketch file.
eval_timeout: 5s

# Segments per full circle in DXF output.
dxf_segments: 64
`

// Config is the effective configuration.
type Config struct {
	Tolerance     float64       `mapstructure:"tolerance"`
	MaxIterations int           `mapstructure:"max_iterations"`
	Damping       float64       `mapstructure:"damping"`
	LogLevel      string        `mapstructure:"log_level"`
	EvalTimeout   time.Duration `mapstructure:"eval_timeout"`
	DXFSegments   int           `mapstructure:"dxf_segments"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

// flagKeys maps command-line flag names onto config keys.
var flagKeys = map[string]string{
	"tolerance":      KeyTolerance,
	"max-iterations": KeyMaxIterations,
	"damping":        KeyDamping,
	"log-level":      KeyLogLevel,
	"eval-timeout":   KeyEvalTimeout,
	"dxf-segments":   KeyDXFSegments,
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyTolerance, solver.DefaultTolerance)
	v.SetDefault(KeyMaxIterations, solver.DefaultMaxIterations)
	v.SetDefault(KeyDamping, solver.DefaultDamping)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyEvalTimeout, engine.EvalTimeout)
	v.SetDefault(KeyDXFSegments, export.DefaultSegments)
}

// Load builds the effective configuration. An explicit path must exist;
// without one, sketchsolve.yaml is looked up in the working directory and
// then in the user config directory, and a missing file is not an error.
// Flags present in fs are bound to their keys; fs may be nil.
func Load(path string, fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "sketchsolve"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the solver cannot use. Damping outside
// [0.1, 1.0] is accepted here and clamped by the solver.
func (c Config) Validate() error {
	switch {
	case c.Tolerance <= 0:
		return fmt.Errorf("%w: %s must be positive, got %g", ErrInvalid, KeyTolerance, c.Tolerance)
	case c.MaxIterations < 0:
		return fmt.Errorf("%w: %s must not be negative, got %d", ErrInvalid, KeyMaxIterations, c.MaxIterations)
	case c.Damping <= 0:
		return fmt.Errorf("%w: %s must be positive, got %g", ErrInvalid, KeyDamping, c.Damping)
	case c.EvalTimeout < 0:
		return fmt.Errorf("%w: %s must not be negative, got %s", ErrInvalid, KeyEvalTimeout, c.EvalTimeout)
	case c.DXFSegments < 0:
		return fmt.Errorf("%w: %s must not be negative, got %d", ErrInvalid, KeyDXFSegments, c.DXFSegments)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: %s %q", ErrInvalid, KeyLogLevel, c.LogLevel)
	}
	return l, nil
}

// Solver returns a solver configured from c.
func (c Config) Solver(logger *slog.Logger) *solver.Solver {
	return solver.New().
		WithTolerance(c.Tolerance).
		WithMaxIterations(c.MaxIterations).
		WithDamping(c.Damping).
		WithLogger(logger)
}

// ExportOptions returns the DXF options configured by c.
func (c Config) ExportOptions() export.Options {
	opts := export.DefaultOptions()
	if c.DXFSegments > 0 {
		opts.Segments = c.DXFSegments
	}
	return opts
}

// WriteDefault writes DefaultYAML into dir unless a config file already
// exists there. It returns the file path.
func WriteDefault(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure config dir: %w", err)
	}
	path := filepath.Join(dir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return path, nil
	}
	if !os.IsNotExist(err) {
		return "", fmt.Errorf("stat config file: %w", err)
	}
	if err := os.WriteFile(path, []byte(DefaultYAML), 0o644); err != nil {
		return "", fmt.Errorf("write config file: %w", err)
	}
	return path, nil
}
