package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/chazu/sketchsolve/internal/config"
	"github.com/chazu/sketchsolve/pkg/engine"
	"github.com/chazu/sketchsolve/pkg/export"
	"github.com/chazu/sketchsolve/pkg/solver"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// cli holds state shared by every subcommand of one invocation.
type cli struct {
	configFile string
	verbose    bool
	jsonOut    bool

	cfg config.Config
	app *App
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "sketchsolve",
		Short: "Solve planar parametric sketches",
		Long: `sketchsolve evaluates sketch description files, moves their points until every
geometric and dimensional constraint holds, and reports whether the sketch
is fully constrained, under-constrained, or failed to solve.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.configFile, "config", "", "config file (default: ./sketchsolve.yaml or the user config dir)")
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "log solver iterations")
	pf.BoolVar(&c.jsonOut, "json", false, "output as JSON")
	pf.Float64("tolerance", solver.DefaultTolerance, "convergence threshold on the residual norm")
	pf.Int("max-iterations", solver.DefaultMaxIterations, "Newton-Raphson iteration budget")
	pf.Float64("damping", solver.DefaultDamping, "Newton step scale, clamped to [0.1, 1.0]")
	pf.String("log-level", "info", "log level: debug, info, warn or error")
	pf.Duration("eval-timeout", engine.EvalTimeout, "time limit for evaluating one sketch")
	pf.Int("dxf-segments", export.DefaultSegments, "segments per full circle in DXF output")

	root.AddCommand(
		newSolveCmd(c),
		newValidateCmd(c),
		newWatchCmd(c),
		newInitCmd(c),
		newVersionCmd(),
	)
	return root
}

// setup loads configuration and builds the App.
func (c *cli) setup(cmd *cobra.Command) error {
	if cmd.Name() == "version" || cmd.Name() == "init" {
		return nil
	}

	cfg, err := config.Load(c.configFile, cmd.Flags())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	c.cfg = cfg

	level, _ := cfg.Level()
	if c.verbose {
		level = slog.LevelDebug
	}
	logger := newLogger(cmd.ErrOrStderr(), level)
	if cfg.File != "" {
		logger.Debug("config loaded", slog.String("file", cfg.File))
	}

	c.app = NewAppFromConfig(cfg, logger)
	return nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the sketchsolve version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "sketchsolve", version)
		},
	}
}

func newInitCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "init [DIR]",
		Short: "Write a default sketchsolve.yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			path, err := config.WriteDefault(dir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "wrote", path)
			return nil
		},
	}
}
