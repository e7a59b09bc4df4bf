package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// watchDebounce coalesces the burst of events an editor save produces.
const watchDebounce = 100 * time.Millisecond

func newWatchCmd(c *cli) *cobra.Command {
	var dxfDir string

	cmd := &cobra.Command{
		Use:   "watch FILE",
		Short: "Re-solve a sketch file every time it is saved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			out := cmd.OutOrStdout()

			run := func() {
				r, err := c.app.SolveFile(path, dxfDir)
				if err != nil {
					c.app.logger.Error("solve failed", slog.String("file", path), slog.Any("error", err))
					return
				}
				if err := writeReports(out, []*Report{r}, c.jsonOut); err != nil {
					c.app.logger.Error("write report", slog.Any("error", err))
				}
			}

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("create watcher: %w", err)
			}
			defer watcher.Close()

			// Watch the directory: editors often replace the file on save.
			if err := watcher.Add(filepath.Dir(path)); err != nil {
				return fmt.Errorf("watch %s: %w", path, err)
			}

			run()
			return watchLoop(cmd.Context(), watcher, path, run)
		},
	}
	cmd.Flags().StringVar(&dxfDir, "dxf", "", "also write the solved sketch as DXF into `DIR`")
	return cmd
}

// watchLoop calls onChange after writes to path settle. It returns nil
// when ctx is cancelled or the watcher is closed.
func watchLoop(ctx context.Context, w *fsnotify.Watcher, path string, onChange func()) error {
	target := filepath.Clean(path)

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				timer.Reset(watchDebounce)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch %s: %w", path, err)

		case <-timer.C:
			onChange()
		}
	}
}
