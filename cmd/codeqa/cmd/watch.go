package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/codeqa/engine/internal/mcpserver"
	"github.com/codeqa/engine/internal/output"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Watch a project directory and keep its index up to date",
		Long: `watch starts a debounced filesystem watch on a project root and
runs update_index on every eligible change, until interrupted with Ctrl-C.

The watch only lives for the lifetime of this process — run 'codeqa serve'
instead if an agent needs to start and stop watches across a longer
session.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) == 1 {
				path = args[0]
			}
			return runWatch(cmd, path)
		},
	}
	return cmd
}

func runWatch(cmd *cobra.Command, path string) error {
	out := output.NewWithColor(cmd.OutOrStdout(), !noColor)

	engine, cleanup, err := newEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result := engine.WatchProject(ctx, mcpserver.WatchProjectInput{ProjectPath: path})
	if result.Error != "" {
		out.Error(result.Error)
		return fmt.Errorf("watch failed: %s", result.Error)
	}

	out.Successf("watching %s (Ctrl-C to stop)", result.ProjectPath)
	<-ctx.Done()

	unwatched := engine.UnwatchProject(mcpserver.UnwatchProjectInput{ProjectPath: result.ProjectPath})
	if unwatched.Error != "" {
		out.Warning(unwatched.Error)
	} else {
		out.Dim("watch stopped")
	}
	return nil
}
