package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codeqa/engine/internal/mcpserver"
	"github.com/codeqa/engine/internal/output"
)

func newUnwatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unwatch [path]",
		Short: "Stop watching a project root",
		Long: `unwatch stops a filesystem watch on the given project root, if one
is active in the current process.

A 'codeqa watch' started from its own invocation already stops on Ctrl-C;
this command only matters against a watcher living in a longer-running
process, such as 'codeqa serve'.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) == 1 {
				path = args[0]
			}
			return runUnwatch(cmd, path)
		},
	}
	return cmd
}

func runUnwatch(cmd *cobra.Command, path string) error {
	out := output.NewWithColor(cmd.OutOrStdout(), !noColor)

	engine, cleanup, err := newEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	result := engine.UnwatchProject(mcpserver.UnwatchProjectInput{ProjectPath: path})
	if result.Error != "" {
		out.Error(result.Error)
		return fmt.Errorf("unwatch failed: %s", result.Error)
	}

	if result.Stopped {
		out.Success("watch stopped")
	} else {
		out.Warning("no active watch on that root in this process")
	}
	return nil
}
