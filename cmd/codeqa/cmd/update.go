package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codeqa/engine/internal/mcpserver"
	"github.com/codeqa/engine/internal/output"
)

func newUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update [path]",
		Short: "Incrementally re-index a previously indexed project",
		Long: `update re-extracts only the files that changed since the last
index or update, and drops files that were deleted. Running it against a
project with no prior index fails — run 'codeqa index' first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) == 1 {
				path = args[0]
			}
			return runUpdate(cmd, path)
		},
	}
	return cmd
}

func runUpdate(cmd *cobra.Command, path string) error {
	out := output.NewWithColor(cmd.OutOrStdout(), !noColor)

	engine, cleanup, err := newEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	result := engine.UpdateIndex(cmd.Context(), mcpserver.UpdateIndexInput{ProjectPath: path})
	if result.Error != "" {
		out.Error(result.Error)
		return fmt.Errorf("update failed: %s", result.Error)
	}

	out.Successf("updated %d files, removed %d", result.FilesUpdated, result.FilesDeleted)
	for _, f := range result.UpdatedFiles {
		out.Dimf("~ %s", f)
	}
	for _, f := range result.DeletedFiles {
		out.Dimf("- %s", f)
	}
	return nil
}
