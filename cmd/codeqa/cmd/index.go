package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codeqa/engine/internal/mcpserver"
	"github.com/codeqa/engine/internal/output"
)

func newIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index [path]",
		Short: "Build a full index of a local project directory",
		Long: `index walks a project directory, extracts symbols, keywords, and
chunks from every eligible file, and replaces any prior index for that root.

Run 'codeqa update' afterward to re-index only what changed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) == 1 {
				path = args[0]
			}
			return runIndex(cmd, path)
		},
	}
	return cmd
}

func runIndex(cmd *cobra.Command, path string) error {
	out := output.NewWithColor(cmd.OutOrStdout(), !noColor)

	engine, cleanup, err := newEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	result := engine.IndexProject(cmd.Context(), mcpserver.IndexProjectInput{ProjectPath: path})
	if result.Error != "" {
		out.Error(result.Error)
		return fmt.Errorf("index failed: %s", result.Error)
	}

	out.Successf("indexed %d files under %s", result.FilesIndexed, result.ProjectRoot)
	if result.Message != "" {
		out.Dim(result.Message)
	}
	return nil
}
