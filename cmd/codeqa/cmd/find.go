package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codeqa/engine/internal/mcpserver"
	"github.com/codeqa/engine/internal/output"
)

func newFindCmd() *cobra.Command {
	var projectPath string

	cmd := &cobra.Command{
		Use:   "find <query...>",
		Short: "Rank an indexed project's files against a query",
		Long: `find runs pure keyword and symbol retrieval against an indexed
project — no session enrichment, no language model — and prints the
ranked files.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(cmd, strings.Join(args, " "), projectPath)
		},
	}
	cmd.Flags().StringVar(&projectPath, "project", ".", "Project root to search within")
	return cmd
}

func runFind(cmd *cobra.Command, query, projectPath string) error {
	out := output.NewWithColor(cmd.OutOrStdout(), !noColor)

	engine, cleanup, err := newEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	result := engine.FindRelevantFiles(cmd.Context(), mcpserver.FindRelevantFilesInput{
		Query:       query,
		ProjectPath: projectPath,
	})
	if result.Error != "" {
		out.Error(result.Error)
		return fmt.Errorf("find failed: %s", result.Error)
	}

	if len(result.Files) == 0 {
		out.Warning("no matching files")
		return nil
	}

	out.Successf("%d files (confidence: %s)", len(result.Files), result.Confidence)
	for _, f := range result.Files {
		out.Dim(f)
	}
	if result.Reasoning != "" {
		out.Dim(result.Reasoning)
	}
	return nil
}
