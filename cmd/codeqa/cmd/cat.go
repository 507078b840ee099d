package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codeqa/engine/internal/mcpserver"
	"github.com/codeqa/engine/internal/output"
)

func newCatCmd() *cobra.Command {
	var projectPath string

	cmd := &cobra.Command{
		Use:   "cat <file-path>",
		Short: "Print one indexed file's reassembled source",
		Long: `cat returns one indexed file's reassembled source plus its
extracted symbols and keywords, read back from the index rather than the
filesystem.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCat(cmd, args[0], projectPath)
		},
	}
	cmd.Flags().StringVar(&projectPath, "project", ".", "Project root the file was indexed under")
	return cmd
}

func runCat(cmd *cobra.Command, filePath, projectPath string) error {
	out := output.NewWithColor(cmd.OutOrStdout(), !noColor)

	engine, cleanup, err := newEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	result := engine.GetFileContent(mcpserver.GetFileContentInput{
		FilePath:    filePath,
		ProjectPath: projectPath,
	})
	if result.Error != "" {
		out.Error(result.Error)
		return fmt.Errorf("cat failed: %s", result.Error)
	}

	out.Code(result.Content)
	if len(result.Symbols) > 0 {
		out.Dimf("symbols: %s", strings.Join(result.Symbols, ", "))
	}
	if len(result.Keywords) > 0 {
		out.Dimf("keywords: %s", strings.Join(result.Keywords, ", "))
	}
	return nil
}
