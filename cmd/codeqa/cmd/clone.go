package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codeqa/engine/internal/mcpserver"
	"github.com/codeqa/engine/internal/output"
)

func newCloneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clone <github-url>",
		Short: "Clone (or update) a GitHub repository and index it",
		Long: `clone accepts a GitHub URL or an owner/repo shorthand, clones it
(or pulls the latest commit if already cloned) into the index store's repo
cache, then runs a full index build against the checkout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClone(cmd, args[0])
		},
	}
	return cmd
}

func runClone(cmd *cobra.Command, githubURL string) error {
	out := output.NewWithColor(cmd.OutOrStdout(), !noColor)

	engine, cleanup, err := newEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	result := engine.CloneAndIndex(cmd.Context(), mcpserver.CloneAndIndexInput{GithubURL: githubURL})
	if result.Error != "" {
		out.Error(result.Error)
		return fmt.Errorf("clone failed: %s", result.Error)
	}

	out.Successf("%s %s: indexed %d files", result.CloneAction, result.OwnerRepo, result.FilesIndexed)
	out.Dim(result.ProjectRoot)
	return nil
}
