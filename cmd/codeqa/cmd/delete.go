package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codeqa/engine/internal/mcpserver"
	"github.com/codeqa/engine/internal/output"
)

func newDeleteProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete-project <identifier>",
		Short: "Remove a project's stored index",
		Long: `delete-project removes a project's index, identified by its
canonical path, slug, or project_id — whichever 'codeqa projects' shows.
Session history is left intact.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeleteProject(cmd, args[0])
		},
	}
	return cmd
}

func runDeleteProject(cmd *cobra.Command, identifier string) error {
	out := output.NewWithColor(cmd.OutOrStdout(), !noColor)

	engine, cleanup, err := newEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	result := engine.DeleteProject(mcpserver.DeleteProjectInput{ProjectIdentifier: identifier})
	if result.Error != "" {
		out.Error(result.Error)
		return fmt.Errorf("delete failed: %s", result.Error)
	}

	if result.Deleted {
		out.Success(result.Message)
	} else {
		out.Warning(result.Message)
	}
	return nil
}
