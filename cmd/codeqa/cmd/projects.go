package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codeqa/engine/internal/mcpserver"
	"github.com/codeqa/engine/internal/output"
)

func newProjectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List every currently indexed project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProjects(cmd)
		},
	}
}

func runProjects(cmd *cobra.Command) error {
	out := output.NewWithColor(cmd.OutOrStdout(), !noColor)

	engine, cleanup, err := newEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	result := engine.ListProjects()
	if result.Error != "" {
		out.Error(result.Error)
		return fmt.Errorf("listing projects failed: %s", result.Error)
	}

	if result.Total == 0 {
		out.Warning("no indexed projects")
		return nil
	}

	out.Successf("%d indexed projects", result.Total)
	for _, p := range result.Projects {
		out.Dimf("%s  %s  (%d files, indexed at %.0f)", p.ProjectID, p.ProjectRoot, p.TotalFiles, p.IndexedAt)
	}
	return nil
}
