// Package cmd provides the codeqa CLI commands.
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/codeqa/engine/internal/logging"
	"github.com/codeqa/engine/pkg/version"
)

var (
	baseDir        string
	configPath     string
	noColor        bool
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd builds the codeqa command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "codeqa",
		Short: "Offline question-answering retrieval engine for codebases",
		Long: `codeqa indexes a local project or GitHub repository and answers
natural-language questions about it by retrieving the most relevant source
— hybrid keyword and symbol matching, with an optional dense-embedding
boost — never by calling a language model itself.

Every operation is also reachable as an MCP tool via 'codeqa serve'.`,
		Version:           version.Version,
		SilenceUsage:      true,
		PersistentPreRunE: setupLogging,
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			teardownLogging()
			return nil
		},
	}
	cmd.SetVersionTemplate("codeqa version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&baseDir, "base-dir", "", "Override the index storage directory (default $HOME/.codebase-qa-agent)")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a codeqa config YAML file")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.codebase-qa-agent/logs/")

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newUpdateCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newUnwatchCmd())
	cmd.AddCommand(newCloneCmd())
	cmd.AddCommand(newDeleteProjectCmd())
	cmd.AddCommand(newAskCmd())
	cmd.AddCommand(newFindCmd())
	cmd.AddCommand(newProjectsCmd())
	cmd.AddCommand(newCatCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newLogsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func setupLogging(cmd *cobra.Command, _ []string) error {
	// The MCP stdio transport owns stdout exclusively; a stray log line to
	// stderr can still confuse a client that merges the two streams, so
	// 'serve' always goes through the dedicated MCP-safe setup instead of
	// the general-purpose one every other subcommand uses.
	if cmd.Name() == "serve" {
		var (
			cleanup func()
			err     error
		)
		if debugMode {
			cleanup, err = logging.SetupMCPMode()
		} else {
			cleanup, err = logging.SetupMCPModeWithLevel("info")
		}
		if err != nil {
			return err
		}
		loggingCleanup = cleanup
		return nil
	}

	logCfg := logging.DefaultConfig()
	if debugMode {
		logCfg = logging.DebugConfig()
	}

	logger, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		return err
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	return nil
}

func teardownLogging() {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
}
