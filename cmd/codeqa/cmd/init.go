package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/codeqa/engine/configs"
	"github.com/codeqa/engine/internal/output"
)

// mcpServerConfig is one entry of .mcp.json's mcpServers map.
type mcpServerConfig struct {
	Type    string   `json:"type,omitempty"`
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
	Cwd     string   `json:"cwd,omitempty"`
}

// mcpJSONConfig is the root shape of .mcp.json, the format Claude Code and
// similar agent frameworks read to discover local MCP servers.
type mcpJSONConfig struct {
	MCPServers map[string]mcpServerConfig `json:"mcpServers"`
}

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Scaffold .codeqa.yaml and .mcp.json for a project",
		Long: `init writes a commented .codeqa.yaml template (unless one already
exists) and registers codeqa as an MCP server in .mcp.json, so an agent
framework such as Claude Code can discover "codeqa serve" without manual
configuration. It does not index the project — run "codeqa index" separately.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) == 1 {
				path = args[0]
			}
			return runInit(cmd, path, force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing .codeqa.yaml or .mcp.json entry")
	return cmd
}

func runInit(cmd *cobra.Command, path string, force bool) error {
	out := output.NewWithColor(cmd.OutOrStdout(), !noColor)

	root, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}

	wroteConfig, err := writeConfigTemplate(root, force)
	if err != nil {
		out.Warningf("could not write .codeqa.yaml: %v", err)
	} else if wroteConfig {
		out.Success("created .codeqa.yaml")
	} else {
		out.Status("i", ".codeqa.yaml already exists, left untouched")
	}

	wroteMCP, err := writeMCPServerEntry(root, force)
	if err != nil {
		out.Warningf("could not update .mcp.json: %v", err)
	} else if wroteMCP {
		out.Success("registered codeqa in .mcp.json")
	} else {
		out.Status("i", "codeqa already registered in .mcp.json")
	}

	out.Newline()
	out.Dim("restart your agent framework to pick up the new MCP server")
	out.Dim("run `codeqa index` (or `codeqa watch`) to build the index")
	return nil
}

func writeConfigTemplate(root string, force bool) (bool, error) {
	path := filepath.Join(root, ".codeqa.yaml")
	if !force {
		if _, err := os.Stat(path); err == nil {
			return false, nil
		}
	}
	if err := os.WriteFile(path, []byte(configs.ConfigTemplate), 0o644); err != nil {
		return false, err
	}
	return true, nil
}

func writeMCPServerEntry(root string, force bool) (bool, error) {
	path := filepath.Join(root, ".mcp.json")

	cfg := mcpJSONConfig{MCPServers: map[string]mcpServerConfig{}}
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return false, fmt.Errorf("parsing existing .mcp.json: %w", err)
		}
		if cfg.MCPServers == nil {
			cfg.MCPServers = map[string]mcpServerConfig{}
		}
	} else if !os.IsNotExist(err) {
		return false, err
	}

	if _, exists := cfg.MCPServers["codeqa"]; exists && !force {
		return false, nil
	}

	binPath, err := codeqaBinaryPath()
	if err != nil {
		return false, err
	}

	cfg.MCPServers["codeqa"] = mcpServerConfig{
		Type:    "stdio",
		Command: binPath,
		Args:    []string{"serve"},
		Cwd:     root,
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}

// codeqaBinaryPath resolves the path to use for .mcp.json's "command"
// field: the currently running executable, with symlinks resolved.
func codeqaBinaryPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		return resolved, nil
	}
	return exe, nil
}
