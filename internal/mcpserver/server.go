package mcpserver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/codeqa/engine/pkg/version"
)

// Server bridges an agent framework to the Engine's ten operations over the
// Model Context Protocol. Every tool call returns its tagged result object —
// business failures (a missing index, an unparseable URL) are reported
// inside that object's Error field, never as a protocol-level error.
type Server struct {
	mcp    *mcp.Server
	engine *Engine
	logger *slog.Logger
}

// NewServer registers every operation in engine as an MCP tool.
func NewServer(engine *Engine) *Server {
	s := &Server{
		mcp:    mcp.NewServer(&mcp.Implementation{Name: "codeqa", Version: version.Version}, nil),
		engine: engine,
		logger: slog.Default(),
	}
	s.registerTools()
	return s
}

// MCPServer returns the underlying SDK server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Serve runs the server over the given transport until ctx is canceled.
// Only "stdio" is currently supported, matching the agent-framework
// integration this surface targets.
func (s *Server) Serve(ctx context.Context, transport string) error {
	switch transport {
	case "stdio":
		err := s.mcp.Run(ctx, &mcp.StdioTransport{})
		if err != nil && err != context.Canceled {
			s.logger.Error("mcp server stopped with error", slog.String("error", err.Error()))
		}
		return err
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio)", transport)
	}
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "index_project",
		Description: "Perform a full index build of a local project directory, replacing any prior index for that root.",
	}, s.handleIndexProject)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "update_index",
		Description: "Incrementally re-index a previously indexed project: re-extract changed files, drop deleted ones.",
	}, s.handleUpdateIndex)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "watch_project",
		Description: "Start a debounced filesystem watch on a project root, triggering update_index on eligible changes.",
	}, s.handleWatchProject)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "unwatch_project",
		Description: "Stop watching a project root, if it was being watched.",
	}, s.handleUnwatchProject)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "clone_and_index",
		Description: "Clone (or update an existing clone of) a GitHub repository and run a full index build against it.",
	}, s.handleCloneAndIndex)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "delete_project",
		Description: "Remove a project's stored index. Sessions are left intact.",
	}, s.handleDeleteProject)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "answer_question",
		Description: "Retrieve the source context most relevant to a natural-language question about an indexed project, optionally enriched by a conversation session.",
	}, s.handleAnswerQuestion)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "find_relevant_files",
		Description: "Rank an indexed project's files against a query using keyword and symbol matching only — no session enrichment, no language model.",
	}, s.handleFindRelevantFiles)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_projects",
		Description: "List every currently indexed project.",
	}, s.handleListProjects)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_file_content",
		Description: "Return one indexed file's reassembled source plus its extracted symbols and keywords.",
	}, s.handleGetFileContent)
}

func (s *Server) handleIndexProject(ctx context.Context, _ *mcp.CallToolRequest, in IndexProjectInput) (*mcp.CallToolResult, IndexProjectOutput, error) {
	return nil, s.engine.IndexProject(ctx, in), nil
}

func (s *Server) handleUpdateIndex(ctx context.Context, _ *mcp.CallToolRequest, in UpdateIndexInput) (*mcp.CallToolResult, UpdateIndexOutput, error) {
	return nil, s.engine.UpdateIndex(ctx, in), nil
}

func (s *Server) handleWatchProject(ctx context.Context, _ *mcp.CallToolRequest, in WatchProjectInput) (*mcp.CallToolResult, WatchProjectOutput, error) {
	return nil, s.engine.WatchProject(ctx, in), nil
}

func (s *Server) handleUnwatchProject(_ context.Context, _ *mcp.CallToolRequest, in UnwatchProjectInput) (*mcp.CallToolResult, UnwatchProjectOutput, error) {
	return nil, s.engine.UnwatchProject(in), nil
}

func (s *Server) handleCloneAndIndex(ctx context.Context, _ *mcp.CallToolRequest, in CloneAndIndexInput) (*mcp.CallToolResult, CloneAndIndexOutput, error) {
	return nil, s.engine.CloneAndIndex(ctx, in), nil
}

func (s *Server) handleDeleteProject(_ context.Context, _ *mcp.CallToolRequest, in DeleteProjectInput) (*mcp.CallToolResult, DeleteProjectOutput, error) {
	return nil, s.engine.DeleteProject(in), nil
}

func (s *Server) handleAnswerQuestion(ctx context.Context, _ *mcp.CallToolRequest, in AnswerQuestionInput) (*mcp.CallToolResult, AnswerQuestionOutput, error) {
	return nil, s.engine.AnswerQuestion(ctx, in), nil
}

func (s *Server) handleFindRelevantFiles(ctx context.Context, _ *mcp.CallToolRequest, in FindRelevantFilesInput) (*mcp.CallToolResult, FindRelevantFilesOutput, error) {
	return nil, s.engine.FindRelevantFiles(ctx, in), nil
}

func (s *Server) handleListProjects(_ context.Context, _ *mcp.CallToolRequest, _ ListProjectsInput) (*mcp.CallToolResult, ListProjectsOutput, error) {
	return nil, s.engine.ListProjects(), nil
}

func (s *Server) handleGetFileContent(_ context.Context, _ *mcp.CallToolRequest, in GetFileContentInput) (*mcp.CallToolResult, GetFileContentOutput, error) {
	return nil, s.engine.GetFileContent(in), nil
}
