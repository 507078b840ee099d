// Package mcpserver exposes the retrieval core's ten operations to an agent
// framework as tagged JSON results, and wires them to an MCP server via the
// Model Context Protocol SDK.
package mcpserver

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/codeqa/engine/internal/config"
	coreerrors "github.com/codeqa/engine/internal/errors"
	"github.com/codeqa/engine/internal/gitclone"
	"github.com/codeqa/engine/internal/indexer"
	"github.com/codeqa/engine/internal/retriever"
	"github.com/codeqa/engine/internal/store"
	"github.com/codeqa/engine/internal/watcher"
)

// Engine bundles the core collaborators each operation needs. It holds no
// transport-specific state — Server wraps it for the MCP SDK.
type Engine struct {
	store     *store.Store
	indexer   *indexer.Indexer
	retriever *retriever.Retriever
	watcher   *watcher.Manager
	cfg       *config.Config
	reposDir  string
	now       func() float64
}

// NewEngine constructs an Engine from already-built collaborators. watch may
// be nil, in which case watch_project/unwatch_project report an error
// rather than panic — the filesystem watcher is an optional capability.
func NewEngine(st *store.Store, idx *indexer.Indexer, ret *retriever.Retriever, watch *watcher.Manager, cfg *config.Config) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Engine{
		store:     st,
		indexer:   idx,
		retriever: ret,
		watcher:   watch,
		cfg:       cfg,
		reposDir:  cfg.Store.BaseDir + "/repos",
		now:       func() float64 { return float64(time.Now().UnixNano()) / 1e9 },
	}
}

func errMessage(err error) string {
	var coreErr *coreerrors.CoreError
	if errors.As(err, &coreErr) {
		return coreErr.Message
	}
	return err.Error()
}

// IndexProjectInput is the input to indexer.index_project.
type IndexProjectInput struct {
	ProjectPath string `json:"project_path"`
}

// IndexProjectOutput is the tagged result of indexer.index_project: either
// the success fields are populated, or Error is set and the rest are zero.
type IndexProjectOutput struct {
	FilesIndexed int     `json:"files_indexed"`
	ProjectRoot  string  `json:"project_root,omitempty"`
	IndexedAt    float64 `json:"indexed_at,omitempty"`
	Message      string  `json:"message,omitempty"`
	Error        string  `json:"error,omitempty"`
}

// IndexProject performs a full build of the given project root.
func (e *Engine) IndexProject(ctx context.Context, in IndexProjectInput) IndexProjectOutput {
	result, err := e.indexer.IndexProject(ctx, in.ProjectPath)
	if err != nil {
		return IndexProjectOutput{Error: errMessage(err)}
	}
	return IndexProjectOutput{
		FilesIndexed: result.FilesIndexed,
		ProjectRoot:  result.ProjectRoot,
		IndexedAt:    result.IndexedAt,
		Message:      result.Message,
	}
}

// UpdateIndexInput is the input to indexer.update_index.
type UpdateIndexInput struct {
	ProjectPath string `json:"project_path"`
}

// UpdateIndexOutput is the tagged result of indexer.update_index.
type UpdateIndexOutput struct {
	FilesUpdated int      `json:"files_updated"`
	FilesDeleted int      `json:"files_deleted"`
	UpdatedFiles []string `json:"updated_files,omitempty"`
	DeletedFiles []string `json:"deleted_files,omitempty"`
	Message      string   `json:"message,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// UpdateIndex performs an incremental re-index of the given project root.
func (e *Engine) UpdateIndex(ctx context.Context, in UpdateIndexInput) UpdateIndexOutput {
	result, err := e.indexer.UpdateIndex(ctx, in.ProjectPath)
	if err != nil {
		return UpdateIndexOutput{Error: errMessage(err)}
	}
	return UpdateIndexOutput{
		FilesUpdated: result.FilesUpdated,
		FilesDeleted: result.FilesDeleted,
		UpdatedFiles: result.UpdatedFiles,
		DeletedFiles: result.DeletedFiles,
		Message:      result.Message,
	}
}

// WatchProjectInput is the input to indexer.watch_project.
type WatchProjectInput struct {
	ProjectPath string `json:"project_path"`
}

// WatchProjectOutput is the tagged result of indexer.watch_project.
type WatchProjectOutput struct {
	Watching       bool     `json:"watching"`
	ProjectPath    string   `json:"project_path,omitempty"`
	ActiveWatchers []string `json:"active_watchers,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// WatchProject starts a debounced filesystem watch on the given project
// root, triggering incremental updates on eligible changes.
func (e *Engine) WatchProject(ctx context.Context, in WatchProjectInput) WatchProjectOutput {
	if e.watcher == nil {
		return WatchProjectOutput{Error: "filesystem watching is not available"}
	}
	canonical, err := e.watcher.Watch(ctx, in.ProjectPath)
	if err != nil {
		return WatchProjectOutput{Error: errMessage(err)}
	}
	return WatchProjectOutput{
		Watching:       true,
		ProjectPath:    canonical,
		ActiveWatchers: e.watcher.ActiveRoots(),
	}
}

// UnwatchProjectInput is the input to indexer.unwatch_project.
type UnwatchProjectInput struct {
	ProjectPath string `json:"project_path"`
}

// UnwatchProjectOutput is the tagged result of indexer.unwatch_project.
type UnwatchProjectOutput struct {
	Stopped        bool     `json:"stopped"`
	ActiveWatchers []string `json:"active_watchers,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// UnwatchProject stops watching the given project root, if it was being
// watched.
func (e *Engine) UnwatchProject(in UnwatchProjectInput) UnwatchProjectOutput {
	if e.watcher == nil {
		return UnwatchProjectOutput{Error: "filesystem watching is not available"}
	}
	wasWatching := e.watcher.Watching(in.ProjectPath)
	if err := e.watcher.Unwatch(in.ProjectPath); err != nil {
		return UnwatchProjectOutput{Error: errMessage(err)}
	}
	return UnwatchProjectOutput{
		Stopped:        wasWatching,
		ActiveWatchers: e.watcher.ActiveRoots(),
	}
}

// CloneAndIndexInput is the input to indexer.clone_and_index.
type CloneAndIndexInput struct {
	GithubURL string `json:"github_url"`
}

// CloneAndIndexOutput is the tagged result of indexer.clone_and_index: the
// index result fields, plus owner_repo and clone_action.
type CloneAndIndexOutput struct {
	FilesIndexed int     `json:"files_indexed"`
	ProjectRoot  string  `json:"project_root,omitempty"`
	IndexedAt    float64 `json:"indexed_at,omitempty"`
	Message      string  `json:"message,omitempty"`
	OwnerRepo    string  `json:"owner_repo,omitempty"`
	CloneAction  string  `json:"clone_action,omitempty"`
	Error        string  `json:"error,omitempty"`
}

// CloneAndIndex clones (or updates an existing clone of) the GitHub
// repository named by githubURL, then runs a full index build against it.
// An unparseable URL fails with no filesystem side effects.
func (e *Engine) CloneAndIndex(ctx context.Context, in CloneAndIndexInput) CloneAndIndexOutput {
	ownerRepo, err := gitclone.ParseGitHubURL(in.GithubURL)
	if err != nil {
		return CloneAndIndexOutput{Error: errMessage(err)}
	}

	cloned, err := gitclone.CloneOrPull(ctx, e.reposDir, ownerRepo)
	if err != nil {
		return CloneAndIndexOutput{Error: errMessage(err), OwnerRepo: ownerRepo}
	}

	result, err := e.indexer.IndexProject(ctx, cloned.Path)
	if err != nil {
		return CloneAndIndexOutput{Error: errMessage(err), OwnerRepo: ownerRepo, CloneAction: cloned.Action}
	}

	return CloneAndIndexOutput{
		FilesIndexed: result.FilesIndexed,
		ProjectRoot:  result.ProjectRoot,
		IndexedAt:    result.IndexedAt,
		Message:      result.Message,
		OwnerRepo:    cloned.OwnerRepo,
		CloneAction:  cloned.Action,
	}
}

// DeleteProjectInput is the input to indexer.delete_project.
type DeleteProjectInput struct {
	ProjectIdentifier string `json:"project_identifier"`
}

// DeleteProjectOutput is the tagged result of indexer.delete_project.
type DeleteProjectOutput struct {
	Deleted bool   `json:"deleted"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// DeleteProject removes the stored index identified by projectIdentifier
// (canonical path, slug, or project_id). Sessions are left intact.
func (e *Engine) DeleteProject(in DeleteProjectInput) DeleteProjectOutput {
	deleted, err := e.store.DeleteProject(in.ProjectIdentifier)
	if err != nil {
		return DeleteProjectOutput{Error: errMessage(err)}
	}
	if !deleted {
		return DeleteProjectOutput{Deleted: false, Message: "no matching project found"}
	}
	return DeleteProjectOutput{Deleted: true, Message: "project deleted"}
}

// AnswerQuestionInput is the input to qa.answer_question.
type AnswerQuestionInput struct {
	Question    string `json:"question"`
	SessionID   string `json:"session_id,omitempty"`
	ProjectPath string `json:"project_path,omitempty"`
}

// AnswerQuestionOutput is the tagged result of qa.answer_question. Answer is
// the assembled source context (or an explanatory message when there is no
// index or no match) — this core never calls a language model itself, so
// the prose answer stays the caller's responsibility.
type AnswerQuestionOutput struct {
	Answer        string   `json:"answer,omitempty"`
	RelevantFiles []string `json:"relevant_files,omitempty"`
	Confidence    string   `json:"confidence,omitempty"`
	FollowUp      []string `json:"follow_up,omitempty"`
	SessionID     string   `json:"session_id,omitempty"`
	ProjectID     string   `json:"project_id,omitempty"`
	Error         string   `json:"error,omitempty"`
}

// AnswerQuestion assembles retrieval context for question, enriching from
// sessionID's prior turns when supplied, and records the exchange back to
// the session log before returning.
func (e *Engine) AnswerQuestion(ctx context.Context, in AnswerQuestionInput) AnswerQuestionOutput {
	sessionID := in.SessionID
	if sessionID == "" {
		sessionID = newSessionID()
	}

	answerCtx, err := e.retriever.AnswerQuestion(ctx, in.ProjectPath, in.Question, sessionID)
	if err != nil {
		return AnswerQuestionOutput{Error: errMessage(err), SessionID: sessionID}
	}

	answer := answerCtx.Context
	if answer == "" {
		answer = answerCtx.Message
	}

	if err := e.retriever.RecordTurn(sessionID, in.Question, answer, answerCtx.RelevantFiles, e.now()); err != nil {
		return AnswerQuestionOutput{Error: errMessage(err), SessionID: sessionID}
	}

	return AnswerQuestionOutput{
		Answer:        answer,
		RelevantFiles: answerCtx.RelevantFiles,
		Confidence:    answerCtx.Confidence,
		FollowUp:      followUpSuggestions(answerCtx.SymbolHits),
		SessionID:     sessionID,
		ProjectID:     answerCtx.ProjectID,
	}
}

// followUpSuggestions turns matched symbol names into short suggested
// next questions, capped to keep the list skimmable.
func followUpSuggestions(hits []retriever.SymbolHit) []string {
	const maxSuggestions = 5
	var out []string
	seen := make(map[string]bool)
	for _, hit := range hits {
		if seen[hit.Word] || len(out) >= maxSuggestions {
			continue
		}
		seen[hit.Word] = true
		out = append(out, "What else calls "+hit.Word+"?")
	}
	return out
}

// newSessionID generates a short random session identifier for a caller
// that did not supply one.
func newSessionID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// FindRelevantFilesInput is the input to qa.find_relevant_files.
type FindRelevantFilesInput struct {
	Query       string `json:"query"`
	ProjectPath string `json:"project_path,omitempty"`
}

// FindRelevantFilesOutput is the tagged result of qa.find_relevant_files.
type FindRelevantFilesOutput struct {
	Files      []string `json:"files,omitempty"`
	SymbolHits []string `json:"symbol_hits,omitempty"`
	Confidence string   `json:"confidence,omitempty"`
	Reasoning  string   `json:"reasoning,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// FindRelevantFiles runs pure keyword/symbol retrieval with no session
// enrichment and no language-model involvement.
func (e *Engine) FindRelevantFiles(ctx context.Context, in FindRelevantFilesInput) FindRelevantFilesOutput {
	result, err := e.retriever.FindRelevantFiles(ctx, in.ProjectPath, in.Query)
	if err != nil {
		return FindRelevantFilesOutput{Error: errMessage(err)}
	}
	return FindRelevantFilesOutput{
		Files:      result.Files,
		SymbolHits: result.SymbolHits,
		Confidence: result.Confidence,
		Reasoning:  result.Reasoning,
	}
}

// ListProjectsInput is the (empty) input to qa.list_projects.
type ListProjectsInput struct{}

// ListProjectsOutput is the tagged result of qa.list_projects.
type ListProjectsOutput struct {
	Projects []store.ProjectSummary `json:"projects,omitempty"`
	Total    int                    `json:"total"`
	Error    string                 `json:"error,omitempty"`
}

// ListProjects returns every currently indexed project's summary.
func (e *Engine) ListProjects() ListProjectsOutput {
	projects, err := e.retriever.ListProjects()
	if err != nil {
		return ListProjectsOutput{Error: errMessage(err)}
	}
	return ListProjectsOutput{Projects: projects, Total: len(projects)}
}

// GetFileContentInput is the input to qa.get_file_content.
type GetFileContentInput struct {
	FilePath    string `json:"file_path"`
	ProjectPath string `json:"project_path,omitempty"`
}

// GetFileContentOutput is the tagged result of qa.get_file_content.
type GetFileContentOutput struct {
	FilePath    string   `json:"file_path,omitempty"`
	Content     string   `json:"content,omitempty"`
	Symbols     []string `json:"symbols,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	Extension   string   `json:"extension,omitempty"`
	SizeBytes   int64    `json:"size_bytes,omitempty"`
	ChunksCount int      `json:"chunks_count,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// GetFileContent returns one indexed file's reassembled source plus its
// extracted metadata.
func (e *Engine) GetFileContent(in GetFileContentInput) GetFileContentOutput {
	result, err := e.retriever.GetFileContent(in.ProjectPath, in.FilePath)
	if err != nil {
		out := GetFileContentOutput{Error: errMessage(err)}
		if result != nil {
			out.FilePath = result.FilePath
		}
		return out
	}
	return GetFileContentOutput{
		FilePath:    result.FilePath,
		Content:     result.Content,
		Symbols:     result.Symbols,
		Keywords:    result.Keywords,
		Extension:   result.Extension,
		SizeBytes:   result.SizeBytes,
		ChunksCount: result.ChunksCount,
	}
}
