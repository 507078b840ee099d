package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codeqa/engine/internal/mcpserver"
	"github.com/codeqa/engine/internal/output"
)

func newAskCmd() *cobra.Command {
	var projectPath string
	var sessionID string

	cmd := &cobra.Command{
		Use:   "ask <question...>",
		Short: "Retrieve the source context most relevant to a question",
		Long: `ask retrieves the source context most relevant to a
natural-language question about an indexed project. It never calls a
language model — the returned context is the retrieval result itself, not
a generated prose answer. Passing --session enriches retrieval with the
prior turns of that conversation.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, strings.Join(args, " "), projectPath, sessionID)
		},
	}
	cmd.Flags().StringVar(&projectPath, "project", ".", "Project root to ask about")
	cmd.Flags().StringVar(&sessionID, "session", "", "Conversation session id to enrich retrieval with (omit to start a new one)")
	return cmd
}

func runAsk(cmd *cobra.Command, question, projectPath, sessionID string) error {
	out := output.NewWithColor(cmd.OutOrStdout(), !noColor)

	engine, cleanup, err := newEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	result := engine.AnswerQuestion(cmd.Context(), mcpserver.AnswerQuestionInput{
		Question:    question,
		SessionID:   sessionID,
		ProjectPath: projectPath,
	})
	if result.Error != "" {
		out.Error(result.Error)
		return fmt.Errorf("ask failed: %s", result.Error)
	}

	out.Code(result.Answer)
	out.Dimf("confidence: %s · session: %s", result.Confidence, result.SessionID)
	if len(result.RelevantFiles) > 0 {
		out.Dimf("files: %s", strings.Join(result.RelevantFiles, ", "))
	}
	for _, q := range result.FollowUp {
		out.Dimf("follow-up: %s", q)
	}
	return nil
}
