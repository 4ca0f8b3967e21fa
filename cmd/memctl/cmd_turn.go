package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MycelicMemory/mycelicmemory/internal/session"
)

var captureSucceeded bool

// captureCmd feeds one agent turn's output through auto-capture.
var captureCmd = &cobra.Command{
	Use:   "capture <turn-output>",
	Short: "Run auto-capture over one agent turn's output",
	Long: `Run auto-capture over the text of one agent turn, subject to the
calling session's category profile and the embedding rate limiter.

Examples:
  memctl capture "ran the migration against staging, it succeeded"
  memctl capture "the deploy failed, rolling back" --succeeded=false --session-type cron`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runCapture(strings.Join(args, " "))
	},
}

// recallCmd runs auto-recall for one agent turn's prompt.
var recallCmd = &cobra.Command{
	Use:   "recall <prompt>",
	Short: "Run auto-recall for one agent turn's prompt",
	Long: `Run the budgeted auto-recall pipeline for a prompt and print the
selected memory envelope, the way a host would inject it into context.

Examples:
  memctl recall "what did we decide about the staging rollout"`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runRecall(strings.Join(args, " "))
	},
}

func init() {
	captureCmd.Flags().BoolVar(&captureSucceeded, "succeeded", true, "whether the turn succeeded")
	rootCmd.AddCommand(captureCmd)
	rootCmd.AddCommand(recallCmd)
}

func sessionContext() session.Context {
	return session.Context{
		AgentID:      agentID,
		SessionKey:   sessionKey,
		WorkspaceDir: workspaceDir,
		SessionType:  sessionType,
	}
}

func runCapture(turnOutput string) {
	e, err := openEngine()
	if err != nil {
		fatal(err)
	}
	defer e.Close()

	result, err := e.Capture(context.Background(), turnOutput, captureSucceeded, sessionContext())
	if err != nil {
		fatal(err)
	}
	if len(result.Captured) == 0 {
		fmt.Println("no memories captured")
		return
	}
	for _, id := range result.Captured {
		fmt.Println(id)
	}
}

func runRecall(prompt string) {
	e, err := openEngine()
	if err != nil {
		fatal(err)
	}
	defer e.Close()

	result, err := e.Recall(context.Background(), prompt, sessionContext())
	if err != nil {
		fatal(err)
	}
	if len(result.SelectedIDs) == 0 {
		fmt.Println("no memories selected")
		return
	}
	fmt.Println(result.PrependedContext)
}
