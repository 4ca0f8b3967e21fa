package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MycelicMemory/mycelicmemory/internal/engine"
	"github.com/MycelicMemory/mycelicmemory/pkg/config"
)

var (
	// Version is set during build.
	Version = "0.1.0"

	// Global flags
	agentID      string
	sessionKey   string
	workspaceDir string
	sessionType  string
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "memctl",
	Short: "Tiered memory engine for conversational agents",
	Long: `memctl drives the embeddable memory lifecycle engine directly
from the command line: capture and recall agent-turn text, run the
decay and promotion sweeps, and manage individual memories by hand.

Examples:
  memctl store "the staging database rotates credentials every friday"
  memctl search "staging database credentials"
  memctl recall "what rotates on friday"
  memctl run-decay
  memctl pin <id>
  memctl forget <id> --hard`,
	Version: Version,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&agentID, "agent-id", "", "calling agent identifier")
	rootCmd.PersistentFlags().StringVar(&sessionKey, "session-key", "", "session key recorded in recall feedback rows")
	rootCmd.PersistentFlags().StringVar(&workspaceDir, "workspace-dir", "", "calling agent's workspace directory")
	rootCmd.PersistentFlags().StringVar(&sessionType, "session-type", "main", "session category: main, cron, spawned")
}

// openEngine loads configuration and opens the engine. Callers are
// responsible for closing it.
func openEngine() (*engine.Engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.EnsureConfigDir(); err != nil {
		return nil, err
	}
	return engine.Open(cfg)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
