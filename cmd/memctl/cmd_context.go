package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var setContextTTLSeconds int

// setContextCmd replaces the single current-context slot.
var setContextCmd = &cobra.Command{
	Use:   "set-context <text>",
	Short: "Replace the current-context slot",
	Long: `Replace the single current-context slot that gets prepended
ahead of recalled memories. A zero TTL falls back to the configured
default.

Examples:
  memctl set-context "migrating the billing service to the new region"
  memctl set-context "code freeze until monday" --ttl-seconds 3600`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runSetContext(strings.Join(args, " "))
	},
}

// clearContextCmd empties the current-context slot.
var clearContextCmd = &cobra.Command{
	Use:   "clear-context",
	Short: "Empty the current-context slot",
	Run: func(cmd *cobra.Command, args []string) {
		runClearContext()
	},
}

func init() {
	setContextCmd.Flags().IntVar(&setContextTTLSeconds, "ttl-seconds", 0, "context TTL in seconds (0 uses the configured default)")
	rootCmd.AddCommand(setContextCmd, clearContextCmd)
}

func runSetContext(text string) {
	e, err := openEngine()
	if err != nil {
		fatal(err)
	}
	defer e.Close()

	if err := e.SetContext(text, setContextTTLSeconds); err != nil {
		fatal(err)
	}
	fmt.Println("context set")
}

func runClearContext() {
	e, err := openEngine()
	if err != nil {
		fatal(err)
	}
	defer e.Close()

	if err := e.ClearContext(); err != nil {
		fatal(err)
	}
	fmt.Println("context cleared")
}
