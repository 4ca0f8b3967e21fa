package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var runDecayForce bool

// runDecayCmd runs one decay sweep.
var runDecayCmd = &cobra.Command{
	Use:   "run-decay",
	Short: "Run one decay sweep",
	Long: `Run one decay sweep: demote or archive memories past their
tier's TTL for the currently resolved decay profile. Skipped if the
configured minimum interval hasn't elapsed since the last sweep,
unless --force is given.

Examples:
  memctl run-decay
  memctl run-decay --force`,
	Run: func(cmd *cobra.Command, args []string) {
		runRunDecay()
	},
}

// runPromotionCmd runs one promotion sweep.
var runPromotionCmd = &cobra.Command{
	Use:   "run-promotion",
	Short: "Run one promotion sweep",
	Long:  `Run one promotion sweep: every eligible COLD memory is promoted back to WARM.`,
	Run: func(cmd *cobra.Command, args []string) {
		runRunPromotion()
	},
}

func init() {
	runDecayCmd.Flags().BoolVar(&runDecayForce, "force", false, "run even if the minimum interval hasn't elapsed")
	rootCmd.AddCommand(runDecayCmd, runPromotionCmd)
}

func runRunDecay() {
	e, err := openEngine()
	if err != nil {
		fatal(err)
	}
	defer e.Close()

	report, err := e.RunDecay(time.Now().UTC(), runDecayForce)
	if err != nil {
		fatal(err)
	}
	if !report.Ran {
		fmt.Println("skipped: minimum decay interval not yet elapsed")
		return
	}
	fmt.Printf("processed %d memories across %d stages\n", report.TotalProcessed, len(report.Stages))
	for _, stage := range report.Stages {
		fmt.Printf("  %+v\n", stage)
	}
}

func runRunPromotion() {
	e, err := openEngine()
	if err != nil {
		fatal(err)
	}
	defer e.Close()

	report, err := e.RunPromotion()
	if err != nil {
		fatal(err)
	}
	fmt.Printf("promoted %d memories to WARM\n", report.Promoted)
}
