package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MycelicMemory/mycelicmemory/internal/store"
)

var (
	// store flags
	storeMemoryType string
	storeTier       string
	storePinned     bool

	// search flags
	searchMaxItems int

	// forget flags
	forgetHard   bool
	forgetReason string

	// restore/pin/unpin flags
	restoreReason string
	pinReason     string
	unpinReason   string
)

// storeCmd inserts a memory directly, bypassing auto-capture.
var storeCmd = &cobra.Command{
	Use:   "store <text>",
	Short: "Store a memory directly",
	Long: `Store a memory directly, the tool-style counterpart to
auto-capture for agent- or user-initiated writes.

Examples:
  memctl store "the staging database rotates credentials every friday"
  memctl store "deploy runbook" --type procedural --tier warm --pinned`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runStore(strings.Join(args, " "))
	},
}

// searchCmd runs the hybrid searcher directly against a query.
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search memories by hybrid vector/text score",
	Long: `Run the hybrid searcher directly against a query, independent of
the budgeted auto-recall path.

Examples:
  memctl search "staging database credentials"
  memctl search "deploy runbook" --max-items 5`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runSearch(strings.Join(args, " "))
	},
}

// forgetCmd excludes a memory from recall, or deletes it outright.
var forgetCmd = &cobra.Command{
	Use:   "forget <id>",
	Short: "Exclude a memory from recall, or delete it with --hard",
	Long: `Forget sets do_not_inject on a memory, excluding it from recall
without deleting it. --hard instead deletes the row outright.

Examples:
  memctl forget 550e8400-e29b-41d4-a716-446655440000
  memctl forget 550e8400-e29b-41d4-a716-446655440000 --hard`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runForget(args[0])
	},
}

// restoreCmd clears do_not_inject on a previously forgotten memory.
var restoreCmd = &cobra.Command{
	Use:   "restore <id>",
	Short: "Clear do_not_inject on a forgotten memory",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runRestore(args[0])
	},
}

// pinCmd exempts a memory from decay.
var pinCmd = &cobra.Command{
	Use:   "pin <id>",
	Short: "Pin a memory, exempting it from decay",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runPin(args[0])
	},
}

// unpinCmd returns a memory to ordinary decay and allocation.
var unpinCmd = &cobra.Command{
	Use:   "unpin <id>",
	Short: "Unpin a memory",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runUnpin(args[0])
	},
}

// explainCmd reports a memory's current scoring components and audit trail.
var explainCmd = &cobra.Command{
	Use:   "explain <id>",
	Short: "Show a memory's scoring breakdown and audit trail",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runExplain(args[0])
	},
}

func init() {
	storeCmd.Flags().StringVar(&storeMemoryType, "type", "factual", "memory type: procedural, factual, project, episodic")
	storeCmd.Flags().StringVar(&storeTier, "tier", "HOT", "initial tier: HOT, WARM, COLD, ARCHIVE")
	storeCmd.Flags().BoolVar(&storePinned, "pinned", false, "pin the memory on creation")

	searchCmd.Flags().IntVar(&searchMaxItems, "max-items", 10, "maximum results to return")

	forgetCmd.Flags().BoolVar(&forgetHard, "hard", false, "delete the memory outright instead of excluding it")
	forgetCmd.Flags().StringVar(&forgetReason, "reason", "", "audit reason")

	restoreCmd.Flags().StringVar(&restoreReason, "reason", "", "audit reason")
	pinCmd.Flags().StringVar(&pinReason, "reason", "", "audit reason")
	unpinCmd.Flags().StringVar(&unpinReason, "reason", "", "audit reason")

	rootCmd.AddCommand(storeCmd, searchCmd, forgetCmd, restoreCmd, pinCmd, unpinCmd, explainCmd)
}

func runStore(text string) {
	e, err := openEngine()
	if err != nil {
		fatal(err)
	}
	defer e.Close()

	m, err := e.Store(context.Background(), text, storeMemoryType, strings.ToUpper(storeTier), storePinned)
	if err != nil {
		fatal(err)
	}
	fmt.Println(m.ID)
}

func runSearch(query string) {
	e, err := openEngine()
	if err != nil {
		fatal(err)
	}
	defer e.Close()

	results, err := e.Search(context.Background(), query, searchMaxItems)
	if err != nil {
		fatal(err)
	}
	if len(results) == 0 {
		fmt.Println("no matches")
		return
	}
	for _, r := range results {
		fmt.Printf("%s\t%.4f\t%s\n", r.Memory.ID, r.Combined, summarize(r.Memory.Text))
	}
}

func runForget(id string) {
	e, err := openEngine()
	if err != nil {
		fatal(err)
	}
	defer e.Close()

	if err := e.Forget(id, forgetHard, forgetReason); err != nil {
		fatal(err)
	}
	fmt.Println("forgotten:", id)
}

func runRestore(id string) {
	e, err := openEngine()
	if err != nil {
		fatal(err)
	}
	defer e.Close()

	if err := e.Restore(id, restoreReason); err != nil {
		fatal(err)
	}
	fmt.Println("restored:", id)
}

func runPin(id string) {
	e, err := openEngine()
	if err != nil {
		fatal(err)
	}
	defer e.Close()

	if err := e.Pin(id, pinReason); err != nil {
		fatal(err)
	}
	fmt.Println("pinned:", id)
}

func runUnpin(id string) {
	e, err := openEngine()
	if err != nil {
		fatal(err)
	}
	defer e.Close()

	if err := e.Unpin(id, unpinReason); err != nil {
		fatal(err)
	}
	fmt.Println("unpinned:", id)
}

func runExplain(id string) {
	e, err := openEngine()
	if err != nil {
		fatal(err)
	}
	defer e.Close()

	explain, err := e.Explain(id)
	if err != nil {
		fatal(err)
	}

	fmt.Printf("memory:     %s\n", explain.Memory.ID)
	fmt.Printf("text:       %s\n", summarize(explain.Memory.Text))
	fmt.Printf("tier:       %s\n", explain.Memory.Tier)
	fmt.Printf("pinned:     %v\n", explain.Memory.Pinned)
	fmt.Printf("use_count:  %d\n", explain.Memory.UseCount)
	fmt.Printf("score:      similarity=%.4f recency=%.4f frequency=%.4f total=%.4f\n",
		explain.Score.Similarity, explain.Score.Recency, explain.Score.Frequency, explain.Score.Total())
	fmt.Println("audit:")
	for _, entry := range explain.Audit {
		printAuditEntry(entry)
	}
}

func printAuditEntry(entry *store.AuditEntry) {
	fmt.Printf("  %s  %-10s %s\n", entry.CreatedAt.Format("2006-01-02T15:04:05Z"), entry.Action, entry.NewValueJSON)
}

func summarize(text string) string {
	const max = 72
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}
