package allocator

import (
	"testing"
	"time"

	"github.com/MycelicMemory/mycelicmemory/internal/scorer"
	"github.com/MycelicMemory/mycelicmemory/internal/store"
)

var defaultWeights = scorer.Weights{Similarity: 0.5, Recency: 0.3, Frequency: 0.2}

func mem(id, tier string, pinned, doNotInject bool) *store.Memory {
	return &store.Memory{
		ID:         id,
		MemoryType: "factual",
		Tier:       tier,
		Pinned:     pinned,
		DoNotInject: doNotInject,
		CreatedAt:  time.Now(),
	}
}

func TestAllocateFiltersDoNotInject(t *testing.T) {
	now := time.Now()
	candidates := []*store.Memory{mem("a", "HOT", false, true)}
	result := Allocate(candidates, map[string]float64{"a": 1}, Params{
		MaxItems: 10, Weights: defaultWeights, Now: now,
		Budgets: Budgets{Hot: 1},
	})
	if len(result.Selected) != 0 {
		t.Fatalf("expected do_not_inject memory excluded, got %+v", result.Selected)
	}
	if result.ExcludedDoNotInj != 1 {
		t.Errorf("expected ExcludedDoNotInj=1, got %d", result.ExcludedDoNotInj)
	}
}

func TestAllocateExcludesArchiveWithoutBudget(t *testing.T) {
	now := time.Now()
	candidates := []*store.Memory{mem("a", "ARCHIVE", false, false)}
	result := Allocate(candidates, map[string]float64{"a": 1}, Params{
		MaxItems: 10, Weights: defaultWeights, Now: now,
		Budgets: Budgets{Archive: 0},
	})
	if len(result.Selected) != 0 {
		t.Fatalf("expected archive memory excluded without budget, got %+v", result.Selected)
	}

	result = Allocate(candidates, map[string]float64{"a": 1}, Params{
		MaxItems: 10, Weights: defaultWeights, Now: now,
		Budgets: Budgets{Archive: 0.5},
	})
	if len(result.Selected) != 1 {
		t.Fatalf("expected archive memory included with budget, got %+v", result.Selected)
	}
}

func TestAllocateExcludesPinnedArchiveWithoutBudget(t *testing.T) {
	now := time.Now()
	candidates := []*store.Memory{mem("a", "ARCHIVE", true, false)}
	result := Allocate(candidates, map[string]float64{"a": 1}, Params{
		MaxItems: 10, Weights: defaultWeights, Now: now,
		Budgets: Budgets{Pinned: 1, Archive: 0},
	})
	if len(result.Selected) != 0 {
		t.Fatalf("expected pinned archive memory excluded without archive budget, got %+v", result.Selected)
	}
}

func TestAllocateRespectsPerBucketBudgetFloor(t *testing.T) {
	now := time.Now()
	var candidates []*store.Memory
	sims := map[string]float64{}
	for i := 0; i < 5; i++ {
		id := string(rune('a' + i))
		candidates = append(candidates, mem(id, "HOT", false, false))
		sims[id] = 1.0
	}

	result := Allocate(candidates, sims, Params{
		MaxItems: 10, Weights: defaultWeights, Now: now,
		Budgets: Budgets{Hot: 0.45}, // floor(10*0.45) = 4
	})
	if result.BucketCounts["hot"] != 4 {
		t.Errorf("expected 4 hot items taken, got %d", result.BucketCounts["hot"])
	}
	if len(result.Selected) != 4 {
		t.Errorf("expected 4 selected, got %d", len(result.Selected))
	}
}

func TestAllocateMinScorePreFilterIsInclusive(t *testing.T) {
	now := time.Now()
	candidates := []*store.Memory{mem("a", "HOT", false, false)}
	threshold := 0.8 // fresh HOT factual similarity 1.0 scores exactly 0.5+0.3=0.8 == threshold

	result := Allocate(candidates, map[string]float64{"a": 1.0}, Params{
		MaxItems: 10, Weights: defaultWeights, Now: now, MinScore: &threshold,
		Budgets: Budgets{Hot: 1},
	})
	if len(result.Selected) != 1 {
		t.Fatalf("expected candidate scoring exactly the threshold to survive, got %+v", result.Selected)
	}

	strict := 0.9
	result = Allocate(candidates, map[string]float64{"a": 1.0}, Params{
		MaxItems: 10, Weights: defaultWeights, Now: now, MinScore: &strict,
		Budgets: Budgets{Hot: 1},
	})
	if len(result.Selected) != 0 {
		t.Fatalf("expected candidate below threshold to be dropped, got %+v", result.Selected)
	}
	if result.ExcludedMinScore != 1 {
		t.Errorf("expected ExcludedMinScore=1, got %d", result.ExcludedMinScore)
	}
}

func TestAllocateTieBreakOrder(t *testing.T) {
	now := time.Now()
	older := now.Add(-time.Hour)
	a := mem("b-id", "HOT", false, false)
	a.LastAccessedAt = &older
	b := mem("a-id", "HOT", false, false)
	b.LastAccessedAt = &now

	candidates := []*store.Memory{a, b}
	sims := map[string]float64{"b-id": 1.0, "a-id": 1.0}

	result := Allocate(candidates, sims, Params{
		MaxItems: 10, Weights: defaultWeights, Now: now,
		Budgets: Budgets{Hot: 1},
	})
	if len(result.Selected) != 2 {
		t.Fatalf("expected both selected, got %d", len(result.Selected))
	}
	if result.Selected[0].Memory.ID != "a-id" {
		t.Errorf("expected more-recently-accessed memory first on score tie, got %s", result.Selected[0].Memory.ID)
	}
}
