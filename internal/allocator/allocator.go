package allocator

import (
	"math"
	"sort"
	"time"

	"github.com/MycelicMemory/mycelicmemory/internal/scorer"
	"github.com/MycelicMemory/mycelicmemory/internal/store"
)

// Budgets is the fraction of max_items reserved for each bucket.
// Fractions should sum to ≤ 1; the remainder is simply unused.
type Budgets struct {
	Pinned  float64
	Hot     float64
	Warm    float64
	Cold    float64
	Archive float64
}

// archiveAllowed reports whether ARCHIVE-tier candidates participate
// at all (spec §4.2/§4.4: archive is excluded unless its budget > 0).
func (b Budgets) archiveAllowed() bool { return b.Archive > 0 }

// Item is a selected or excluded candidate with its scoring breakdown.
type Item struct {
	Memory     *store.Memory
	Similarity float64
	Score      scorer.Components
	Bucket     string
}

// Result is the allocator's full output: the final selection plus
// accounting for the explain tool and tests.
type Result struct {
	Selected          []Item
	BucketCounts      map[string]int
	ConsideredCount   int
	ExcludedCount     int
	ExcludedDoNotInj  int
	ExcludedArchive   int
	ExcludedMinScore  int
}

// Params bundles the allocator's configuration for one recall call.
type Params struct {
	MaxItems int
	Budgets  Budgets
	MinScore *float64 // nil disables the pre-filter
	Weights  scorer.Weights
	Now      time.Time
}

// Allocate runs the full pipeline: filter, score, bucket, proportional
// take, re-sort, truncate.
func Allocate(candidates []*store.Memory, similarity map[string]float64, p Params) Result {
	result := Result{BucketCounts: map[string]int{}}
	result.ConsideredCount = len(candidates)

	allowArchive := p.Budgets.archiveAllowed()

	type scored struct {
		item   Item
		bucket string
	}
	var survivors []scored

	for _, m := range candidates {
		if m.DoNotInject {
			result.ExcludedDoNotInj++
			result.ExcludedCount++
			continue
		}
		if m.Tier == "ARCHIVE" && !allowArchive {
			result.ExcludedArchive++
			result.ExcludedCount++
			continue
		}

		sim := similarity[m.ID]
		in := scorer.Input{
			Similarity:     sim,
			MemoryType:     m.MemoryType,
			Tier:           m.Tier,
			Pinned:         m.Pinned,
			UseCount:       m.UseCount,
			CreatedAt:      m.CreatedAt,
			LastAccessedAt: m.LastAccessedAt,
			Now:            p.Now,
			AllowArchive:   allowArchive,
		}

		comp, ok := scorer.Score(in, p.Weights)
		if !ok {
			result.ExcludedArchive++
			result.ExcludedCount++
			continue
		}

		if p.MinScore != nil && comp.Total() < *p.MinScore {
			result.ExcludedMinScore++
			result.ExcludedCount++
			continue
		}

		bucket := bucketFor(m)
		survivors = append(survivors, scored{
			item:   Item{Memory: m, Similarity: sim, Score: comp, Bucket: bucket},
			bucket: bucket,
		})
	}

	buckets := map[string][]Item{"pinned": {}, "hot": {}, "warm": {}, "cold": {}, "archive": {}}
	for _, s := range survivors {
		buckets[s.bucket] = append(buckets[s.bucket], s.item)
	}

	for name, items := range buckets {
		sortItems(items)
		buckets[name] = items
	}

	budgetFor := map[string]float64{
		"pinned":  p.Budgets.Pinned,
		"hot":     p.Budgets.Hot,
		"warm":    p.Budgets.Warm,
		"cold":    p.Budgets.Cold,
		"archive": p.Budgets.Archive,
	}

	var taken []Item
	for _, name := range []string{"pinned", "hot", "warm", "cold", "archive"} {
		n := int(math.Floor(float64(p.MaxItems) * budgetFor[name]))
		items := buckets[name]
		if n > len(items) {
			n = len(items)
		}
		taken = append(taken, items[:n]...)
		result.BucketCounts[name] = n
	}

	sortItems(taken)
	if p.MaxItems > 0 && len(taken) > p.MaxItems {
		taken = taken[:p.MaxItems]
	}

	result.Selected = taken
	return result
}

func bucketFor(m *store.Memory) string {
	if m.Pinned {
		return "pinned"
	}
	switch m.Tier {
	case "HOT":
		return "hot"
	case "WARM":
		return "warm"
	case "COLD":
		return "cold"
	case "ARCHIVE":
		return "archive"
	default:
		return "hot"
	}
}

// sortItems orders by (score desc, last_accessed_at desc, id asc), the
// allocator's tie-break rule.
func sortItems(items []Item) {
	sort.Slice(items, func(i, j int) bool {
		si, sj := items[i].Score.Total(), items[j].Score.Total()
		if si != sj {
			return si > sj
		}

		li, lj := items[i].Memory.LastAccessedAt, items[j].Memory.LastAccessedAt
		switch {
		case li == nil && lj == nil:
			// fall through to id
		case li == nil:
			return false
		case lj == nil:
			return true
		case !li.Equal(*lj):
			return li.After(*lj)
		}

		return items[i].Memory.ID < items[j].Memory.ID
	})
}
