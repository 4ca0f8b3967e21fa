package decay

import (
	"time"

	"github.com/MycelicMemory/mycelicmemory/internal/store"
	"github.com/MycelicMemory/mycelicmemory/pkg/config"
)

// Store is the persistence collaborator the decay sweep needs.
type Store interface {
	ListByTier(tier string) ([]*store.Memory, error)
	SetTier(id, newTier, action, reason string) error
	LastDecayRun() (time.Time, error)
	SetLastDecayRun(t time.Time) error
}

// StageCount records how many memories were demoted out of one tier
// during a sweep.
type StageCount struct {
	Tier    string
	Demoted int
}

// Report summarizes one sweep.
type Report struct {
	Ran            bool
	Stages         []StageCount
	TotalProcessed int
}

// ShouldRun reports whether enough time has passed since the last
// sweep, per the configured minimum interval.
func ShouldRun(s Store, cfg config.DecayConfig, now time.Time) (bool, error) {
	last, err := s.LastDecayRun()
	if err != nil {
		return false, err
	}
	if last.IsZero() {
		return true, nil
	}
	minInterval := time.Duration(cfg.MinRunHours) * time.Hour
	return now.Sub(last) >= minInterval, nil
}

// Run executes one sweep: HOT→WARM, WARM→COLD, COLD→ARCHIVE, in that
// order, cascading so a memory demoted from HOT to WARM in this run is
// re-inspected for WARM→COLD before the sweep ends.
func Run(s Store, cfg config.DecayConfig, now time.Time) (Report, error) {
	report := Report{Ran: true}

	edges := []struct {
		from, to string
		ttl      func(config.TypeTTLs) *float64
	}{
		{"HOT", "WARM", func(t config.TypeTTLs) *float64 { return t.HotTTLHours }},
		{"WARM", "COLD", func(t config.TypeTTLs) *float64 { return t.WarmTTLHours }},
		{"COLD", "ARCHIVE", func(t config.TypeTTLs) *float64 { return t.ColdTTLHours }},
	}

	for _, edge := range edges {
		count, err := sweepEdge(s, cfg, now, edge.from, edge.to, edge.ttl)
		if err != nil {
			return report, err
		}
		report.Stages = append(report.Stages, StageCount{Tier: edge.from, Demoted: count})
		report.TotalProcessed += count
	}

	if err := s.SetLastDecayRun(now); err != nil {
		return report, err
	}
	return report, nil
}

func sweepEdge(s Store, cfg config.DecayConfig, now time.Time, fromTier, toTier string, ttlOf func(config.TypeTTLs) *float64) (int, error) {
	memories, err := s.ListByTier(fromTier)
	if err != nil {
		return 0, err
	}

	demoted := 0
	for _, m := range memories {
		if m.Pinned {
			continue
		}

		ttlHours := resolveTTL(cfg, m.MemoryType, ttlOf)
		if ttlHours == nil {
			continue
		}

		reference := m.CreatedAt
		if m.LastAccessedAt != nil {
			reference = *m.LastAccessedAt
		}

		if now.Sub(reference) <= time.Duration(*ttlHours)*time.Hour {
			continue
		}

		if err := s.SetTier(m.ID, toTier, "demote", "ttl expired"); err != nil {
			return demoted, err
		}
		demoted++
	}
	return demoted, nil
}

func resolveTTL(cfg config.DecayConfig, memoryType string, ttlOf func(config.TypeTTLs) *float64) *float64 {
	// A type with no override entry falls back to the tier default.
	// A type with an override entry uses that entry's edge verbatim,
	// including nil: a null TTL means that type never demotes from
	// that tier (spec.md §4.5), it does not fall back to the default.
	if override, ok := cfg.Overrides[memoryType]; ok {
		return ttlOf(override)
	}
	return ttlOf(cfg.Default)
}
