package decay

import (
	"testing"
	"time"

	"github.com/MycelicMemory/mycelicmemory/internal/store"
	"github.com/MycelicMemory/mycelicmemory/pkg/config"
)

type memStore struct {
	memories      map[string]*store.Memory
	lastDecayRun  time.Time
	tierHistory   []string
}

func newMemStore() *memStore {
	return &memStore{memories: map[string]*store.Memory{}}
}

func (s *memStore) add(m *store.Memory) { s.memories[m.ID] = m }

func (s *memStore) ListByTier(tier string) ([]*store.Memory, error) {
	var out []*store.Memory
	for _, m := range s.memories {
		if m.Tier == tier {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memStore) SetTier(id, newTier, action, reason string) error {
	s.memories[id].Tier = newTier
	s.tierHistory = append(s.tierHistory, id+"->"+newTier)
	return nil
}

func (s *memStore) LastDecayRun() (time.Time, error) { return s.lastDecayRun, nil }
func (s *memStore) SetLastDecayRun(t time.Time) error {
	s.lastDecayRun = t
	return nil
}

func hours(h float64) *float64 { return &h }

func TestRunDemotesExpiredHotMemory(t *testing.T) {
	s := newMemStore()
	now := time.Now()
	s.add(&store.Memory{ID: "a", MemoryType: "factual", Tier: "HOT", CreatedAt: now.Add(-100 * time.Hour)})

	cfg := config.DecayConfig{
		Default: config.TypeTTLs{HotTTLHours: hours(72), WarmTTLHours: hours(336), ColdTTLHours: hours(2160)},
	}

	report, err := Run(s, cfg, now)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s.memories["a"].Tier != "WARM" {
		t.Errorf("expected tier WARM, got %s", s.memories["a"].Tier)
	}
	if report.TotalProcessed != 1 {
		t.Errorf("expected 1 processed, got %d", report.TotalProcessed)
	}
}

func TestRunSkipsPinned(t *testing.T) {
	s := newMemStore()
	now := time.Now()
	s.add(&store.Memory{ID: "a", MemoryType: "factual", Tier: "HOT", Pinned: true, CreatedAt: now.Add(-1000 * time.Hour)})

	cfg := config.DecayConfig{
		Default: config.TypeTTLs{HotTTLHours: hours(72), WarmTTLHours: hours(336), ColdTTLHours: hours(2160)},
	}
	if _, err := Run(s, cfg, now); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s.memories["a"].Tier != "HOT" {
		t.Errorf("expected pinned memory to stay HOT, got %s", s.memories["a"].Tier)
	}
}

func TestRunNilTTLNeverDemotes(t *testing.T) {
	s := newMemStore()
	now := time.Now()
	s.add(&store.Memory{ID: "a", MemoryType: "procedural", Tier: "HOT", CreatedAt: now.Add(-100000 * time.Hour)})

	cfg := config.DecayConfig{
		Default: config.TypeTTLs{HotTTLHours: nil, WarmTTLHours: hours(336), ColdTTLHours: hours(2160)},
	}
	if _, err := Run(s, cfg, now); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s.memories["a"].Tier != "HOT" {
		t.Errorf("expected memory with nil TTL to stay HOT, got %s", s.memories["a"].Tier)
	}
}

func TestRunNilOverrideEdgeNeverDemotes(t *testing.T) {
	s := newMemStore()
	now := time.Now()
	s.add(&store.Memory{ID: "a", MemoryType: "procedural", Tier: "HOT", CreatedAt: now.Add(-1000 * time.Hour)})

	cfg := config.DecayConfig{
		Default: config.TypeTTLs{HotTTLHours: hours(72), WarmTTLHours: hours(336), ColdTTLHours: hours(2160)},
		Overrides: map[string]config.TypeTTLs{
			"procedural": {HotTTLHours: nil, WarmTTLHours: nil, ColdTTLHours: nil},
		},
	}
	if _, err := Run(s, cfg, now); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s.memories["a"].Tier != "HOT" {
		t.Errorf("expected procedural memory with a nil override edge to stay HOT despite a non-nil default, got %s", s.memories["a"].Tier)
	}
}

func TestRunCascadesWithinSingleSweep(t *testing.T) {
	s := newMemStore()
	now := time.Now()
	// Old enough to blow through both hot and warm TTLs in one run.
	s.add(&store.Memory{ID: "a", MemoryType: "factual", Tier: "HOT", CreatedAt: now.Add(-1000 * time.Hour)})

	cfg := config.DecayConfig{
		Default: config.TypeTTLs{HotTTLHours: hours(72), WarmTTLHours: hours(336), ColdTTLHours: hours(2160)},
	}
	report, err := Run(s, cfg, now)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s.memories["a"].Tier != "COLD" {
		t.Errorf("expected cascading demotion to COLD, got %s", s.memories["a"].Tier)
	}
	if report.TotalProcessed != 2 {
		t.Errorf("expected 2 demotions counted (HOT->WARM, WARM->COLD), got %d", report.TotalProcessed)
	}
}

func TestRunPerTypeOverrideShadowsDefault(t *testing.T) {
	s := newMemStore()
	now := time.Now()
	s.add(&store.Memory{ID: "a", MemoryType: "episodic", Tier: "HOT", CreatedAt: now.Add(-10 * time.Hour)})

	cfg := config.DecayConfig{
		Default:   config.TypeTTLs{HotTTLHours: hours(72), WarmTTLHours: hours(336), ColdTTLHours: hours(2160)},
		Overrides: map[string]config.TypeTTLs{"episodic": {HotTTLHours: hours(1)}},
	}
	if _, err := Run(s, cfg, now); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s.memories["a"].Tier != "WARM" {
		t.Errorf("expected override ttl to demote episodic memory, got %s", s.memories["a"].Tier)
	}
}

func TestShouldRunRespectsMinInterval(t *testing.T) {
	s := newMemStore()
	now := time.Now()

	should, err := ShouldRun(s, config.DecayConfig{MinRunHours: 1}, now)
	if err != nil || !should {
		t.Fatalf("expected should-run true before any run, got %v err=%v", should, err)
	}

	s.lastDecayRun = now.Add(-30 * time.Minute)
	should, err = ShouldRun(s, config.DecayConfig{MinRunHours: 1}, now)
	if err != nil || should {
		t.Fatalf("expected should-run false within min interval, got %v", should)
	}
}
