package promotion

import (
	"github.com/MycelicMemory/mycelicmemory/internal/store"
	"github.com/MycelicMemory/mycelicmemory/pkg/config"
)

// Store is the persistence collaborator the promotion sweep needs.
type Store interface {
	ListByTier(tier string) ([]*store.Memory, error)
	SetTier(id, newTier, action, reason string) error
}

// Report summarizes one promotion sweep.
type Report struct {
	Promoted int
}

// Run promotes every COLD memory with use_count ≥ promotion_uses AND
// |use_days| ≥ promotion_days to WARM. Pinned memories never need
// promotion (they already never decayed out of relevance).
func Run(s Store, cfg config.ColdTierConfig) (Report, error) {
	var report Report

	memories, err := s.ListByTier("COLD")
	if err != nil {
		return report, err
	}

	for _, m := range memories {
		if m.Pinned {
			continue
		}
		if m.UseCount < cfg.PromotionUses {
			continue
		}
		if len(m.UseDays) < cfg.PromotionDays {
			continue
		}

		if err := s.SetTier(m.ID, "WARM", "promote", "renewed use"); err != nil {
			return report, err
		}
		report.Promoted++
	}
	return report, nil
}
