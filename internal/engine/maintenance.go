package engine

import (
	"time"

	"github.com/MycelicMemory/mycelicmemory/internal/decay"
	"github.com/MycelicMemory/mycelicmemory/internal/promotion"
	"github.com/MycelicMemory/mycelicmemory/internal/session"
)

// RunDecay runs one decay sweep if enough time has passed since the
// last one (per DecayConfig.MinRunHours), resolving the active named
// TTL profile through the session-runtime > per-agent > global >
// config-default > built-in precedence chain before sweeping. force
// bypasses the minimum-interval check, e.g. for an operator-triggered
// sweep outside the normal schedule.
func (e *Engine) RunDecay(now time.Time, force bool) (decay.Report, error) {
	if !force {
		should, err := decay.ShouldRun(e.store, e.cfg.Decay, now)
		if err != nil {
			return decay.Report{}, err
		}
		if !should {
			return decay.Report{Ran: false}, nil
		}
	}

	profileName, err := session.ResolveDecayProfile("", "", e.store, e.cfg.Decay)
	if err != nil {
		return decay.Report{}, err
	}
	cfg := decay.ResolveProfile(profileName, e.cfg.Decay)

	return decay.Run(e.store, cfg, now)
}

// RunPromotion runs one promotion sweep: every eligible COLD memory is
// promoted back to WARM.
func (e *Engine) RunPromotion() (promotion.Report, error) {
	return promotion.Run(e.store, e.cfg.Tiers.Cold)
}
