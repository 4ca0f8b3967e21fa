package decay

import "github.com/MycelicMemory/mycelicmemory/pkg/config"

func hours(v float64) *float64 { return &v }

// builtinProfiles are the named TTL bundles spec.md §4.9 calls out
// ("thorough, named bundles of TTLs"). A configured profile name
// overlays its bundle onto DecayConfig.Default; per-type
// DecayConfig.Overrides still apply on top of whichever bundle is
// selected.
var builtinProfiles = map[string]config.TypeTTLs{
	"thorough": {
		HotTTLHours:  hours(72),
		WarmTTLHours: hours(24 * 14),
		ColdTTLHours: hours(24 * 90),
	},
	"balanced": {
		HotTTLHours:  hours(48),
		WarmTTLHours: hours(24 * 7),
		ColdTTLHours: hours(24 * 45),
	},
	"aggressive": {
		HotTTLHours:  hours(24),
		WarmTTLHours: hours(24 * 3),
		ColdTTLHours: hours(24 * 14),
	},
}

// ResolveProfile overlays the named TTL bundle onto cfg.Default. An
// unrecognized profile name leaves cfg unchanged, so a host's own
// config.Decay.Default still governs.
func ResolveProfile(name string, cfg config.DecayConfig) config.DecayConfig {
	if bundle, ok := builtinProfiles[name]; ok {
		cfg.Default = bundle
	}
	return cfg
}
