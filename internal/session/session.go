package session

import (
	"strings"

	"github.com/MycelicMemory/mycelicmemory/pkg/config"
)

// Category is a coarse agent-invocation category.
type Category string

const (
	Main    Category = "main"
	Cron    Category = "cron"
	Spawned Category = "spawned"
)

// builtinDecayProfile is the last-resort decay profile when nothing
// else in the precedence chain supplies one.
const builtinDecayProfile = "thorough"

// Context describes the calling agent turn.
type Context struct {
	AgentID      string
	SessionKey   string
	WorkspaceDir string
	SessionType  string // raw value from the host, resolved via ResolveCategory
}

// ResolveCategory maps a raw session_type string to a known Category.
// Anything unrecognized, including the empty string, maps to Main.
func ResolveCategory(raw string) Category {
	switch Category(strings.ToLower(strings.TrimSpace(raw))) {
	case Cron:
		return Cron
	case Spawned:
		return Spawned
	default:
		return Main
	}
}

// Defaults returns the per-category capture/recall/tier switches
// configured for a session category.
func Defaults(cat Category, cfg config.SessionsConfig) config.SessionProfile {
	switch cat {
	case Cron:
		return cfg.Cron
	case Spawned:
		return cfg.Spawned
	default:
		return cfg.Main
	}
}

// ProfileStore is the persisted decay-profile collaborator. Both
// methods report ok=false when no override has been persisted at that
// level, letting ResolveDecayProfile fall through to the next rung.
type ProfileStore interface {
	GetAgentDecayProfile(agentID string) (profile string, ok bool, err error)
	GetGlobalDecayProfile() (profile string, ok bool, err error)
}

// ResolveDecayProfile applies the precedence chain from spec.md §4.9:
// session-runtime override > persisted per-agent > persisted global >
// config default > the built-in "thorough" profile. store may be nil,
// in which case the per-agent and global rungs are skipped.
func ResolveDecayProfile(runtimeOverride string, agentID string, store ProfileStore, cfg config.DecayConfig) (string, error) {
	if runtimeOverride != "" {
		return runtimeOverride, nil
	}

	if store != nil {
		if agentID != "" {
			profile, ok, err := store.GetAgentDecayProfile(agentID)
			if err != nil {
				return "", err
			}
			if ok && profile != "" {
				return profile, nil
			}
		}

		profile, ok, err := store.GetGlobalDecayProfile()
		if err != nil {
			return "", err
		}
		if ok && profile != "" {
			return profile, nil
		}
	}

	if cfg.Profile != "" {
		return cfg.Profile, nil
	}

	return builtinDecayProfile, nil
}
