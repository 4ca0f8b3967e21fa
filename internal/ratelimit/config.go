package ratelimit

import "github.com/MycelicMemory/mycelicmemory/pkg/config"

// Config holds rate limiting configuration for embedding-provider calls.
type Config struct {
	Enabled      bool           `mapstructure:"enabled"`
	Global       LimitConfig    `mapstructure:"global"`
	SessionTypes []SessionLimit `mapstructure:"session_types"`
}

// LimitConfig defines rate limit parameters.
type LimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	BurstSize         int     `mapstructure:"burst_size"`
}

// SessionLimit defines a per-session-type override on top of the
// global embedding-call limit (main/cron/spawned, per spec.md §4.9).
type SessionLimit struct {
	Name              string  `mapstructure:"name"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	BurstSize         int     `mapstructure:"burst_size"`
}

// FromEngineConfig adapts the engine's flat RateLimitConfig into a
// ratelimit.Config. Cron sessions run unattended and in bursts, so
// they get a tighter global-relative ceiling; spawned and main
// sessions inherit the configured global limit unchanged.
func FromEngineConfig(cfg config.RateLimitConfig) *Config {
	return &Config{
		Enabled: cfg.Enabled,
		Global: LimitConfig{
			RequestsPerSecond: cfg.RequestsPerSecond,
			BurstSize:         cfg.BurstSize,
		},
		SessionTypes: []SessionLimit{
			{
				Name:              "cron",
				RequestsPerSecond: cfg.RequestsPerSecond / 2,
				BurstSize:         maxInt(cfg.BurstSize/2, 1),
			},
		},
	}
}

// DefaultConfig returns a permissive default, matching
// pkg/config.DefaultConfig's rate_limit section.
func DefaultConfig() *Config {
	return &Config{
		Enabled: true,
		Global: LimitConfig{
			RequestsPerSecond: 10,
			BurstSize:         20,
		},
	}
}

// GetSessionLimit returns the limit configuration for a specific
// session type, or nil if the session type has no override and should
// fall back to the global limit alone.
func (c *Config) GetSessionLimit(sessionType string) *SessionLimit {
	for _, s := range c.SessionTypes {
		if s.Name == sessionType {
			return &s
		}
	}
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
