package ratelimit

import (
	"sync"
	"time"
)

// LimitResult contains the result of a rate limit check.
type LimitResult struct {
	Allowed    bool          // Whether the request is allowed
	RetryAfter time.Duration // Suggested wait time if not allowed
	LimitType  string        // "global" or session type name
	Remaining  float64       // Remaining tokens in the relevant bucket
}

// Limiter throttles embedding-provider calls with a global bucket plus
// optional per-session-type buckets (main/cron/spawned).
type Limiter struct {
	mu            sync.RWMutex
	enabled       bool
	globalBucket  *Bucket
	sessionBucket map[string]*Bucket
	config        *Config
	metrics       *Metrics
}

// NewLimiter creates a new rate limiter from configuration.
func NewLimiter(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	l := &Limiter{
		enabled:       cfg.Enabled,
		sessionBucket: make(map[string]*Bucket),
		config:        cfg,
		metrics:       NewMetrics(),
	}

	l.globalBucket = NewBucket(
		float64(cfg.Global.BurstSize),
		cfg.Global.RequestsPerSecond,
	)

	for _, s := range cfg.SessionTypes {
		l.sessionBucket[s.Name] = NewBucket(
			float64(s.BurstSize),
			s.RequestsPerSecond,
		)
	}

	return l
}

// Allow checks whether an embedding-provider call for the given
// session type may proceed.
func (l *Limiter) Allow(sessionType string) *LimitResult {
	if !l.enabled {
		return &LimitResult{
			Allowed:   true,
			LimitType: "disabled",
			Remaining: -1,
		}
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if !l.globalBucket.TryConsume(1) {
		retryAfter := l.globalBucket.TimeToWait(1)
		l.metrics.RecordRejection("global", sessionType)
		return &LimitResult{
			Allowed:    false,
			RetryAfter: retryAfter,
			LimitType:  "global",
			Remaining:  l.globalBucket.Tokens(),
		}
	}

	if bucket, exists := l.sessionBucket[sessionType]; exists {
		if !bucket.TryConsume(1) {
			l.globalBucket.Reset()
			retryAfter := bucket.TimeToWait(1)
			l.metrics.RecordRejection(sessionType, sessionType)
			return &LimitResult{
				Allowed:    false,
				RetryAfter: retryAfter,
				LimitType:  sessionType,
				Remaining:  bucket.Tokens(),
			}
		}
		l.metrics.RecordAllowed(sessionType)
		return &LimitResult{
			Allowed:   true,
			LimitType: sessionType,
			Remaining: bucket.Tokens(),
		}
	}

	l.metrics.RecordAllowed(sessionType)
	return &LimitResult{
		Allowed:   true,
		LimitType: "global",
		Remaining: l.globalBucket.Tokens(),
	}
}

// IsEnabled returns whether rate limiting is enabled.
func (l *Limiter) IsEnabled() bool {
	return l.enabled
}

// SetEnabled enables or disables rate limiting.
func (l *Limiter) SetEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = enabled
}

// GetMetrics returns the current metrics.
func (l *Limiter) GetMetrics() *Metrics {
	return l.metrics
}

// GetSessionBucket returns the bucket for a specific session type (for testing).
func (l *Limiter) GetSessionBucket(sessionType string) *Bucket {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sessionBucket[sessionType]
}

// GetGlobalBucket returns the global bucket (for testing).
func (l *Limiter) GetGlobalBucket() *Bucket {
	return l.globalBucket
}

// Reset resets all buckets to full capacity.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.globalBucket.Reset()
	for _, bucket := range l.sessionBucket {
		bucket.Reset()
	}
}

// Stats returns current limiter statistics.
type Stats struct {
	Enabled       bool               `json:"enabled"`
	GlobalTokens  float64            `json:"global_tokens"`
	SessionTokens map[string]float64 `json:"session_tokens"`
}

// GetStats returns current limiter statistics.
func (l *Limiter) GetStats() *Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	stats := &Stats{
		Enabled:       l.enabled,
		GlobalTokens:  l.globalBucket.Tokens(),
		SessionTokens: make(map[string]float64),
	}

	for name, bucket := range l.sessionBucket {
		stats.SessionTokens[name] = bucket.Tokens()
	}

	return stats
}
