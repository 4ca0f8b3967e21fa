package store

import (
	"database/sql"
	"fmt"
	"time"
)

// CurrentContext is the single-slot short-lived task description
// (spec §3 "CurrentContext"). Expiry is computed by wall-clock
// comparison; no background sweep is required.
type CurrentContext struct {
	Text       string
	CreatedAt  time.Time
	TTLSeconds int
}

// Expired reports whether the context has outlived its TTL as of now.
func (c *CurrentContext) Expired(now time.Time) bool {
	return now.After(c.CreatedAt.Add(time.Duration(c.TTLSeconds) * time.Second))
}

// SetContext replaces the single current-context slot.
func (s *Store) SetContext(text string, now time.Time, ttlSeconds int) error {
	return WithRetry(func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		_, err := s.db.Exec(`
			INSERT INTO current_context (id, text, created_at, ttl_seconds)
			VALUES (1, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET text = excluded.text, created_at = excluded.created_at, ttl_seconds = excluded.ttl_seconds
		`, text, now.UTC(), ttlSeconds)
		return err
	})
}

// ClearContext empties the current-context slot.
func (s *Store) ClearContext() error {
	return WithRetry(func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		_, err := s.db.Exec("DELETE FROM current_context WHERE id = 1")
		return err
	})
}

// GetContext returns the active context, or nil if unset or expired
// as of now.
func (s *Store) GetContext(now time.Time) (*CurrentContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var c CurrentContext
	err := s.db.QueryRow("SELECT text, created_at, ttl_seconds FROM current_context WHERE id = 1").
		Scan(&c.Text, &c.CreatedAt, &c.TTLSeconds)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read current context: %w", err)
	}
	if c.Expired(now) {
		return nil, nil
	}
	return &c, nil
}
