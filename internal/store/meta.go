package store

import (
	"database/sql"
	"fmt"
	"time"
)

// GetMeta reads a key/value slot (e.g. "last_decay_run"). Returns ""
// and no error if unset.
func (s *Store) GetMeta(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRow("SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read meta[%s]: %w", key, err)
	}
	return value, nil
}

// SetMeta upserts a key/value slot.
func (s *Store) SetMeta(key, value string) error {
	return WithRetry(func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		_, err := s.db.Exec(`
			INSERT INTO meta (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, key, value)
		return err
	})
}

// LastDecayRun returns the timestamp of the last completed decay
// sweep, or the zero time if none has run.
func (s *Store) LastDecayRun() (time.Time, error) {
	raw, err := s.GetMeta("last_decay_run")
	if err != nil || raw == "" {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, raw)
}

// SetLastDecayRun records the timestamp of a completed decay sweep.
func (s *Store) SetLastDecayRun(t time.Time) error {
	return s.SetMeta("last_decay_run", t.UTC().Format(time.RFC3339))
}

// GetGlobalDecayProfile returns the engine-wide persisted decay
// profile override, if one has been set via the tuning log path.
func (s *Store) GetGlobalDecayProfile() (string, bool, error) {
	profile, err := s.GetMeta("decay_profile:global")
	if err != nil {
		return "", false, err
	}
	return profile, profile != "", nil
}

// SetGlobalDecayProfile persists an engine-wide decay profile override.
func (s *Store) SetGlobalDecayProfile(profile string) error {
	return s.SetMeta("decay_profile:global", profile)
}

// GetAgentDecayProfile returns the persisted decay profile override
// for one agent id, if any.
func (s *Store) GetAgentDecayProfile(agentID string) (string, bool, error) {
	profile, err := s.GetMeta("decay_profile:agent:" + agentID)
	if err != nil {
		return "", false, err
	}
	return profile, profile != "", nil
}

// SetAgentDecayProfile persists a per-agent decay profile override.
func (s *Store) SetAgentDecayProfile(agentID, profile string) error {
	return s.SetMeta("decay_profile:agent:"+agentID, profile)
}
