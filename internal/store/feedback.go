package store

import "time"

// InjectionFeedback is one row per memory per injection event
// (spec §3 "InjectionFeedback"). Written asynchronously from recall;
// never on the critical path (spec §4.8 step 8).
type InjectionFeedback struct {
	MemoryID         string
	SessionKey       string
	InjectedAt       time.Time
	AccessFrequency  int
	InjectionDensity float64
	SessionOutcome   string
	ProxyScore       *float64
	AgentScore       *float64
}

// InsertFeedback appends a feedback row. Feedback and audit tables are
// append-only; readers never block writers there (spec §5).
func (s *Store) InsertFeedback(f *InjectionFeedback) error {
	if f.InjectedAt.IsZero() {
		f.InjectedAt = time.Now().UTC()
	}
	return WithRetry(func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		_, err := s.db.Exec(`
			INSERT INTO injection_feedback (
				memory_id, session_key, injected_at, access_frequency,
				injection_density, session_outcome, proxy_score, agent_score
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, f.MemoryID, nullString(f.SessionKey), f.InjectedAt, f.AccessFrequency,
			f.InjectionDensity, nullString(f.SessionOutcome), f.ProxyScore, f.AgentScore)
		return err
	})
}

// TuningLogEntry is one row of the append-only parameter-adjustment log.
type TuningLogEntry struct {
	Parameter         string
	OldValue          string
	NewValue          string
	Reason            string
	Source            string // auto | agent | user
	UserOverrideUntil *time.Time
	Reverted          bool
	Timestamp         time.Time
}

// InsertTuningLog appends a parameter-adjustment record.
func (s *Store) InsertTuningLog(e *TuningLogEntry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	return WithRetry(func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		_, err := s.db.Exec(`
			INSERT INTO tuning_log (
				parameter, old_value, new_value, reason, source,
				user_override_until, reverted, timestamp
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, e.Parameter, nullString(e.OldValue), nullString(e.NewValue), nullString(e.Reason), e.Source,
			e.UserOverrideUntil, e.Reverted, e.Timestamp)
		return err
	})
}
