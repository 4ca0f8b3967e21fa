package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Memory is a persisted fragment of text with lifecycle metadata
// (spec §3 "Memory").
type Memory struct {
	ID                 string
	Text               string
	MemoryType         string // procedural | factual | project | episodic
	Tier               string // HOT | WARM | COLD | ARCHIVE
	Importance         float64
	Pinned             bool
	DoNotInject        bool
	UseCount           int
	LastAccessedAt     *time.Time
	UseDays            []string
	CreatedAt          time.Time
	Source             string
	Category           string
	ParentID           string
	Embedding          []byte
	EmbeddingModel     string
	EmbeddingDimension int
}

// UseDaysJSON serializes UseDays as a sorted, deduplicated JSON array.
func (m *Memory) UseDaysJSON() string {
	days := dedupSortedDays(m.UseDays)
	b, _ := json.Marshal(days)
	return string(b)
}

func dedupSortedDays(days []string) []string {
	seen := make(map[string]bool, len(days))
	out := make([]string, 0, len(days))
	for _, d := range days {
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// ParseUseDays parses a JSON array of YYYY-MM-DD strings. Corrupt JSON
// is treated as empty with a warning, not a fatal error (spec §4.1).
func ParseUseDays(raw string) []string {
	if raw == "" {
		return nil
	}
	var days []string
	if err := json.Unmarshal([]byte(raw), &days); err != nil {
		log.Warn("corrupt use_days JSON, treating as empty", "error", err)
		return nil
	}
	return days
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// InsertMemory inserts a new memory, atomically populating the memory
// row (the FTS index is kept in sync by triggers; the embedding is
// carried in the same row so no separate commit is needed).
func (s *Store) InsertMemory(m *Memory) error {
	if m.Text == "" {
		return &EmptyMemoryTextError{}
	}
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if m.MemoryType == "" {
		m.MemoryType = "episodic"
	}
	if !IsValidMemoryType(m.MemoryType) {
		return fmt.Errorf("invalid memory_type: %s", m.MemoryType)
	}
	if m.Tier == "" {
		m.Tier = "HOT"
	}
	if !IsValidTier(m.Tier) {
		return fmt.Errorf("invalid tier: %s", m.Tier)
	}
	if m.Importance == 0 {
		m.Importance = 0.5
	}

	return WithRetry(func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		_, err := s.db.Exec(`
			INSERT INTO memories (
				id, text, memory_type, tier, importance, pinned, do_not_inject,
				use_count, last_accessed_at, use_days, created_at, source, category,
				parent_id, embedding, embedding_model, embedding_dimension
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			m.ID, m.Text, m.MemoryType, m.Tier, m.Importance, m.Pinned, m.DoNotInject,
			m.UseCount, m.LastAccessedAt, m.UseDaysJSON(), m.CreatedAt, nullString(m.Source), nullString(m.Category),
			nullString(m.ParentID), m.Embedding, nullString(m.EmbeddingModel), m.EmbeddingDimension,
		)
		if err != nil {
			return fmt.Errorf("failed to insert memory: %w", err)
		}
		return nil
	})
}

func scanMemory(row interface {
	Scan(dest ...interface{}) error
}) (*Memory, error) {
	var m Memory
	var useDaysJSON string
	var source, category, parentID, embeddingModel sql.NullString
	var lastAccessed sql.NullTime
	var embeddingDim sql.NullInt64

	err := row.Scan(
		&m.ID, &m.Text, &m.MemoryType, &m.Tier, &m.Importance, &m.Pinned, &m.DoNotInject,
		&m.UseCount, &lastAccessed, &useDaysJSON, &m.CreatedAt, &source, &category,
		&parentID, &m.Embedding, &embeddingModel, &embeddingDim,
	)
	if err != nil {
		return nil, err
	}

	m.Source = source.String
	m.Category = category.String
	m.ParentID = parentID.String
	m.EmbeddingModel = embeddingModel.String
	m.EmbeddingDimension = int(embeddingDim.Int64)
	m.UseDays = ParseUseDays(useDaysJSON)
	if lastAccessed.Valid {
		t := lastAccessed.Time
		m.LastAccessedAt = &t
	}
	return &m, nil
}

const memoryColumns = `
	id, text, memory_type, tier, importance, pinned, do_not_inject,
	use_count, last_accessed_at, use_days, created_at, source, category,
	parent_id, embedding, embedding_model, embedding_dimension
`

// GetMemory retrieves a memory by id. Returns a *MemoryNotFoundError if absent.
func (s *Store) GetMemory(id string) (*Memory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow("SELECT "+memoryColumns+" FROM memories WHERE id = ?", id)
	m, err := scanMemory(row)
	if err == sql.ErrNoRows {
		return nil, &MemoryNotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get memory: %w", err)
	}
	return m, nil
}

// QueryByIDs bulk-loads memories, preserving no particular order.
func (s *Store) QueryByIDs(ids []string) ([]*Memory, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	placeholders := make([]byte, 0, len(ids)*2)
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
		args[i] = id
	}

	query := "SELECT " + memoryColumns + " FROM memories WHERE id IN (" + string(placeholders) + ")"
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query memories: %w", err)
	}
	defer rows.Close()

	var out []*Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan memory: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// UpdateAccess increments use_count, sets last_accessed_at, and unions
// today's date into use_days. Idempotent per calendar date: use_count
// still increments on every call (spec property 7), only |use_days|
// caps at one increase per date.
func (s *Store) UpdateAccess(id string, now time.Time) error {
	return WithRetry(func() error {
		s.mu.Lock()
		defer s.mu.Unlock()

		var useDaysJSON string
		var useCount int
		err := s.db.QueryRow("SELECT use_count, use_days FROM memories WHERE id = ?", id).Scan(&useCount, &useDaysJSON)
		if err == sql.ErrNoRows {
			return &MemoryNotFoundError{ID: id}
		}
		if err != nil {
			return fmt.Errorf("failed to read access stats: %w", err)
		}

		days := ParseUseDays(useDaysJSON)
		today := now.UTC().Format("2006-01-02")
		days = dedupSortedDays(append(days, today))
		newJSON, _ := json.Marshal(days)

		_, err = s.db.Exec(`
			UPDATE memories
			SET use_count = use_count + 1, last_accessed_at = ?, use_days = ?
			WHERE id = ?
		`, now.UTC(), string(newJSON), id)
		if err != nil {
			return fmt.Errorf("failed to update access stats: %w", err)
		}
		return nil
	})
}

// SetTier updates a memory's tier and writes a matching audit row in
// the same statement batch so state change and audit commit together
// (spec §7 "partial audit is not" acceptable).
func (s *Store) SetTier(id, newTier, action, reason string) error {
	if !IsValidTier(newTier) {
		return fmt.Errorf("invalid tier: %s", newTier)
	}
	if !IsValidAuditAction(action) {
		return fmt.Errorf("invalid audit action: %s", action)
	}

	return WithRetry(func() error {
		s.mu.Lock()
		defer s.mu.Unlock()

		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback()

		var oldTier, memoryType string
		if err := tx.QueryRow("SELECT tier, memory_type FROM memories WHERE id = ?", id).Scan(&oldTier, &memoryType); err != nil {
			if err == sql.ErrNoRows {
				return &MemoryNotFoundError{ID: id}
			}
			return err
		}

		if _, err := tx.Exec("UPDATE memories SET tier = ? WHERE id = ?", newTier, id); err != nil {
			return err
		}

		oldVal, _ := json.Marshal(map[string]string{"tier": oldTier, "memory_type": memoryType})
		newVal, _ := json.Marshal(map[string]string{"tier": newTier, "memory_type": memoryType})

		if err := insertAuditTx(tx, id, action, string(oldVal), string(newVal)); err != nil {
			return err
		}

		_ = reason // reason is carried by callers for logging; not persisted as a column
		return tx.Commit()
	})
}

// SetFlag sets the pinned or do_not_inject flag and writes a matching
// audit row.
func (s *Store) SetFlag(id, flag string, value bool, action, reason string) error {
	if flag != "pinned" && flag != "do_not_inject" {
		return fmt.Errorf("invalid flag: %s", flag)
	}
	if !IsValidAuditAction(action) {
		return fmt.Errorf("invalid audit action: %s", action)
	}

	return WithRetry(func() error {
		s.mu.Lock()
		defer s.mu.Unlock()

		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback()

		query := "SELECT " + flag + ", tier, memory_type FROM memories WHERE id = ?"
		var oldValue bool
		var tier, memoryType string
		if err := tx.QueryRow(query, id).Scan(&oldValue, &tier, &memoryType); err != nil {
			if err == sql.ErrNoRows {
				return &MemoryNotFoundError{ID: id}
			}
			return err
		}

		if _, err := tx.Exec("UPDATE memories SET "+flag+" = ? WHERE id = ?", value, id); err != nil {
			return err
		}

		oldVal, _ := json.Marshal(map[string]interface{}{flag: oldValue, "tier": tier, "memory_type": memoryType})
		newVal, _ := json.Marshal(map[string]interface{}{flag: value, "tier": tier, "memory_type": memoryType})

		if err := insertAuditTx(tx, id, action, string(oldVal), string(newVal)); err != nil {
			return err
		}

		_ = reason
		return tx.Commit()
	})
}

// DeleteMemory hard-deletes a memory; foreign keys cascade to audit
// and feedback rows (spec §3 invariant 4, §6 "Foreign keys cascade").
func (s *Store) DeleteMemory(id string) error {
	return WithRetry(func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		res, err := s.db.Exec("DELETE FROM memories WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to delete memory: %w", err)
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return &MemoryNotFoundError{ID: id}
		}
		return nil
	})
}

// ListEmbeddingCandidates returns the id and embedding of every memory
// that has one, for the hybrid searcher's vector leg.
func (s *Store) ListEmbeddingCandidates() ([]EmbeddingCandidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT id, embedding FROM memories WHERE embedding IS NOT NULL")
	if err != nil {
		return nil, fmt.Errorf("failed to list embedding candidates: %w", err)
	}
	defer rows.Close()

	var out []EmbeddingCandidate
	for rows.Next() {
		var c EmbeddingCandidate
		if err := rows.Scan(&c.ID, &c.Embedding); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// EmbeddingCandidate pairs a memory id with its raw stored embedding.
type EmbeddingCandidate struct {
	ID        string
	Embedding []byte
}

// ListByTier returns the unpinned memories currently in the given tier,
// used by the decay and promotion engines to build their candidate
// pools. Pinned memories are never returned.
func (s *Store) ListByTier(tier string) ([]*Memory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT "+memoryColumns+" FROM memories WHERE tier = ? AND pinned = 0", tier)
	if err != nil {
		return nil, fmt.Errorf("failed to list memories by tier: %w", err)
	}
	defer rows.Close()

	var out []*Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
