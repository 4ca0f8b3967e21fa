package store

import (
	"database/sql"
	"fmt"
	"time"
)

// AuditEntry is one row of the append-only memory_audit log.
type AuditEntry struct {
	ID           int64
	MemoryID     string
	Action       string
	OldValueJSON string
	NewValueJSON string
	CreatedAt    time.Time
}

// insertAuditTx writes one audit row inside an already-open
// transaction, so the state change and its audit record commit
// together (spec §7: "partial audit is not" acceptable).
func insertAuditTx(tx *sql.Tx, memoryID, action, oldJSON, newJSON string) error {
	if !IsValidAuditAction(action) {
		return fmt.Errorf("invalid audit action: %s", action)
	}
	_, err := tx.Exec(`
		INSERT INTO memory_audit (memory_id, action, old_value_json, new_value_json)
		VALUES (?, ?, ?, ?)
	`, memoryID, action, oldJSON, newJSON)
	return err
}

// AuditTrail returns every audit row for a memory, oldest first.
func (s *Store) AuditTrail(memoryID string) ([]*AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, memory_id, action, old_value_json, new_value_json, created_at
		FROM memory_audit WHERE memory_id = ? ORDER BY created_at ASC, id ASC
	`, memoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit trail: %w", err)
	}
	defer rows.Close()

	var out []*AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.MemoryID, &e.Action, &e.OldValueJSON, &e.NewValueJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
