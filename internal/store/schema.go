package store

// SchemaVersion is the current schema version.
const SchemaVersion = 1

// CoreSchema contains the main table definitions.
const CoreSchema = `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY,
	applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- =============================================================================
-- MEMORIES TABLE
-- =============================================================================
CREATE TABLE IF NOT EXISTS memories (
	id TEXT PRIMARY KEY,
	text TEXT NOT NULL,
	memory_type TEXT NOT NULL CHECK (memory_type IN ('procedural', 'factual', 'project', 'episodic')),
	tier TEXT NOT NULL CHECK (tier IN ('HOT', 'WARM', 'COLD', 'ARCHIVE')) DEFAULT 'HOT',
	importance REAL NOT NULL DEFAULT 0.5 CHECK (importance >= 0.0 AND importance <= 1.0),
	pinned BOOLEAN NOT NULL DEFAULT 0,
	do_not_inject BOOLEAN NOT NULL DEFAULT 0,
	use_count INTEGER NOT NULL DEFAULT 0,
	last_accessed_at DATETIME,
	use_days TEXT NOT NULL DEFAULT '[]', -- JSON array of YYYY-MM-DD
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	source TEXT,
	category TEXT,
	parent_id TEXT REFERENCES memories(id) ON DELETE SET NULL,
	embedding BLOB,
	embedding_model TEXT,
	embedding_dimension INTEGER
);

CREATE INDEX IF NOT EXISTS idx_memories_tier ON memories(tier);
CREATE INDEX IF NOT EXISTS idx_memories_do_not_inject ON memories(do_not_inject);
CREATE INDEX IF NOT EXISTS idx_memories_pinned ON memories(pinned);
CREATE INDEX IF NOT EXISTS idx_memories_last_accessed_at ON memories(last_accessed_at);
CREATE INDEX IF NOT EXISTS idx_memories_memory_type ON memories(memory_type);
CREATE INDEX IF NOT EXISTS idx_memories_parent ON memories(parent_id);

-- =============================================================================
-- MEMORY AUDIT TABLE
-- Append-only log of tier/flag transitions (spec §3 "Audit").
-- =============================================================================
CREATE TABLE IF NOT EXISTS memory_audit (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	memory_id TEXT NOT NULL,
	action TEXT NOT NULL CHECK (action IN ('demote', 'promote', 'forget', 'restore', 'pin', 'unpin')),
	old_value_json TEXT NOT NULL,
	new_value_json TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (memory_id) REFERENCES memories(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_audit_memory_id ON memory_audit(memory_id);
CREATE INDEX IF NOT EXISTS idx_audit_created_at ON memory_audit(created_at);

-- =============================================================================
-- INJECTION FEEDBACK TABLE
-- One row per memory per injection event (spec §3 "InjectionFeedback").
-- =============================================================================
CREATE TABLE IF NOT EXISTS injection_feedback (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	memory_id TEXT NOT NULL,
	session_key TEXT,
	injected_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	access_frequency INTEGER NOT NULL DEFAULT 0,
	injection_density REAL NOT NULL DEFAULT 0,
	session_outcome TEXT,
	proxy_score REAL,
	agent_score REAL,
	FOREIGN KEY (memory_id) REFERENCES memories(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_feedback_memory_id ON injection_feedback(memory_id);
CREATE INDEX IF NOT EXISTS idx_feedback_injected_at ON injection_feedback(injected_at);

-- =============================================================================
-- TUNING LOG TABLE
-- Append-only record of parameter adjustments (spec §3 "TuningLog").
-- =============================================================================
CREATE TABLE IF NOT EXISTS tuning_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	parameter TEXT NOT NULL,
	old_value TEXT,
	new_value TEXT,
	reason TEXT,
	source TEXT NOT NULL CHECK (source IN ('auto', 'agent', 'user')),
	user_override_until DATETIME,
	reverted BOOLEAN NOT NULL DEFAULT 0,
	timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_tuning_timestamp ON tuning_log(timestamp);
CREATE INDEX IF NOT EXISTS idx_tuning_parameter ON tuning_log(parameter);

-- =============================================================================
-- CURRENT CONTEXT TABLE
-- Single-slot short-lived task description (spec §3 "CurrentContext").
-- =============================================================================
CREATE TABLE IF NOT EXISTS current_context (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	text TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	ttl_seconds INTEGER NOT NULL
);

-- =============================================================================
-- META TABLE
-- Key/value slots: last_decay_run, persisted profile selections.
-- =============================================================================
CREATE TABLE IF NOT EXISTS meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// FTS5Schema contains the full-text search configuration.
const FTS5Schema = `
CREATE VIRTUAL TABLE IF NOT EXISTS memories_fts USING fts5(
	id UNINDEXED,
	text,
	memory_type UNINDEXED,
	tier UNINDEXED
);

CREATE TRIGGER IF NOT EXISTS memories_fts_insert AFTER INSERT ON memories BEGIN
	INSERT INTO memories_fts(id, text, memory_type, tier)
	VALUES (new.id, new.text, new.memory_type, new.tier);
END;

CREATE TRIGGER IF NOT EXISTS memories_fts_delete AFTER DELETE ON memories BEGIN
	DELETE FROM memories_fts WHERE id = old.id;
END;

CREATE TRIGGER IF NOT EXISTS memories_fts_update AFTER UPDATE ON memories BEGIN
	UPDATE memories_fts SET
		text = new.text,
		memory_type = new.memory_type,
		tier = new.tier
	WHERE id = old.id;
END;
`

// MemoryTypes enumerates the four valid memory_type values.
var MemoryTypes = []string{"procedural", "factual", "project", "episodic"}

// Tiers enumerates the four valid tier values, from warmest to coldest.
var Tiers = []string{"HOT", "WARM", "COLD", "ARCHIVE"}

// AuditActions enumerates the valid memory_audit.action values.
var AuditActions = []string{"demote", "promote", "forget", "restore", "pin", "unpin"}

// IsValidMemoryType reports whether t is one of the four memory types.
func IsValidMemoryType(t string) bool {
	for _, mt := range MemoryTypes {
		if mt == t {
			return true
		}
	}
	return false
}

// IsValidTier reports whether t is one of the four tiers.
func IsValidTier(t string) bool {
	for _, tier := range Tiers {
		if tier == t {
			return true
		}
	}
	return false
}

// IsValidAuditAction reports whether a is a recognized audit action.
func IsValidAuditAction(a string) bool {
	for _, action := range AuditActions {
		if action == a {
			return true
		}
	}
	return false
}
