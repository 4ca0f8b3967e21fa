// Package store provides the SQLite-backed persistence layer for the
// memory lifecycle engine: the memories table and its lexical (FTS5)
// index, the audit/feedback/tuning logs, the current-context slot, and
// the meta key-value table. Single-writer, many-reader concurrency is
// enforced by holding exactly one open connection and serializing
// writes through a typed retry wrapper for SQLITE_BUSY conditions.
package store
