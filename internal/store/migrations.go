package store

import "fmt"

// RunMigrations checks the current schema version and runs any
// pending migrations sequentially. There are no migrations past
// version 1 yet; this keeps the harness ready for the next schema
// bump without guessing its shape in advance.
func (s *Store) RunMigrations() error {
	version, err := s.GetSchemaVersion()
	if err != nil {
		version = 0
	}

	log.Info("checking migrations", "current_version", version, "target_version", SchemaVersion)

	if version > SchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, SchemaVersion)
	}
	if version == SchemaVersion {
		log.Debug("database is up to date")
		return nil
	}

	// Future migrations are added here as `if version < N { ... }` steps,
	// each updating schema_version as its final statement.
	return nil
}
