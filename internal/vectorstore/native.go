package vectorstore

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	"github.com/mattn/go-sqlite3"
)

const nativeDriverName = "sqlite3_vec"

var registerNativeDriver = sync.OnceFunc(func() {
	sql.Register(nativeDriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return sqlite_vec.Auto()
		},
	})
})

// NativeStore indexes embeddings in a sqlite-vec vec0 virtual table for
// approximate nearest-neighbor search, instead of scanning every
// candidate in process. It opens its own connection against the same
// database file so the main store connection never needs the
// extension loaded.
type NativeStore struct {
	db         *sql.DB
	dimensions int
	table      string
}

// OpenNative attempts to open a sqlite-vec-backed connection against
// path. It returns an error (never panics) when the extension can't be
// loaded or the vec0 module is unavailable, so callers can fall back
// to CosineScanStore.
func OpenNative(path string, dimensions int) (*NativeStore, error) {
	registerNativeDriver()

	db, err := sql.Open(nativeDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open native vector connection: %w", err)
	}
	db.SetMaxOpenConns(1)

	table := "vec_memories"
	createSQL := fmt.Sprintf(
		"CREATE VIRTUAL TABLE IF NOT EXISTS %s USING vec0(embedding float[%d], +memory_id text)",
		table, dimensions,
	)
	if _, err := db.Exec(createSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite-vec extension unavailable: %w", err)
	}

	return &NativeStore{db: db, dimensions: dimensions, table: table}, nil
}

func (s *NativeStore) Close() error { return s.db.Close() }

func (s *NativeStore) Index(ctx context.Context, id string, embedding []float32) error {
	if len(embedding) != s.dimensions {
		return fmt.Errorf("embedding dimension mismatch: expected %d, got %d", s.dimensions, len(embedding))
	}
	raw, err := sqlite_vec.SerializeFloat32(embedding)
	if err != nil {
		return fmt.Errorf("serialize embedding: %w", err)
	}

	if err := s.Remove(ctx, id); err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO %s(embedding, memory_id) VALUES (?, ?)", s.table),
		raw, id,
	)
	return err
}

func (s *NativeStore) Remove(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE memory_id = ?", s.table), id)
	return err
}

// Search runs a vec0 KNN query. The candidates slice is accepted to
// satisfy the Store interface and is ignored: results come from the
// backend's own index rather than a supplied candidate set.
func (s *NativeStore) Search(ctx context.Context, query []float32, candidates []Candidate, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 10
	}
	raw, err := sqlite_vec.SerializeFloat32(query)
	if err != nil {
		return nil, fmt.Errorf("serialize query vector: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT memory_id, distance FROM %s WHERE embedding MATCH ? AND k = ? ORDER BY distance", s.table),
		raw, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("vec0 knn query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var id string
		var distance float64
		if err := rows.Scan(&id, &distance); err != nil {
			return nil, err
		}
		// vec0's default metric is squared L2; fold it into a
		// similarity-like score so callers can treat every backend's
		// results the same way (higher is closer).
		results = append(results, Result{ID: id, Score: 1 / (1 + distance)})
	}
	return results, rows.Err()
}

func (s *NativeStore) Name() string { return "sqlite-vec" }
