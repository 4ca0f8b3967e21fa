package store

import "fmt"

// LexicalResult is one row of a lexical (FTS5) search, with the raw
// bm25() score preserved for the hybrid searcher to normalize.
type LexicalResult struct {
	ID        string
	BM25Score float64
}

// SearchLexical runs an FTS5 MATCH query against memories_fts, using
// SQLite's bm25() ranking function. bm25() returns a more-negative
// value for a better match, so callers negate when blending (spec
// §4.3 "negates the raw ordering so higher is better").
//
// A second attempt wraps the query as a quoted phrase when the first
// MATCH fails to parse (stray FTS5 operators, hyphenated tokens); the
// caller handles the case where both attempts fail by skipping the
// lexical leg entirely.
func (s *Store) SearchLexical(query string, limit int) ([]LexicalResult, error) {
	results, err := s.searchLexicalRaw(query, limit)
	if err == nil {
		return results, nil
	}

	quoted := fmt.Sprintf("%q", query)
	return s.searchLexicalRaw(quoted, limit)
}

func (s *Store) searchLexicalRaw(matchQuery string, limit int) ([]LexicalResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, bm25(memories_fts) AS score
		FROM memories_fts
		WHERE memories_fts MATCH ?
		ORDER BY score ASC
		LIMIT ?
	`, matchQuery, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LexicalResult
	for rows.Next() {
		var r LexicalResult
		if err := rows.Scan(&r.ID, &r.BM25Score); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
