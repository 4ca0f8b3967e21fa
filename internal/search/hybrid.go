package search

import (
	"context"
	"fmt"
	"sort"

	"github.com/MycelicMemory/mycelicmemory/internal/store"
	"github.com/MycelicMemory/mycelicmemory/internal/vectorstore"
)

const minPoolSize = 30

// Weights are the blend coefficients for the final combined score
// (spec.md §4.3 defaults: vector 0.7, text 0.3).
type Weights struct {
	Vector float64
	Text   float64
}

// Candidate is one merged hybrid-search result, retaining both leg
// scores so the scorer and explain tool can see how it was produced.
type Candidate struct {
	ID          string
	VectorScore float64
	TextScore   float64
	Combined    float64
}

// Lexical is the lexical-search collaborator the hybrid searcher needs
// from the store; kept as an interface so tests can fake it.
type Lexical interface {
	SearchLexical(query string, limit int) ([]store.LexicalResult, error)
}

// Searcher runs the hybrid lexical+vector search.
type Searcher struct {
	store   Lexical
	vectors vectorstore.Store
	weights Weights
}

// New builds a Searcher over the given lexical store and vector
// backend, with the given blend weights.
func New(s Lexical, vectors vectorstore.Store, weights Weights) *Searcher {
	return &Searcher{store: s, vectors: vectors, weights: weights}
}

// Search runs both legs of the hybrid search, merges by id, and
// returns up to maxItems candidates sorted by combined score
// descending.
func (h *Searcher) Search(ctx context.Context, query string, queryVector []float32, candidates []vectorstore.Candidate, maxItems int) ([]Candidate, error) {
	poolSize := 3 * maxItems
	if poolSize < minPoolSize {
		poolSize = minPoolSize
	}

	textScores, err := h.lexicalLeg(query, poolSize)
	if err != nil {
		return nil, err
	}

	vectorResults, err := h.vectors.Search(ctx, queryVector, candidates, poolSize)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	merged := make(map[string]*Candidate)
	for id, score := range textScores {
		merged[id] = &Candidate{ID: id, TextScore: score}
	}
	for _, r := range vectorResults {
		if c, ok := merged[r.ID]; ok {
			c.VectorScore = r.Score
		} else {
			merged[r.ID] = &Candidate{ID: r.ID, VectorScore: r.Score}
		}
	}

	out := make([]Candidate, 0, len(merged))
	for _, c := range merged {
		c.Combined = h.weights.Vector*c.VectorScore + h.weights.Text*c.TextScore
		out = append(out, *c)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Combined != out[j].Combined {
			return out[i].Combined > out[j].Combined
		}
		return out[i].ID < out[j].ID
	})

	if maxItems > 0 && len(out) > maxItems {
		out = out[:maxItems]
	}
	return out, nil
}

// lexicalLeg retrieves up to poolSize lexical matches, negates bm25
// (lower is better in SQLite's ranking) and normalizes to [0, 1] by
// the maximum score in the result set. Falls back to a quoted phrase
// query on parse error, and to an empty (zero-contribution) leg if
// that also fails.
func (h *Searcher) lexicalLeg(query string, poolSize int) (map[string]float64, error) {
	results, err := h.store.SearchLexical(query, poolSize)
	if err != nil {
		results, err = h.store.SearchLexical(fmt.Sprintf("%q", query), poolSize)
		if err != nil {
			return map[string]float64{}, nil
		}
	}

	scores := make(map[string]float64, len(results))
	maxScore := 0.0
	for _, r := range results {
		negated := -r.BM25Score
		scores[r.ID] = negated
		if negated > maxScore {
			maxScore = negated
		}
	}

	if maxScore <= 0 {
		for id := range scores {
			scores[id] = 0
		}
		return scores, nil
	}

	normalized := make(map[string]float64, len(scores))
	for id, s := range scores {
		normalized[id] = s / maxScore
	}
	return normalized, nil
}
