package search

import (
	"context"
	"errors"
	"testing"

	"github.com/MycelicMemory/mycelicmemory/internal/store"
	"github.com/MycelicMemory/mycelicmemory/internal/vectorstore"
)

type fakeLexical struct {
	results []store.LexicalResult
	err     error
	calls   []string
}

func (f *fakeLexical) SearchLexical(query string, limit int) ([]store.LexicalResult, error) {
	f.calls = append(f.calls, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func TestHybridSearchMergesAndRanks(t *testing.T) {
	lex := &fakeLexical{results: []store.LexicalResult{
		{ID: "a", BM25Score: -2.0}, // best lexical match (bm25 lower is better)
		{ID: "b", BM25Score: -1.0},
	}}
	vecs := vectorstore.NewCosineScanStore()

	s := New(lex, vecs, Weights{Vector: 0.7, Text: 0.3})
	candidates := []vectorstore.Candidate{
		{ID: "a", Embedding: []float32{1, 0}},
		{ID: "c", Embedding: []float32{1, 0}},
	}

	results, err := s.Search(context.Background(), "deploy", []float32{1, 0}, candidates, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	byID := map[string]Candidate{}
	for _, r := range results {
		byID[r.ID] = r
	}

	if _, ok := byID["b"]; !ok {
		t.Error("expected lexical-only candidate b to appear with zero vector score")
	}
	if byID["b"].VectorScore != 0 {
		t.Errorf("expected b vector score 0, got %v", byID["b"].VectorScore)
	}
	if _, ok := byID["c"]; !ok {
		t.Error("expected vector-only candidate c to appear with zero text score")
	}
	if byID["c"].TextScore != 0 {
		t.Errorf("expected c text score 0, got %v", byID["c"].TextScore)
	}

	if results[0].ID != "a" {
		t.Errorf("expected a (present in both legs) to rank first, got %s", results[0].ID)
	}
}

func TestHybridSearchRetriesAsPhraseOnLexicalError(t *testing.T) {
	calls := 0
	lex := &retryLexical{onCall: func(q string) ([]store.LexicalResult, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("fts5: syntax error near \"-\"")
		}
		return []store.LexicalResult{{ID: "a", BM25Score: -1}}, nil
	}}

	s := New(lex, vectorstore.NewCosineScanStore(), Weights{Vector: 0.7, Text: 0.3})
	results, err := s.Search(context.Background(), "co-located", nil, nil, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected a retry call, got %d calls", calls)
	}
	if len(results) != 1 || results[0].ID != "a" {
		t.Fatalf("expected phrase-retry result to be used, got %+v", results)
	}
}

func TestHybridSearchFallsBackToVectorOnlyWhenLexicalFailsTwice(t *testing.T) {
	lex := &fakeLexical{err: errors.New("fts5: syntax error")}
	vecs := vectorstore.NewCosineScanStore()

	s := New(lex, vecs, Weights{Vector: 0.7, Text: 0.3})
	candidates := []vectorstore.Candidate{{ID: "a", Embedding: []float32{1, 0}}}

	results, err := s.Search(context.Background(), "bad ~ query", []float32{1, 0}, candidates, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].TextScore != 0 {
		t.Fatalf("expected vector-only fallback, got %+v", results)
	}
}

type retryLexical struct {
	onCall func(query string) ([]store.LexicalResult, error)
}

func (r *retryLexical) SearchLexical(query string, limit int) ([]store.LexicalResult, error) {
	return r.onCall(query)
}
