package recall

import (
	"context"
	"testing"
	"time"

	"github.com/MycelicMemory/mycelicmemory/internal/allocator"
	"github.com/MycelicMemory/mycelicmemory/internal/scorer"
	"github.com/MycelicMemory/mycelicmemory/internal/search"
	"github.com/MycelicMemory/mycelicmemory/internal/store"
	"github.com/MycelicMemory/mycelicmemory/internal/vectorstore"
)

type fakeStore struct {
	memories       map[string]*store.Memory
	accessUpdates  []string
	feedback       []*store.InjectionFeedback
	embedCandidate []store.EmbeddingCandidate
}

func (f *fakeStore) QueryByIDs(ids []string) ([]*store.Memory, error) {
	var out []*store.Memory
	for _, id := range ids {
		if m, ok := f.memories[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateAccess(id string, now time.Time) error {
	f.accessUpdates = append(f.accessUpdates, id)
	return nil
}

func (f *fakeStore) GetContext(now time.Time) (*store.CurrentContext, error) {
	return nil, nil
}

func (f *fakeStore) InsertFeedback(fb *store.InjectionFeedback) error {
	f.feedback = append(f.feedback, fb)
	return nil
}

func (f *fakeStore) ListEmbeddingCandidates() ([]store.EmbeddingCandidate, error) {
	return f.embedCandidate, nil
}

type fakeLexical struct{}

func (fakeLexical) SearchLexical(query string, limit int) ([]store.LexicalResult, error) {
	return nil, nil
}

type fakeEmbedder struct{ vec []float32 }

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) { return f.vec, nil }
func (f *fakeEmbedder) Dimensions() int                                           { return len(f.vec) }
func (f *fakeEmbedder) Name() string                                              { return "fake" }

func TestRunGateDisabledReturnsEmpty(t *testing.T) {
	s := &fakeStore{memories: map[string]*store.Memory{}}
	p := New(s, &fakeEmbedder{vec: []float32{1, 0}}, fakeLexical{}, vectorstore.NewCosineScanStore(), search.Weights{Vector: 0.7, Text: 0.3}, 8)

	result, err := p.Run(context.Background(), "anything", Params{Enabled: false})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.PrependedContext != "" || len(result.SelectedIDs) != 0 {
		t.Errorf("expected empty result when disabled, got %+v", result)
	}
}

func TestRunSelectsAndUpdatesAccess(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m1 := &store.Memory{ID: "m1", Text: "deployment notes", MemoryType: "factual", Tier: "HOT", CreatedAt: now}

	s := &fakeStore{
		memories: map[string]*store.Memory{"m1": m1},
		embedCandidate: []store.EmbeddingCandidate{
			{ID: "m1", Embedding: store.EncodeEmbedding([]float32{1, 0})},
		},
	}

	p := New(s, &fakeEmbedder{vec: []float32{1, 0}}, fakeLexical{}, vectorstore.NewCosineScanStore(), search.Weights{Vector: 1, Text: 0}, 8)

	result, err := p.Run(context.Background(), "deployment process", Params{
		Enabled:      true,
		MaxItems:     5,
		Budgets:      allocator.Budgets{Hot: 1},
		ScoreWeights: scorer.Weights{Similarity: 0.5, Recency: 0.3, Frequency: 0.2},
		Now:          now,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.SelectedIDs) != 1 || result.SelectedIDs[0] != "m1" {
		t.Fatalf("expected m1 to be selected, got %v", result.SelectedIDs)
	}
	if len(s.accessUpdates) != 1 || s.accessUpdates[0] != "m1" {
		t.Errorf("expected access stats updated for m1, got %v", s.accessUpdates)
	}

	time.Sleep(10 * time.Millisecond)
	if len(s.feedback) != 1 {
		t.Errorf("expected one feedback row dispatched, got %d", len(s.feedback))
	}
}
