package recall

import (
	"context"
	"time"

	"github.com/MycelicMemory/mycelicmemory/internal/allocator"
	"github.com/MycelicMemory/mycelicmemory/internal/embedding"
	"github.com/MycelicMemory/mycelicmemory/internal/scorer"
	"github.com/MycelicMemory/mycelicmemory/internal/search"
	"github.com/MycelicMemory/mycelicmemory/internal/store"
	"github.com/MycelicMemory/mycelicmemory/internal/vectorstore"
)

// Store is the store collaborator the recall pipeline needs.
type Store interface {
	QueryByIDs(ids []string) ([]*store.Memory, error)
	UpdateAccess(id string, now time.Time) error
	GetContext(now time.Time) (*store.CurrentContext, error)
	InsertFeedback(f *store.InjectionFeedback) error
	ListEmbeddingCandidates() ([]store.EmbeddingCandidate, error)
}

// Params bundles the per-call configuration a host supplies to Run,
// already resolved from pkg/config (global/session-type/backward-compat
// autoRecall shapes are the engine layer's concern, not this package's).
type Params struct {
	Enabled      bool
	MaxItems     int
	MinScore     *float64
	Budgets      allocator.Budgets
	ScoreWeights scorer.Weights
	SearchWeights search.Weights
	SessionKey   string
	Now          time.Time
}

// Result is what Run hands back to the host.
type Result struct {
	PrependedContext string
	SelectedIDs      []string
	ConsideredCount  int
	BucketCounts     map[string]int
}

// Pipeline orchestrates query extraction, embedding, hybrid search,
// allocation, access-stat updates, and envelope formatting.
type Pipeline struct {
	store    Store
	embedder embedding.Provider
	searcher *search.Searcher
	feedback chan *store.InjectionFeedback
}

// New builds a recall Pipeline. feedbackBuffer sizes the async
// feedback channel; a background goroutine drains it so Run never
// blocks on feedback writes (spec.md §5/§4.8).
func New(s Store, embedder embedding.Provider, lex search.Lexical, vectors vectorstore.Store, searchWeights search.Weights, feedbackBuffer int) *Pipeline {
	if feedbackBuffer <= 0 {
		feedbackBuffer = 64
	}
	p := &Pipeline{
		store:    s,
		embedder: embedder,
		searcher: search.New(lex, vectors, searchWeights),
		feedback: make(chan *store.InjectionFeedback, feedbackBuffer),
	}
	go p.drainFeedback()
	return p
}

func (p *Pipeline) drainFeedback() {
	for f := range p.feedback {
		_ = p.store.InsertFeedback(f)
	}
}

// Run executes the full auto-recall pipeline for one agent turn.
func (p *Pipeline) Run(ctx context.Context, prompt string, params Params) (Result, error) {
	var result Result

	if !params.Enabled {
		return result, nil
	}

	now := params.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	queryText := ExtractQuery(prompt)

	queryVector, err := p.embedder.Embed(ctx, queryText)
	if err != nil {
		return result, err
	}

	existing, err := p.store.ListEmbeddingCandidates()
	if err != nil {
		return result, err
	}
	pool := make([]vectorstore.Candidate, 0, len(existing))
	for _, e := range existing {
		pool = append(pool, vectorstore.Candidate{ID: e.ID, Embedding: store.DecodeEmbedding(e.Embedding)})
	}

	poolSize := 3 * params.MaxItems
	if poolSize < 30 {
		poolSize = 30
	}

	hits, err := p.searcher.Search(ctx, queryText, queryVector, pool, poolSize)
	if err != nil {
		return result, err
	}
	if len(hits) == 0 {
		return result, nil
	}

	ids := make([]string, 0, len(hits))
	similarity := make(map[string]float64, len(hits))
	for _, h := range hits {
		ids = append(ids, h.ID)
		similarity[h.ID] = h.VectorScore
	}

	candidates, err := p.store.QueryByIDs(ids)
	if err != nil {
		return result, err
	}

	alloc := allocator.Allocate(candidates, similarity, allocator.Params{
		MaxItems: params.MaxItems,
		Budgets:  params.Budgets,
		MinScore: params.MinScore,
		Weights:  params.ScoreWeights,
		Now:      now,
	})

	result.ConsideredCount = alloc.ConsideredCount
	result.BucketCounts = alloc.BucketCounts

	selected := make([]*store.Memory, 0, len(alloc.Selected))
	for _, item := range alloc.Selected {
		selected = append(selected, item.Memory)
		result.SelectedIDs = append(result.SelectedIDs, item.Memory.ID)
	}

	for _, m := range selected {
		if err := p.store.UpdateAccess(m.ID, now); err != nil {
			return result, err
		}
	}

	var contextText string
	if cc, err := p.store.GetContext(now); err == nil && cc != nil {
		contextText = cc.Text
	}

	result.PrependedContext = BuildEnvelope(contextText, selected)

	density := 0.0
	if len(candidates) > 0 {
		density = float64(len(selected)) / float64(len(candidates))
	}
	for _, m := range selected {
		p.dispatchFeedback(&store.InjectionFeedback{
			MemoryID:         m.ID,
			SessionKey:       params.SessionKey,
			InjectedAt:       now,
			InjectionDensity: density,
		})
	}

	return result, nil
}

// dispatchFeedback enqueues a feedback row without blocking the
// caller; a full channel drops the row rather than stalling recall,
// since feedback is best-effort diagnostics, never a correctness
// dependency.
func (p *Pipeline) dispatchFeedback(f *store.InjectionFeedback) {
	select {
	case p.feedback <- f:
	default:
	}
}
