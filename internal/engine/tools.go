package engine

import (
	"context"
	"time"

	"github.com/MycelicMemory/mycelicmemory/internal/scorer"
	"github.com/MycelicMemory/mycelicmemory/internal/store"
	"github.com/MycelicMemory/mycelicmemory/internal/vectorstore"
)

// Store inserts a new memory directly, the tool-style counterpart to
// auto-capture for agent- or user-initiated writes.
func (e *Engine) Store(ctx context.Context, text, memoryType, tier string, pinned bool) (*store.Memory, error) {
	vec, err := e.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	m := &store.Memory{
		Text:               text,
		MemoryType:         memoryType,
		Tier:               tier,
		Pinned:             pinned,
		Source:             "tool",
		Embedding:          store.EncodeEmbedding(vec),
		EmbeddingModel:     e.embedder.Name(),
		EmbeddingDimension: e.embedder.Dimensions(),
	}
	if err := e.store.InsertMemory(m); err != nil {
		return nil, err
	}

	e.mirrorToNativeIndex(ctx, m.ID)
	return m, nil
}

// SearchResult is one hybrid-search hit joined back to its full memory
// record, for the ad-hoc search tool.
type SearchResult struct {
	Memory      *store.Memory
	VectorScore float64
	TextScore   float64
	Combined    float64
}

// Search runs the hybrid searcher directly against a caller-supplied
// query, independent of the budgeted allocator recall uses; it is the
// tool surface an agent uses to look memories up by hand.
func (e *Engine) Search(ctx context.Context, query string, maxItems int) ([]SearchResult, error) {
	if query == "" {
		return nil, &store.EmptyQueryError{}
	}

	vec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	existing, err := e.store.ListEmbeddingCandidates()
	if err != nil {
		return nil, err
	}
	pool := make([]vectorstore.Candidate, 0, len(existing))
	for _, c := range existing {
		pool = append(pool, vectorstore.Candidate{ID: c.ID, Embedding: store.DecodeEmbedding(c.Embedding)})
	}

	hits, err := e.searcher.Search(ctx, query, vec, pool, maxItems)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.ID)
	}
	memories, err := e.store.QueryByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*store.Memory, len(memories))
	for _, m := range memories {
		byID[m.ID] = m
	}

	out := make([]SearchResult, 0, len(hits))
	for _, h := range hits {
		m, ok := byID[h.ID]
		if !ok {
			continue
		}
		out = append(out, SearchResult{Memory: m, VectorScore: h.VectorScore, TextScore: h.TextScore, Combined: h.Combined})
	}
	return out, nil
}

// Forget sets do_not_inject, excluding a memory from recall without
// deleting it. hard=true instead hard-deletes the row (spec.md §6
// "forget (with hard flag)").
func (e *Engine) Forget(id string, hard bool, reason string) error {
	if hard {
		return e.store.DeleteMemory(id)
	}

	m, err := e.store.GetMemory(id)
	if err != nil {
		return err
	}
	if m.DoNotInject {
		return &store.AlreadyForgottenError{ID: id}
	}
	return e.store.SetFlag(id, "do_not_inject", true, "forget", reason)
}

// Restore clears do_not_inject on a previously forgotten memory.
func (e *Engine) Restore(id string, reason string) error {
	m, err := e.store.GetMemory(id)
	if err != nil {
		return err
	}
	if !m.DoNotInject {
		return &store.NotForgottenError{ID: id}
	}
	return e.store.SetFlag(id, "do_not_inject", false, "restore", reason)
}

// Pin marks a memory exempt from decay and eligible for the
// allocator's pinned bucket.
func (e *Engine) Pin(id string, reason string) error {
	m, err := e.store.GetMemory(id)
	if err != nil {
		return err
	}
	if m.Pinned {
		return &store.AlreadyPinnedError{ID: id}
	}
	return e.store.SetFlag(id, "pinned", true, "pin", reason)
}

// Unpin removes a memory's pin, returning it to ordinary decay and
// allocation.
func (e *Engine) Unpin(id string, reason string) error {
	m, err := e.store.GetMemory(id)
	if err != nil {
		return err
	}
	if !m.Pinned {
		return &store.NotPinnedError{ID: id}
	}
	return e.store.SetFlag(id, "pinned", false, "unpin", reason)
}

// SetContext replaces the single current-context slot. A zero or
// negative ttlSeconds falls back to the configured default.
func (e *Engine) SetContext(text string, ttlSeconds int) error {
	if ttlSeconds <= 0 {
		ttlSeconds = e.cfg.Context.TTLHours * 3600
	}
	return e.store.SetContext(text, time.Now().UTC(), ttlSeconds)
}

// ClearContext empties the current-context slot.
func (e *Engine) ClearContext() error {
	return e.store.ClearContext()
}

// ExplainResult is the score breakdown and audit history behind one
// memory's current standing, for the explain tool.
type ExplainResult struct {
	Memory *store.Memory
	Score  scorer.Components
	Audit  []*store.AuditEntry
}

// Explain reports a memory's current scoring components (with no
// query similarity contribution, since explain is not tied to a
// search) and its full audit trail.
func (e *Engine) Explain(id string) (ExplainResult, error) {
	m, err := e.store.GetMemory(id)
	if err != nil {
		return ExplainResult{}, err
	}

	audit, err := e.store.AuditTrail(id)
	if err != nil {
		return ExplainResult{}, err
	}

	comp, _ := scorer.Score(scorer.Input{
		MemoryType:     m.MemoryType,
		Tier:           m.Tier,
		Pinned:         m.Pinned,
		UseCount:       m.UseCount,
		CreatedAt:      m.CreatedAt,
		LastAccessedAt: m.LastAccessedAt,
		Now:            time.Now().UTC(),
		AllowArchive:   true,
	}, e.scoreWeights())

	return ExplainResult{Memory: m, Score: comp, Audit: audit}, nil
}
