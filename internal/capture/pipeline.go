package capture

import (
	"context"
	"sort"

	"github.com/MycelicMemory/mycelicmemory/internal/embedding"
	"github.com/MycelicMemory/mycelicmemory/internal/store"
	"github.com/MycelicMemory/mycelicmemory/internal/vectorstore"
	"github.com/MycelicMemory/mycelicmemory/pkg/config"
)

// candidate is a segmented, filtered, classified fragment awaiting
// embedding and persistence.
type candidate struct {
	Text           string
	Classification Classification
}

// Persister is the store collaborator the pipeline needs.
type Persister interface {
	InsertMemory(m *store.Memory) error
	ListEmbeddingCandidates() ([]store.EmbeddingCandidate, error)
}

// Pipeline runs the full auto-capture sequence over one agent turn.
type Pipeline struct {
	store    Persister
	embedder embedding.Provider
	vectors  vectorstore.Store
	cfg      config.AutoCaptureConfig
}

// New builds a capture Pipeline.
func New(s Persister, embedder embedding.Provider, vectors vectorstore.Store, cfg config.AutoCaptureConfig) *Pipeline {
	return &Pipeline{store: s, embedder: embedder, vectors: vectors, cfg: cfg}
}

// Result summarizes one Run call.
type Result struct {
	Captured []string // ids of newly persisted memories
	Skipped  int       // candidates dropped by dedup
}

// Run executes gate → segment → filter → classify → rank/truncate →
// embed+dedup+persist over one turn's output text.
func (p *Pipeline) Run(ctx context.Context, turnOutput string, turnSucceeded bool, defaultTier string) (Result, error) {
	var result Result

	if !Gate(p.cfg.Enabled, turnSucceeded, turnOutput) {
		return result, nil
	}

	segCfg := SegmentConfig{MaxLength: p.cfg.MaxLength}
	if segCfg.MaxLength == 0 {
		segCfg.MaxLength = DefaultSegmentConfig().MaxLength
	}
	segments := Segment(turnOutput, segCfg)

	filterCfg := FilterConfig{MinLength: p.cfg.MinLength, MaxLength: p.cfg.MaxLength}
	if filterCfg.MinLength == 0 && filterCfg.MaxLength == 0 {
		filterCfg = DefaultFilterConfig()
	}
	segments = Filter(segments, filterCfg)

	candidates := make([]candidate, 0, len(segments))
	for _, s := range segments {
		candidates = append(candidates, candidate{Text: s, Classification: Classify(s, filterCfg.MaxLength)})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Classification.Salience > candidates[j].Classification.Salience
	})

	maxCaptures := p.cfg.MaxCaptures
	if maxCaptures <= 0 {
		maxCaptures = 3
	}
	keepPool := 2 * maxCaptures
	if len(candidates) > keepPool {
		candidates = candidates[:keepPool]
	}

	dedupeThreshold := p.cfg.DedupeCosine
	if dedupeThreshold == 0 {
		dedupeThreshold = 0.95
	}

	existing, err := p.store.ListEmbeddingCandidates()
	if err != nil {
		return result, err
	}
	pool := make([]vectorstore.Candidate, 0, len(existing))
	for _, e := range existing {
		pool = append(pool, vectorstore.Candidate{ID: e.ID, Embedding: store.DecodeEmbedding(e.Embedding)})
	}

	if defaultTier == "" {
		defaultTier = "HOT"
	}

	for _, c := range candidates {
		if len(result.Captured) >= maxCaptures {
			break
		}

		vec, err := p.embedder.Embed(ctx, c.Text)
		if err != nil {
			return result, err
		}

		nearest, _ := p.vectors.Search(ctx, vec, pool, 1)
		if len(nearest) > 0 && nearest[0].Score >= dedupeThreshold {
			result.Skipped++
			continue
		}

		m := &store.Memory{
			Text:               c.Text,
			MemoryType:         c.Classification.MemoryType,
			Tier:               defaultTier,
			Source:             "auto-capture",
			Embedding:          store.EncodeEmbedding(vec),
			EmbeddingModel:     p.embedder.Name(),
			EmbeddingDimension: p.embedder.Dimensions(),
		}
		if err := p.store.InsertMemory(m); err != nil {
			return result, err
		}

		result.Captured = append(result.Captured, m.ID)
		pool = append(pool, vectorstore.Candidate{ID: m.ID, Embedding: vec})
	}

	return result, nil
}
