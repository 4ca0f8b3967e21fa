package engine

import (
	"fmt"

	"github.com/MycelicMemory/mycelicmemory/internal/capture"
	"github.com/MycelicMemory/mycelicmemory/internal/embedding"
	"github.com/MycelicMemory/mycelicmemory/internal/logging"
	"github.com/MycelicMemory/mycelicmemory/internal/ratelimit"
	"github.com/MycelicMemory/mycelicmemory/internal/recall"
	"github.com/MycelicMemory/mycelicmemory/internal/scorer"
	"github.com/MycelicMemory/mycelicmemory/internal/search"
	"github.com/MycelicMemory/mycelicmemory/internal/store"
	"github.com/MycelicMemory/mycelicmemory/internal/vectorstore"
	"github.com/MycelicMemory/mycelicmemory/pkg/config"
)

var log = logging.GetLogger("engine")

// Engine is the embeddable memory lifecycle engine. A host constructs
// one per database, calls Recall at the start and Capture at the end of
// agent turns, runs RunDecay/RunPromotion on its own schedule, and uses the
// tool-style operations for direct, agent-driven memory management.
type Engine struct {
	cfg      *config.Config
	store    *store.Store
	embedder embedding.Provider
	vectors  vectorstore.Store
	limiter  *ratelimit.Limiter

	capturePipeline *capture.Pipeline
	recallPipeline  *recall.Pipeline
	searcher        *search.Searcher
	searchWeights   search.Weights
}

// Open builds an Engine from configuration: opens (and initializes)
// the SQLite store, resolves the embedding provider and vector
// backend, and wires the capture/recall pipelines over them.
func Open(cfg *config.Config) (*Engine, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	s, err := store.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := s.InitSchema(); err != nil {
		s.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	if err := s.RunMigrations(); err != nil {
		s.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	embedder, err := embedding.Resolve(cfg.Embedding)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("resolve embedding provider: %w", err)
	}

	vectors := vectorstore.Resolve(cfg.Vectorstore.PreferNative, cfg.Database.Path, cfg.Embedding.Dimensions)

	searchWeights := search.Weights{Vector: 0.7, Text: 0.3}

	e := &Engine{
		cfg:             cfg,
		store:           s,
		embedder:        embedder,
		vectors:         vectors,
		limiter:         ratelimit.NewLimiter(ratelimit.FromEngineConfig(cfg.RateLimit)),
		capturePipeline: capture.New(s, embedder, vectors, cfg.AutoCapture),
		recallPipeline:  recall.New(s, embedder, s, vectors, searchWeights, 64),
		searcher:        search.New(s, vectors, searchWeights),
		searchWeights:   searchWeights,
	}

	log.Info("engine opened", "database", cfg.Database.Path, "embedding_provider", embedder.Name(), "vector_backend", vectors.Name())
	return e, nil
}

// Close releases the underlying store connection.
func (e *Engine) Close() error {
	return e.store.Close()
}

func (e *Engine) scoreWeights() scorer.Weights {
	return scorer.Weights{
		Similarity: e.cfg.Scoring.Similarity,
		Recency:    e.cfg.Scoring.Recency,
		Frequency:  e.cfg.Scoring.Frequency,
	}
}
