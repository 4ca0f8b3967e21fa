package engine

import (
	"context"
	"strings"
	"time"

	"github.com/MycelicMemory/mycelicmemory/internal/allocator"
	"github.com/MycelicMemory/mycelicmemory/internal/capture"
	"github.com/MycelicMemory/mycelicmemory/internal/recall"
	"github.com/MycelicMemory/mycelicmemory/internal/session"
	"github.com/MycelicMemory/mycelicmemory/internal/store"
)

// Capture runs the auto-capture pipeline over one agent turn's output,
// gated by the calling session's category profile and the embedding
// rate limiter.
func (e *Engine) Capture(ctx context.Context, turnOutput string, turnSucceeded bool, sessCtx session.Context) (capture.Result, error) {
	category := session.ResolveCategory(sessCtx.SessionType)
	profile := session.Defaults(category, e.cfg.Sessions)

	if !profile.AutoCapture {
		return capture.Result{}, nil
	}
	if limit := e.limiter.Allow(string(category)); !limit.Allowed {
		log.Warn("auto-capture skipped by rate limiter", "session_type", category, "retry_after", limit.RetryAfter)
		return capture.Result{}, nil
	}

	defaultTier := strings.ToUpper(profile.DefaultTier)
	result, err := e.capturePipeline.Run(ctx, turnOutput, turnSucceeded, defaultTier)
	if err != nil {
		return result, err
	}

	for _, id := range result.Captured {
		e.mirrorToNativeIndex(ctx, id)
	}
	return result, nil
}

// mirrorToNativeIndex pushes a freshly captured memory's embedding
// into the native vector backend when one is active. The cosine-scan
// fallback treats this as a no-op, so it is always safe to call.
func (e *Engine) mirrorToNativeIndex(ctx context.Context, id string) {
	m, err := e.store.GetMemory(id)
	if err != nil {
		log.Warn("could not load captured memory for vector index", "id", id, "error", err)
		return
	}
	if len(m.Embedding) == 0 {
		return
	}
	if err := e.vectors.Index(ctx, id, store.DecodeEmbedding(m.Embedding)); err != nil {
		log.Warn("native vector index update failed", "id", id, "error", err)
	}
}

// Recall runs the auto-recall pipeline for one agent turn's prompt,
// gated by the calling session's category profile, the global
// auto-recall switch, and the embedding rate limiter.
func (e *Engine) Recall(ctx context.Context, prompt string, sessCtx session.Context) (recall.Result, error) {
	category := session.ResolveCategory(sessCtx.SessionType)
	profile := session.Defaults(category, e.cfg.Sessions)
	resolved := e.cfg.AutoRecall.Resolve(e.cfg.Injection)

	enabled := profile.AutoInject && resolved.Enabled
	if enabled {
		if limit := e.limiter.Allow(string(category)); !limit.Allowed {
			log.Warn("auto-recall skipped by rate limiter", "session_type", category, "retry_after", limit.RetryAfter)
			enabled = false
		}
	}

	var minScore *float64
	if resolved.MinScore > 0 {
		minScore = &resolved.MinScore
	}

	params := recall.Params{
		Enabled:  enabled,
		MaxItems: resolved.MaxItems,
		MinScore: minScore,
		Budgets: allocator.Budgets{
			Pinned:  resolved.Budgets.Pinned,
			Hot:     resolved.Budgets.Hot,
			Warm:    resolved.Budgets.Warm,
			Cold:    resolved.Budgets.Cold,
			Archive: resolved.Budgets.Archive,
		},
		ScoreWeights: e.scoreWeights(),
		SessionKey:   sessCtx.SessionKey,
		Now:          time.Now().UTC(),
	}

	return e.recallPipeline.Run(ctx, prompt, params)
}
