package embedding

import (
	"context"
	"fmt"

	"github.com/MycelicMemory/mycelicmemory/pkg/config"
)

// Provider is the external embedding collaborator (spec §1 "the
// embedding model (pluggable, exposes only embed(text) -> vector,
// dimensions, name)"). The engine never depends on a specific
// provider; it only calls through this interface.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
	Name() string
}

// Resolve builds the configured Provider, wrapped in an embedding
// cache when cfg.CacheSize > 0.
func Resolve(cfg config.EmbeddingConfig) (Provider, error) {
	var p Provider

	switch cfg.Provider {
	case "ollama", "":
		p = NewOllamaProvider(cfg)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}

	if cfg.CacheSize > 0 {
		cached, err := NewCachedProvider(p, cfg.CacheSize)
		if err != nil {
			// A cache that fails to construct should not prevent the
			// engine from starting; fall back to the uncached provider.
			log.Warn("embedding cache disabled", "error", err)
			return p, nil
		}
		return cached, nil
	}
	return p, nil
}
