package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/dgraph-io/ristretto/v2"
)

// CachedProvider decorates a Provider with an in-process cache keyed on
// the normalized input text and the wrapped provider's identity, so a
// cache built for one model/dimension never serves another's vectors.
type CachedProvider struct {
	inner Provider
	cache *ristretto.Cache[string, []float32]
}

// NewCachedProvider wraps p with a bounded LRU-ish cache sized for
// roughly maxEntries embeddings.
func NewCachedProvider(p Provider, maxEntries int) (Provider, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, []float32]{
		NumCounters: int64(maxEntries) * 10,
		MaxCost:     int64(maxEntries),
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &CachedProvider{inner: p, cache: cache}, nil
}

func (c *CachedProvider) cacheKey(text string) string {
	normalized := strings.Join(strings.Fields(text), " ")
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s\x00%d\x00%s", c.inner.Name(), c.inner.Dimensions(), normalized)))
	return hex.EncodeToString(sum[:])
}

// Embed returns the cached vector when present, otherwise delegates to
// the wrapped provider and caches the result.
func (c *CachedProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	key := c.cacheKey(text)
	if v, ok := c.cache.Get(key); ok {
		return v, nil
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, vec, 1)
	c.cache.Wait()
	return vec, nil
}

func (c *CachedProvider) Dimensions() int { return c.inner.Dimensions() }
func (c *CachedProvider) Name() string    { return c.inner.Name() }
