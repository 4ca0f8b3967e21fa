package embedding

import (
	"context"
	"testing"

	"github.com/MycelicMemory/mycelicmemory/pkg/config"
)

type fakeProvider struct {
	calls int
	dims  int
}

func (f *fakeProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	v := make([]float32, f.dims)
	for i := range v {
		v[i] = float32(len(text))
	}
	return v, nil
}

func (f *fakeProvider) Dimensions() int { return f.dims }
func (f *fakeProvider) Name() string    { return "fake" }

func TestResolveOllama(t *testing.T) {
	p, err := Resolve(config.EmbeddingConfig{Provider: "ollama", Dimensions: 768})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p.Name() != "ollama:nomic-embed-text" {
		t.Errorf("unexpected provider name: %s", p.Name())
	}
}

func TestResolveUnknownProvider(t *testing.T) {
	_, err := Resolve(config.EmbeddingConfig{Provider: "bogus"})
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestCachedProviderHitsCache(t *testing.T) {
	inner := &fakeProvider{dims: 4}
	cached, err := NewCachedProvider(inner, 100)
	if err != nil {
		t.Fatalf("NewCachedProvider: %v", err)
	}

	ctx := context.Background()
	if _, err := cached.Embed(ctx, "hello world"); err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if _, err := cached.Embed(ctx, "hello world"); err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("expected inner provider called once, got %d", inner.calls)
	}

	if _, err := cached.Embed(ctx, "a different string"); err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("expected inner provider called twice, got %d", inner.calls)
	}
}
