package engine

import (
	"context"
	"testing"
	"time"

	"github.com/MycelicMemory/mycelicmemory/internal/capture"
	"github.com/MycelicMemory/mycelicmemory/internal/ratelimit"
	"github.com/MycelicMemory/mycelicmemory/internal/recall"
	"github.com/MycelicMemory/mycelicmemory/internal/search"
	"github.com/MycelicMemory/mycelicmemory/internal/session"
	"github.com/MycelicMemory/mycelicmemory/internal/testutil"
	"github.com/MycelicMemory/mycelicmemory/internal/vectorstore"
	"github.com/MycelicMemory/mycelicmemory/pkg/config"
)

type fakeEmbedder struct{ dims int }

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, f.dims)
	for i, r := range text {
		vec[i%f.dims] += float32(r)
	}
	if f.dims > 0 {
		vec[0] += 1
	}
	return vec, nil
}
func (f *fakeEmbedder) Dimensions() int { return f.dims }
func (f *fakeEmbedder) Name() string    { return "fake" }

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	s := testutil.NewTestStore(t)
	cfg := config.DefaultConfig()
	cfg.AutoCapture.MinLength = 5
	cfg.AutoCapture.MaxLength = 500
	cfg.AutoCapture.MaxCaptures = 3

	embedder := &fakeEmbedder{dims: 8}
	vectors := vectorstore.NewCosineScanStore()
	searchWeights := search.Weights{Vector: 0.7, Text: 0.3}

	return &Engine{
		cfg:             cfg,
		store:           s,
		embedder:        embedder,
		vectors:         vectors,
		limiter:         ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		capturePipeline: capture.New(s, embedder, vectors, cfg.AutoCapture),
		recallPipeline:  recall.New(s, embedder, s, vectors, searchWeights, 8),
		searcher:        search.New(s, vectors, searchWeights),
		searchWeights:   searchWeights,
	}
}

func TestCaptureRespectsSessionProfile(t *testing.T) {
	e := newTestEngine(t)
	e.cfg.Sessions.Cron.AutoCapture = false

	result, err := e.Capture(context.Background(), "deploy the new pricing service to production tonight", true, session.Context{SessionType: "cron"})
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if len(result.Captured) != 0 {
		t.Errorf("expected no captures for cron session with auto_capture disabled, got %v", result.Captured)
	}
}

func TestCaptureStoresMemory(t *testing.T) {
	e := newTestEngine(t)

	result, err := e.Capture(context.Background(), "Run the deploy script with the staging flag before merging.", true, session.Context{SessionType: "main"})
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if len(result.Captured) == 0 {
		t.Fatalf("expected at least one captured memory")
	}

	m, err := e.store.GetMemory(result.Captured[0])
	if err != nil {
		t.Fatalf("GetMemory: %v", err)
	}
	if m.Tier != "HOT" {
		t.Errorf("expected default tier HOT, got %s", m.Tier)
	}
}

func TestStoreAndSearchRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	m, err := e.Store(ctx, "the staging database credentials rotate every friday", "factual", "HOT", false)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}

	results, err := e.Search(ctx, "staging database credentials", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	found := false
	for _, r := range results {
		if r.Memory.ID == m.ID {
			found = true
		}
	}
	if !found {
		t.Errorf("expected stored memory to appear in search results, got %+v", results)
	}
}

func TestForgetRestoreRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	m, err := e.Store(ctx, "quarterly planning notes for the infra team", "project", "HOT", false)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}

	if err := e.Forget(m.ID, false, "no longer relevant"); err != nil {
		t.Fatalf("Forget: %v", err)
	}
	if err := e.Forget(m.ID, false, "again"); err == nil {
		t.Errorf("expected AlreadyForgottenError on second forget")
	}

	if err := e.Restore(m.ID, "relevant again"); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if err := e.Restore(m.ID, "again"); err == nil {
		t.Errorf("expected NotForgottenError on second restore")
	}
}

func TestPinUnpinRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	m, err := e.Store(ctx, "the on-call rotation starts monday at nine", "factual", "HOT", false)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}

	if err := e.Pin(m.ID, "important"); err != nil {
		t.Fatalf("Pin: %v", err)
	}
	if err := e.Pin(m.ID, "again"); err == nil {
		t.Errorf("expected AlreadyPinnedError on second pin")
	}

	if err := e.Unpin(m.ID, "resolved"); err != nil {
		t.Fatalf("Unpin: %v", err)
	}
	if err := e.Unpin(m.ID, "again"); err == nil {
		t.Errorf("expected NotPinnedError on second unpin")
	}
}

func TestSetAndClearContext(t *testing.T) {
	e := newTestEngine(t)

	if err := e.SetContext("migrating the billing service", 0); err != nil {
		t.Fatalf("SetContext: %v", err)
	}

	cc, err := e.store.GetContext(time.Now().UTC())
	if err != nil {
		t.Fatalf("GetContext: %v", err)
	}
	if cc == nil || cc.Text != "migrating the billing service" {
		t.Fatalf("expected context to be set, got %+v", cc)
	}

	if err := e.ClearContext(); err != nil {
		t.Fatalf("ClearContext: %v", err)
	}
	cc, err = e.store.GetContext(time.Now().UTC())
	if err != nil {
		t.Fatalf("GetContext: %v", err)
	}
	if cc != nil {
		t.Errorf("expected context cleared, got %+v", cc)
	}
}

func TestExplainReturnsScoreAndAudit(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	m, err := e.Store(ctx, "the backup job runs at two in the morning", "factual", "HOT", false)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := e.Pin(m.ID, "keep"); err != nil {
		t.Fatalf("Pin: %v", err)
	}

	explain, err := e.Explain(m.ID)
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if explain.Score.Recency == 0 {
		t.Errorf("expected non-zero recency component for a pinned memory, got %+v", explain.Score)
	}
	if len(explain.Audit) == 0 {
		t.Errorf("expected at least one audit row after pinning")
	}
}

func TestRunDecayAndPromotionDoNotError(t *testing.T) {
	e := newTestEngine(t)

	if _, err := e.RunDecay(time.Now().UTC(), false); err != nil {
		t.Fatalf("RunDecay: %v", err)
	}
	if _, err := e.RunPromotion(); err != nil {
		t.Fatalf("RunPromotion: %v", err)
	}
}

func TestRecallReturnsEnvelopeForStoredMemory(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.Store(ctx, "the staging environment uses a separate redis instance", "factual", "HOT", false); err != nil {
		t.Fatalf("Store: %v", err)
	}

	result, err := e.Recall(ctx, "which redis instance does staging use", session.Context{SessionType: "main"})
	if err != nil {
		t.Fatalf("Recall: %v", err)
	}
	if len(result.SelectedIDs) == 0 {
		t.Errorf("expected recall to select the stored memory, got empty result %+v", result)
	}
}
