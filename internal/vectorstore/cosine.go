package vectorstore

import (
	"context"
	"sort"
)

// CosineScanStore is the mandatory fallback backend: it holds no index
// of its own and scores every supplied candidate directly, in process.
// Fine for the memory counts this engine is sized for (single agent,
// tens of thousands of memories); never hits the network or a native
// extension.
type CosineScanStore struct{}

// NewCosineScanStore builds the in-process fallback backend.
func NewCosineScanStore() *CosineScanStore { return &CosineScanStore{} }

func (s *CosineScanStore) Index(ctx context.Context, id string, embedding []float32) error {
	return nil
}

func (s *CosineScanStore) Remove(ctx context.Context, id string) error {
	return nil
}

func (s *CosineScanStore) Search(ctx context.Context, query []float32, candidates []Candidate, limit int) ([]Result, error) {
	results := make([]Result, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, Result{ID: c.ID, Score: CosineSimilarity(query, c.Embedding)})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *CosineScanStore) Name() string { return "cosine-scan" }
