// Package scorer computes the composite retrieval score that blends
// lexical/vector similarity with recency and usage frequency, the way
// other_examples/173ecf72_dan-solli-gognee__pkg-search-decay.go.go
// blends a base score with an exponential-half-life time decay and a
// logarithmic access-frequency heat multiplier.
package scorer

import (
	"math"
	"time"
)

// Weights holds the three blend coefficients. They need not sum to 1;
// callers normalize or not as they see fit (spec.md §4.2 leaves them
// as raw multipliers).
type Weights struct {
	Similarity float64
	Recency    float64
	Frequency  float64
}

// halfLifeDays maps memory_type to its recency half-life, in days.
var halfLifeDays = map[string]float64{
	"procedural": 180,
	"factual":    90,
	"project":    45,
	"episodic":   10,
}

// HalfLife returns the configured half-life for a memory_type,
// defaulting to the episodic (shortest) half-life for unknown types.
func HalfLife(memoryType string) float64 {
	if h, ok := halfLifeDays[memoryType]; ok {
		return h
	}
	return halfLifeDays["episodic"]
}

// Input is everything the composite score needs about one memory.
type Input struct {
	Similarity     float64 // s ∈ [0, 1], from the hybrid searcher
	MemoryType     string
	Tier           string
	Pinned         bool
	UseCount       int
	CreatedAt      time.Time
	LastAccessedAt *time.Time
	Now            time.Time
	// AllowArchive lets the allocator opt a candidate back into normal
	// scoring when it has budgeted room for ARCHIVE-tier results;
	// otherwise ARCHIVE memories never surface.
	AllowArchive bool
}

// Components is the per-term breakdown, useful for the explain tool
// and for the testable properties in spec.md §8.
type Components struct {
	Similarity float64
	Recency    float64
	Frequency  float64
}

func (c Components) Total() float64 {
	return c.Similarity + c.Recency + c.Frequency
}

// Score computes the composite score and its component breakdown.
// Returns a zero Components and ok=false when the candidate is an
// ARCHIVE memory and the allocator hasn't opted archive candidates
// back in. Pinned grants its own allocation bucket; it does not exempt
// an ARCHIVE-tier memory from the archive gate.
func Score(in Input, w Weights) (Components, bool) {
	if in.Tier == "ARCHIVE" && !in.AllowArchive {
		return Components{}, false
	}

	recencyBase := recencyBase(in)
	freq := frequencyFactor(in.UseCount)

	return Components{
		Similarity: w.Similarity * clamp01(in.Similarity),
		Recency:    w.Recency * recencyBase,
		Frequency:  w.Frequency * freq,
	}, true
}

func recencyBase(in Input) float64 {
	if in.Pinned {
		return applyTierMultiplier(1.0, in.Tier)
	}

	reference := in.CreatedAt
	if in.LastAccessedAt != nil && in.LastAccessedAt.After(reference) {
		reference = *in.LastAccessedAt
	}

	ageDays := in.Now.Sub(reference).Hours() / 24.0
	if ageDays < 0 {
		ageDays = 0
	}

	h := HalfLife(in.MemoryType)
	r := math.Exp(-ageDays / h)
	return applyTierMultiplier(r, in.Tier)
}

func applyTierMultiplier(r float64, tier string) float64 {
	if tier == "COLD" {
		return r * 0.5
	}
	return r
}

// frequencyFactor implements log(1+use_count)/log(101), clamped to
// [0, 1] (use_count beyond 100 saturates at 1).
func frequencyFactor(useCount int) float64 {
	if useCount < 0 {
		useCount = 0
	}
	f := math.Log(1+float64(useCount)) / math.Log(101)
	return clamp01(f)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
