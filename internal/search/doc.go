// Package search implements the hybrid searcher: it blends lexical
// (FTS5/BM25) and dense-vector similarity into one ranked candidate
// list, retaining the per-candidate component scores so the scorer
// and the explain tool can see how a result was produced.
package search
