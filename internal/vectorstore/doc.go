// Package vectorstore provides the pluggable dense-vector similarity
// backend used by the hybrid searcher. A native backend built on the
// sqlite-vec extension is preferred when available; every deployment
// can otherwise fall back to an in-process cosine scan over the
// embeddings already stored in the memories table, so vector search
// never hard-depends on an external service or a compiled extension.
package vectorstore
