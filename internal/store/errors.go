package store

import "fmt"

// MemoryNotFoundError is returned when a memory id has no matching row.
type MemoryNotFoundError struct {
	ID string
}

func (e *MemoryNotFoundError) Error() string {
	return fmt.Sprintf("memory not found: %s", e.ID)
}

// InvalidMemoryIDError describes a malformed or empty id. No function in
// this module returns it; lookups of an unknown or empty id return
// *MemoryNotFoundError.
type InvalidMemoryIDError struct {
	ID string
}

func (e *InvalidMemoryIDError) Error() string {
	return fmt.Sprintf("invalid memory id: %q", e.ID)
}

// SimilarMemoryExistsError describes a capture candidate rejected as a
// near-duplicate of an existing memory. The capture pipeline does not
// return it: a near-duplicate candidate is skipped and the run goes on.
type SimilarMemoryExistsError struct {
	ExistingID string
	Similarity float64
}

func (e *SimilarMemoryExistsError) Error() string {
	return fmt.Sprintf("similar memory already exists: %s (cosine=%.4f)", e.ExistingID, e.Similarity)
}

// AlreadyForgottenError is returned when forget is called on a memory
// whose do_not_inject flag is already set.
type AlreadyForgottenError struct {
	ID string
}

func (e *AlreadyForgottenError) Error() string {
	return fmt.Sprintf("memory already forgotten: %s", e.ID)
}

// AlreadyPinnedError is returned when pin is called on an already-pinned memory.
type AlreadyPinnedError struct {
	ID string
}

func (e *AlreadyPinnedError) Error() string {
	return fmt.Sprintf("memory already pinned: %s", e.ID)
}

// NotPinnedError is returned when unpin is called on a memory that isn't pinned.
type NotPinnedError struct {
	ID string
}

func (e *NotPinnedError) Error() string {
	return fmt.Sprintf("memory not pinned: %s", e.ID)
}

// NotForgottenError is returned when restore is called on a memory
// that is not currently flagged do_not_inject.
type NotForgottenError struct {
	ID string
}

func (e *NotForgottenError) Error() string {
	return fmt.Sprintf("memory not forgotten: %s", e.ID)
}

// EmptyQueryError is returned by the engine's Search tool when the query
// is blank. Recall does not return it.
type EmptyQueryError struct{}

func (e *EmptyQueryError) Error() string { return "query text is empty" }

// EmptyMemoryTextError is returned when storing a memory with blank text.
type EmptyMemoryTextError struct{}

func (e *EmptyMemoryTextError) Error() string { return "memory text is empty" }

// DatabaseLockedError is surfaced after the retry policy in §5 is
// exhausted. It is marked Retryable so hosts can distinguish it from
// other failure classes even though the Store itself already retried.
type DatabaseLockedError struct {
	Attempts int
	Cause    error
}

func (e *DatabaseLockedError) Error() string {
	return fmt.Sprintf("database locked after %d attempts: %v", e.Attempts, e.Cause)
}

// Retryable reports that this error class is, in principle, retryable
// by a caller that wants to try again later.
func (e *DatabaseLockedError) Retryable() bool { return true }

func (e *DatabaseLockedError) Unwrap() error { return e.Cause }

// EmbeddingProviderUnavailableError describes a configured embedding
// provider that cannot be reached. No function in this module
// constructs it; capture and recall return the error from Embed to
// their caller as it is.
type EmbeddingProviderUnavailableError struct {
	Provider string
	Cause    error
}

func (e *EmbeddingProviderUnavailableError) Error() string {
	return fmt.Sprintf("embedding provider %q unavailable: %v", e.Provider, e.Cause)
}

func (e *EmbeddingProviderUnavailableError) Unwrap() error { return e.Cause }

// NoEmbeddingProviderError describes an engine configured without any
// usable embedding provider. engine.Open does not return it; an
// unusable provider setting fails there with the error from
// embedding.Resolve.
type NoEmbeddingProviderError struct{}

func (e *NoEmbeddingProviderError) Error() string { return "no embedding provider configured" }

// SchemaMismatchError describes a database whose schema version differs
// from SchemaVersion. No function in this module returns it;
// RunMigrations reports a newer on-disk version as a plain error.
type SchemaMismatchError struct {
	Expected int
	Found    int
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch: expected version %d, found %d", e.Expected, e.Found)
}

// VectorDimensionMismatchError describes an existing stored vector that
// does not match the active embedding dimension. Open does not compare
// stored vectors with the active dimension, and no function in this
// module returns this type.
type VectorDimensionMismatchError struct {
	Expected int
	Found    int
}

func (e *VectorDimensionMismatchError) Error() string {
	return fmt.Sprintf("vector dimension mismatch: expected %d, found %d", e.Expected, e.Found)
}
