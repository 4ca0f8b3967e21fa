// Package embedding defines the pluggable embedding-provider contract
// and its reference Ollama implementation, plus a caching decorator
// over embedding lookups. The rest of the engine only ever sees the
// Provider interface.
package embedding
