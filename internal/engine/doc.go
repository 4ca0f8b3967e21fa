// Package engine wires the store, embedding provider, vector backend,
// and the capture/recall/decay/promotion pipelines into the single
// embeddable API a host is expected to call: Capture, Recall,
// RunDecay, RunPromotion, and the tool-style operations (Store,
// Search, Forget, Restore, Pin, Unpin, SetContext, ClearContext,
// Explain) that mirror the per-memory state machine.
package engine
