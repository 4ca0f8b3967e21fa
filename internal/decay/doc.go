// Package decay implements the sweep that demotes memories whose
// freshness window has expired: HOT to WARM, WARM to COLD, COLD to
// ARCHIVE, driven by per-type TTL configuration and cascading within a
// single run so a memory demoted once is re-checked at its new tier.
package decay
