// Package session resolves the coarse invocation category of an agent
// turn (main, cron, or spawned) and the per-call capture/recall
// defaults and decay profile that follow from it.
package session
