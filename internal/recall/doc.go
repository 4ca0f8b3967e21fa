// Package recall implements the auto-recall pipeline: query
// extraction, hybrid search, allocation, and the XML injection
// envelope handed back to the host at the start of an agent turn.
package recall
