// Package promotion implements the COLD→WARM promotion sweep: memories
// that have shown renewed use (access count and distinct access days
// past a threshold) are promoted back out of COLD. Promotion never
// reaches HOT, which is reserved for explicit placement.
package promotion
