// Package allocator turns a scored candidate pool into the final,
// tier-budgeted injection set: it filters ineligible candidates,
// scores survivors, partitions them into pinned/hot/warm/cold/archive
// buckets, and takes a proportional slice of each bucket before
// re-truncating to the overall item budget.
package allocator
