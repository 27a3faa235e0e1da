// Package snapshotstore durably persists published order-book snapshots
// so a restart can recover the last known book without a full WAL replay.
//
// It is deliberately downstream of internal/reclaim, not a participant in
// it: the writer calls Persist with whatever *orderbook.BookSnapshot it
// just handed to a reclaim.Guardian to publish, on its own goroutine,
// after the publish has already made the snapshot visible to readers.
package snapshotstore
