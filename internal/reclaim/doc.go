// Package reclaim provides lock-free safe-memory-reclamation for a single
// atomically-published pointer shared between many readers and one writer
// at a time.
//
// Two protocols are provided:
//
//   - Protector (SCP): per-goroutine striped reference counters. The
//     caller swaps the shared pointer itself and then calls Drain to wait
//     until every counter has been observed at zero.
//   - Guardian[T] (HSG): a self-contained double-buffered snapshot holder
//     with per-goroutine hazard slots. Publish swaps the live snapshot and
//     waits for hazards on the retired one to clear before destroying it.
//
// Both protocols rely on the total order of sequentially consistent atomic
// operations, not on pairwise acquire/release edges between specific
// memory locations. Weakening any of the orderings documented on
// Protector.Acquire, Protector's counter decrement, Guardian.Lease's
// hazard store, or Guardian.Publish's version flip breaks correctness.
package reclaim
