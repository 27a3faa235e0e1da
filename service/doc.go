// Package service orchestrates the core components of the matching
// engine — the order book, WAL durability, sequencing, and the
// internal/reclaim-guarded published snapshot — behind a transport-
// agnostic API consumed by api/grpcserver.
package service
