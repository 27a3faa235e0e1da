// Package memory provides object pooling for hot-path domain values.
// Safe reclamation of the published book snapshot lives in
// internal/reclaim, not here; this package only recycles the mutable
// Order values the matching engine allocates and frees on every fill.
package memory
