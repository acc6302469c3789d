// Package arena provides a reference-counted slot arena for coordinate buffers.
//
// Buffers are addressed by a Ref carrying a slot index and a generation.
// Releasing the last owner frees the slot and bumps its generation, so stale
// references are detected instead of silently aliasing a reused slot.
//
// # Concurrency Model
//
// All operations are safe for concurrent use. A buffer returned by Get must
// be treated as read-only unless the caller holds the only ownership (see
// Detach).
package arena
