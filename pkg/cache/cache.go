// Package cache stores rendered artifacts in memory, keyed by a hash of
// their inputs.
//
// Plans are small and metrics are cheap to recompute, but Graphviz layout
// and rsvg-convert are not. The pipeline caches render output under a key
// derived from the input document and the render options, so the HTTP
// server answers repeated requests for the same plan without re-rendering.
// Nothing is written to disk.
package cache

import (
	"context"
	"time"
)

// TTLArtifact is how long rendered artifacts stay cached.
const TTLArtifact = 10 * time.Minute

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the data stored under key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key for ttl. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key.
	Delete(ctx context.Context, key string) error
	// Close releases the cache.
	Close() error
}
