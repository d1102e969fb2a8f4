package cache

import (
	"context"
	"time"
)

// disabled backs runners built without a cache: every render is fresh.
type disabled struct{}

// NewNullCache returns a cache that stores nothing. Get always misses, so
// the runner renders on every call and reports no cache hits.
func NewNullCache() Cache { return disabled{} }

func (disabled) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (disabled) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (disabled) Delete(context.Context, string) error { return nil }
func (disabled) Close() error { return nil }

// Len always reports zero entries, matching [MemoryCache.Len].
func (disabled) Len() int { return 0 }
