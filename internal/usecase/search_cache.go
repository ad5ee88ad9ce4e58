package usecase

import (
	"context"
	"time"
)

// SearchCache stores serialized search results. A nil SearchCache disables
// caching.
type SearchCache interface {
	Get(ctx context.Context, key string, out any) (bool, error)
	// Version reads the invalidation counter for pattern.
	Version(ctx context.Context, pattern string) (int64, error)
	// SetIfVersion stores value unless pattern was invalidated after version
	// was read, and reports whether it stored.
	SetIfVersion(ctx context.Context, key string, value any, ttl time.Duration, pattern string, version int64) (bool, error)
	// TryLock guards the rebuild of one key so concurrent misses do not all
	// hit the store.
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(), ok bool, err error)
	Invalidate(ctx context.Context, pattern string) (int, error)
}
