// Package cache provides time-bounded memoization of fetch payloads keyed
// by target identifier.
package cache

import "context"

// Cache memoizes raw payloads. Get evaluates freshness at read time: an
// expired entry is reported absent, never returned stale.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Put(ctx context.Context, key string, payload []byte)
}
