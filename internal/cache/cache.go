// Package cache provides the key-value TTL store backing sessions. Keys that
// expired or were deleted behave identically to keys that never existed.
package cache

import (
	"context"
	"time"
)

type Store interface {
	// Get returns the value for key, and whether the key is live.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores key with a fixed ttl. The ttl is never refreshed by Get.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Del removes key. Deleting an absent key is not an error.
	Del(ctx context.Context, key string) error

	Ping(ctx context.Context) error

	Close() error
}
