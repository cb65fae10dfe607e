package shared

import (
	"context"
	"time"
)

// IdempotencyStore deduplicates client retries of non-idempotent requests
// such as checkout. A key is first reserved, then completed with a result
// reference (e.g. the created order ID).
type IdempotencyStore interface {
	// Reserve claims the key for ttl.
	// Returns true if the key was newly claimed, false if it already exists.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Complete stores the result reference for a previously reserved key.
	Complete(ctx context.Context, key, result string, ttl time.Duration) error

	// Result returns the stored result reference.
	// found is false when the key is unknown; result is empty while the
	// original request is still in flight.
	Result(ctx context.Context, key string) (result string, found bool, err error)

	// Release removes a reservation so that the request can be retried.
	Release(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is how long a key is remembered. Default: 24 hours
	TTL time.Duration

	// Enabled determines whether idempotency checking is enabled
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
