package ports

import (
	"context"
	"time"
)

// Backend defines the contract every storage technology must implement.
// Implementations must be safe for concurrent use.
type Backend interface {
	// Get returns the stored bytes and found=true, or found=false when the
	// key is missing or expired. A missing key is not an error.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set stores a value. ttl <= 0 means no expiration; backends without
	// expiry support ignore it.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error
	Contains(ctx context.Context, key string) (bool, error)

	// FlushAll removes every entry visible to this backend, including entries
	// written by other caches that share it.
	FlushAll(ctx context.Context) error

	Close() error
}

// KeyGenerator turns call arguments into a deterministic cache key.
type KeyGenerator interface {
	GenerateKey(params ...any) (string, error)
}

// Evaluator computes a scalar from a key expression and named bindings.
type Evaluator interface {
	Evaluate(expression string, bindings map[string]any) (any, error)
}

// ErrorReporter receives cache failures that did not fail the call, such as
// a write that failed after the wrapped method already returned.
type ErrorReporter interface {
	Report(ctx context.Context, site string, err error)
}

// ErrorReporterFunc adapts a function to ErrorReporter.
type ErrorReporterFunc func(ctx context.Context, site string, err error)

func (f ErrorReporterFunc) Report(ctx context.Context, site string, err error) {
	f(ctx, site, err)
}
