package cache

import (
	"log/slog"
)

// Cache is the injected cache contract for resolved configuration and
// spelling classifications. Both are pure and deterministic to compute,
// so concurrent first-computes for the same key are safe to race.
type Cache interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte, ttl int64) error

	Delete(key string) error
	DeleteAll(prefix string) error
}

// GetOrCompute returns the cached value for key, computing and storing
// it on a miss. A nil cache always computes. Store failures are logged
// and the computed value is still returned.
func GetOrCompute(c Cache, key string, ttl int64, compute func() ([]byte, error)) ([]byte, error) {
	if c == nil {
		return compute()
	}

	val, err := c.Get(key)
	if err == nil && val != nil {
		return val, nil
	}

	val, err = compute()
	if err != nil {
		return nil, err
	}

	if err := c.Set(key, val, ttl); err != nil {
		slog.Warn("cache write failed",
			"err", err.Error(),
			"key", key,
		)
	}

	return val, nil
}
