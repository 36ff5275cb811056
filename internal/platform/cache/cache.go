// Package cache is the shared read-through cache for upstream report
// payloads. Entries are JSON blobs keyed by report kind, unit and day
// bucket, so a cached number can never bleed across midnight into the
// next reporting day
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	perr "opstats/internal/platform/errors"
)

// Miss reports that a key is absent. It is the only "not an error"
// error this package returns; everything else is a real cache fault
var Miss = errors.New("cache: miss")

// Store is the minimal gateway the services depend on
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}

// DefaultTTL bounds staleness of hot report entries
const DefaultTTL = 60 * time.Second

// Key builds the canonical entry key. bucket is the day the numbers
// belong to, not the day they were fetched
func Key(kind string, unit int64, bucket string) string {
	return fmt.Sprintf("opstats:%s:%d:%s", kind, unit, bucket)
}

// GetJSON reads and decodes one entry. Returns Miss untouched so
// callers can branch on it
func GetJSON[T any](ctx context.Context, s Store, key string) (T, error) {
	var out T
	raw, err := s.Get(ctx, key)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		// a corrupt entry behaves like an absent one
		return out, Miss
	}
	return out, nil
}

// SetJSON encodes and stores one entry
func SetJSON[T any](ctx context.Context, s Store, key string, val T, ttl time.Duration) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return perr.JSONErrf("cache encode %q: %v", key, err)
	}
	return s.Set(ctx, key, raw, ttl)
}

// GetOrFetch reads key and falls back to fetch on a miss, writing the
// fresh value through. Cache faults never fail the request: a broken
// cache degrades to a slower fetch, and a failed write-through is
// dropped because the value is already in hand
func GetOrFetch[T any](
	ctx context.Context,
	s Store,
	key string,
	ttl time.Duration,
	fetch func(context.Context) (T, error),
) (T, error) {
	cached, err := GetJSON[T](ctx, s, key)
	if err == nil {
		return cached, nil
	}

	fresh, err := fetch(ctx)
	if err != nil {
		return fresh, err
	}
	_ = SetJSON(ctx, s, key, fresh, ttl)
	return fresh, nil
}
