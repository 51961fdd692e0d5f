package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/quantmind-br/folio/internal/domain"
)

// Instrumented counts hits and misses of an underlying cache
type Instrumented struct {
	domain.Cache
	hits   atomic.Int64
	misses atomic.Int64
}

// NewInstrumented wraps c
func NewInstrumented(c domain.Cache) *Instrumented {
	return &Instrumented{Cache: c}
}

// Get retrieves a value and records whether it was found
func (i *Instrumented) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := i.Cache.Get(ctx, key)
	switch {
	case err == nil:
		i.hits.Add(1)
	case errors.Is(err, domain.ErrCacheMiss):
		i.misses.Add(1)
	}
	return data, err
}

// Set stores a value
func (i *Instrumented) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return i.Cache.Set(ctx, key, value, ttl)
}

// Hits returns the number of successful lookups
func (i *Instrumented) Hits() int {
	return int(i.hits.Load())
}

// Misses returns the number of lookups that found nothing
func (i *Instrumented) Misses() int {
	return int(i.misses.Load())
}
