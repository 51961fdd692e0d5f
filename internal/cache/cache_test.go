package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/quantmind-br/folio/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemCache(t *testing.T) *BadgerCache {
	t.Helper()
	c, err := NewBadgerCache(Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// TestEntry_IsExpired tests entry expiration
func TestEntry_IsExpired(t *testing.T) {
	tests := []struct {
		name     string
		entry    *Entry
		expected bool
	}{
		{
			name:     "not expired",
			entry:    &Entry{ExpiresAt: time.Now().Add(1 * time.Hour)},
			expected: false,
		},
		{
			name:     "expired",
			entry:    &Entry{ExpiresAt: time.Now().Add(-1 * time.Hour)},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.entry.IsExpired())
		})
	}
}

// TestEntry_TTL tests remaining time-to-live
func TestEntry_TTL(t *testing.T) {
	e := &Entry{ExpiresAt: time.Now().Add(1 * time.Hour)}
	assert.InDelta(t, time.Hour.Seconds(), e.TTL().Seconds(), 60)

	e = &Entry{ExpiresAt: time.Now().Add(-1 * time.Hour)}
	assert.Equal(t, time.Duration(0), e.TTL())
}

func TestEntry_MarshalRoundTrip(t *testing.T) {
	in := NewEntry("chapter1/intro.md", "site", domain.Fragment{
		HTML:      `<h1 id="intro">Intro</h1>`,
		Title:     "Intro",
		Headings:  []domain.Heading{{Level: 1, ID: "intro", Text: "Intro"}},
		WordCount: 1,
	}, time.Hour)
	assert.False(t, in.IsExpired())

	data, err := in.Marshal()
	require.NoError(t, err)

	out, err := UnmarshalEntry(data)
	require.NoError(t, err)
	assert.Equal(t, in.Path, out.Path)
	assert.Equal(t, in.Fragment, out.Fragment)

	_, err = UnmarshalEntry([]byte("{not json"))
	assert.Error(t, err)
}

// TestDefaultOptions tests default cache options
func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Empty(t, opts.Directory)
	assert.False(t, opts.InMemory)
	assert.False(t, opts.Logger)
}

func TestGenerateKey(t *testing.T) {
	a := GenerateKey([]byte("ab"), []byte("c"))
	b := GenerateKey([]byte("a"), []byte("bc"))
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 64)
	assert.Equal(t, a, GenerateKey([]byte("ab"), []byte("c")))
}

func TestRenderKey(t *testing.T) {
	routes := RoutesDigest([]string{"chapter1/intro.md=chapter1/intro.html"})
	base := RenderKey("site", "chapter1/intro.md", []byte("# Intro"), routes)

	assert.True(t, strings.HasPrefix(base, PrefixRender+":"))
	assert.Equal(t, base, RenderKey("site", "chapter1/./intro.md", []byte("# Intro"), routes))
	assert.NotEqual(t, base, RenderKey("json", "chapter1/intro.md", []byte("# Intro"), routes))
	assert.NotEqual(t, base, RenderKey("site", "chapter2/intro.md", []byte("# Intro"), routes))
	assert.NotEqual(t, base, RenderKey("site", "chapter1/intro.md", []byte("# Intro!"), routes))
	assert.NotEqual(t, base, RenderKey("site", "chapter1/intro.md", []byte("# Intro"), RoutesDigest(nil)))
}

func TestRoutesDigest(t *testing.T) {
	a := RoutesDigest([]string{"a.md=a.html", "b.md=b.html"})
	assert.Equal(t, a, RoutesDigest([]string{"a.md=a.html", "b.md=b.html"}))
	assert.NotEqual(t, a, RoutesDigest([]string{"a.md=a.html", "b.md=b/index.html"}))
}

// TestNewBadgerCache tests creating cache
func TestNewBadgerCache(t *testing.T) {
	t.Run("creates in-memory cache", func(t *testing.T) {
		cache, err := NewBadgerCache(Options{InMemory: true})
		require.NoError(t, err)
		assert.NotNil(t, cache)
		assert.NoError(t, cache.Close())
	})

	t.Run("creates file-based cache with temp directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "cache")
		cache, err := NewBadgerCache(Options{Directory: dir})
		require.NoError(t, err)
		assert.NoError(t, cache.Close())

		_, err = os.Stat(dir)
		assert.NoError(t, err)
	})

	t.Run("creates file-based cache in default location", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)

		cache, err := NewBadgerCache(Options{})
		require.NoError(t, err)
		assert.NoError(t, cache.Close())

		_, err = os.Stat(filepath.Join(home, ".folio", "cache"))
		assert.NoError(t, err)
	})
}

// TestBadgerCache_GetSet tests storing and retrieving values
func TestBadgerCache_GetSet(t *testing.T) {
	ctx := context.Background()

	t.Run("missing key is a cache miss", func(t *testing.T) {
		cache := newMemCache(t)
		value, err := cache.Get(ctx, RenderKey("site", "nope.md", nil, ""))
		assert.True(t, errors.Is(err, domain.ErrCacheMiss))
		assert.Nil(t, value)
	})

	t.Run("retrieves stored value", func(t *testing.T) {
		cache := newMemCache(t)
		key := RenderKey("site", "a.md", []byte("# A"), "")

		require.NoError(t, cache.Set(ctx, key, []byte("<h1>A</h1>"), time.Hour))
		got, err := cache.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, []byte("<h1>A</h1>"), got)
	})

	t.Run("stores value without TTL", func(t *testing.T) {
		cache := newMemCache(t)
		require.NoError(t, cache.Set(ctx, "k", []byte("v"), 0))
		_, err := cache.Get(ctx, "k")
		assert.NoError(t, err)
	})

	t.Run("overwrites existing value", func(t *testing.T) {
		cache := newMemCache(t)
		require.NoError(t, cache.Set(ctx, "k", []byte("original"), time.Hour))
		require.NoError(t, cache.Set(ctx, "k", []byte("updated"), time.Hour))

		got, err := cache.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("updated"), got)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cache := newMemCache(t)
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		assert.ErrorIs(t, cache.Set(cctx, "k", []byte("v"), time.Hour), context.Canceled)
		_, err := cache.Get(cctx, "k")
		assert.ErrorIs(t, err, context.Canceled)
		_, err = cache.Get(ctx, "k")
		assert.ErrorIs(t, err, domain.ErrCacheMiss)
	})
}

// TestBadgerCache_Delete tests deleting keys
func TestBadgerCache_Delete(t *testing.T) {
	ctx := context.Background()
	cache := newMemCache(t)

	require.NoError(t, cache.Set(ctx, "k", []byte("content"), time.Hour))
	require.NoError(t, cache.Delete(ctx, "k"))
	_, err := cache.Get(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	// deleting a missing key is not an error
	assert.NoError(t, cache.Delete(ctx, "missing"))
}

// TestBadgerCache_ClearAndSize tests clearing all entries
func TestBadgerCache_ClearAndSize(t *testing.T) {
	ctx := context.Background()
	cache := newMemCache(t)

	assert.Equal(t, int64(0), cache.Size())
	for i := 0; i < 3; i++ {
		require.NoError(t, cache.Set(ctx, fmt.Sprintf("k%d", i), []byte("v"), time.Hour))
	}
	assert.Equal(t, int64(3), cache.Size())

	stats := cache.Stats()
	assert.Equal(t, int64(3), stats["entries"])
	assert.Contains(t, stats, "lsm_size")
	assert.Contains(t, stats, "vlog_size")

	require.NoError(t, cache.Clear())
	assert.Equal(t, int64(0), cache.Size())
}

// TestBadgerCache_Persistence tests that entries survive a reopen
func TestBadgerCache_Persistence(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	cache, err := NewBadgerCache(Options{Directory: dir})
	require.NoError(t, err)
	require.NoError(t, cache.Set(ctx, "k", []byte("kept"), time.Hour))
	require.NoError(t, cache.Close())

	cache, err = NewBadgerCache(Options{Directory: dir})
	require.NoError(t, err)
	defer cache.Close()

	got, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("kept"), got)
}

// TestBadgerCache_ConcurrentAccess tests concurrent access safety
func TestBadgerCache_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	cache := newMemCache(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = cache.Set(ctx, fmt.Sprintf("page-%d", i), []byte("content"), time.Hour)
		}(i)
		go func(i int) {
			defer wg.Done()
			_, _ = cache.Get(ctx, fmt.Sprintf("page-%d", i))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(50), cache.Size())
}

func TestInstrumented_CountsHitsAndMisses(t *testing.T) {
	ctx := context.Background()
	c := NewInstrumented(newMemCache(t))

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Hour))
	_, err = c.Get(ctx, "k")
	require.NoError(t, err)
	_, err = c.Get(ctx, "k")
	require.NoError(t, err)

	assert.Equal(t, 2, c.Hits())
	assert.Equal(t, 1, c.Misses())
}
