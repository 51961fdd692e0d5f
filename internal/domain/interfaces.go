//go:generate mockgen -source=interfaces.go -destination=../mocks/domain.go -package=mocks

package domain

import (
	"context"
	"time"
)

// Renderer converts a manifest into a complete output tree for one format.
// Implementations return either a full tree or an error, never a partial tree.
type Renderer interface {
	Render(ctx context.Context, manifest *Manifest, cfg BuildConfig) (*OutputTree, error)
}

// RendererFunc adapts a function to the Renderer interface
type RendererFunc func(ctx context.Context, manifest *Manifest, cfg BuildConfig) (*OutputTree, error)

// Render calls f
func (f RendererFunc) Render(ctx context.Context, manifest *Manifest, cfg BuildConfig) (*OutputTree, error) {
	return f(ctx, manifest, cfg)
}

// SourceReader produces the manifest of a source directory
type SourceReader interface {
	Read(ctx context.Context, sourceDir string) (*Manifest, error)
}

// TreeWriter materializes an output tree on disk
type TreeWriter interface {
	Write(ctx context.Context, tree *OutputTree, outputDir string) error
}

// Cache defines the interface for the render cache
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores a value in cache with TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes a key from cache
	Delete(ctx context.Context, key string) error
	// Close releases cache resources
	Close() error
}
