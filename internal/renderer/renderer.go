package renderer

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/quantmind-br/folio/internal/cache"
	"github.com/quantmind-br/folio/internal/converter"
	"github.com/quantmind-br/folio/internal/domain"
	"github.com/quantmind-br/folio/internal/utils"
)

// Format is a renderer that knows its own registry name
type Format interface {
	domain.Renderer
	// Name returns the format name
	Name() string
	// Description returns a one line summary for help output
	Description() string
}

// Dependencies contains shared dependencies for all renderers
type Dependencies struct {
	Logger *utils.Logger
	// Cache stores page fragments between builds; nil disables caching
	Cache    domain.Cache
	CacheTTL time.Duration
	// Progress receives the rendering progress bar; nil disables it
	Progress io.Writer
}

// NewDependencies fills unset dependencies with no-op defaults
func NewDependencies(deps Dependencies) *Dependencies {
	if deps.Logger == nil {
		deps.Logger = utils.NewNopLogger()
	}
	if deps.CacheTTL <= 0 {
		deps.CacheTTL = 7 * 24 * time.Hour
	}
	return &deps
}

// renderFragments converts every page of the book, in parallel, and
// attaches the fragments. Either all pages get a fragment or an error is
// returned.
func (d *Dependencies) renderFragments(ctx context.Context, format string, book *Book) error {
	logger := d.Logger.WithFormat(format)
	digest := book.RoutesDigest()
	pipeline := converter.NewPipeline(converter.PipelineOptions{
		Router:           book.Route,
		RemoveNavigation: true,
	})

	bar := utils.NewProgressBarTo(d.Progress, len(book.Pages), utils.DescRendering)
	defer func() { _ = bar.Finish() }()

	start := time.Now()
	frags, errs := utils.ParallelMap(ctx, book.Pages, book.Config.Workers,
		func(ctx context.Context, page *Page) (*domain.Fragment, error) {
			defer func() { _ = bar.Add(1) }()
			return d.fragment(ctx, format, digest, pipeline, page)
		})
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := utils.FirstError(errs); err != nil {
		return err
	}

	for i, page := range book.Pages {
		page.Fragment = frags[i]
	}

	logger.Debug().
		Int("pages", len(book.Pages)).
		Dur("duration", time.Since(start)).
		Msg("Rendered page fragments")
	return nil
}

func (d *Dependencies) fragment(ctx context.Context, format, digest string, pipeline *converter.Pipeline, page *Page) (*domain.Fragment, error) {
	rel := page.Source.RelativePath

	var key string
	if d.Cache != nil {
		key = cache.RenderKey(format, rel, page.Source.Raw, digest)
		if entry, ok := d.cached(ctx, key); ok {
			d.Logger.Debug().Str("path", rel).Dur("ttl", entry.TTL()).Msg("Cache hit")
			frag := entry.Fragment
			return &frag, nil
		}
	}

	frag, err := pipeline.Convert(ctx, page.Source)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, domain.NewRenderError(rel, err)
	}

	if d.Cache != nil {
		d.store(ctx, key, format, rel, frag)
	}
	return frag, nil
}

// cached looks up a fragment. Any cache failure counts as a miss.
func (d *Dependencies) cached(ctx context.Context, key string) (*cache.Entry, bool) {
	data, err := d.Cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			d.Logger.Debug().Err(err).Msg("Cache lookup failed")
		}
		return nil, false
	}

	entry, err := cache.UnmarshalEntry(data)
	if err != nil || entry.IsExpired() {
		// drop undecodable or stale entries so the next store starts clean
		if delErr := d.Cache.Delete(ctx, key); delErr != nil {
			d.Logger.Debug().Err(delErr).Msg("Cache delete failed")
		}
		return nil, false
	}
	return entry, true
}

func (d *Dependencies) store(ctx context.Context, key, format, rel string, frag *domain.Fragment) {
	data, err := cache.NewEntry(rel, format, *frag, d.CacheTTL).Marshal()
	if err == nil {
		err = d.Cache.Set(ctx, key, data, d.CacheTTL)
	}
	if err != nil {
		d.Logger.Debug().Err(err).Str("path", rel).Msg("Cache store failed")
	}
}

// addFile adds a file to the tree, reporting collisions against the
// source file that produced it
func addFile(tree *domain.OutputTree, source, rel string, data []byte) error {
	if err := tree.Add(rel, data); err != nil {
		return domain.NewRenderError(source, err)
	}
	return nil
}

// addGenerated adds a generated file unless a source file already
// produced the same path
func addGenerated(tree *domain.OutputTree, rel string, data []byte) error {
	if _, exists := tree.Get(rel); exists {
		return nil
	}
	return addFile(tree, rel, rel, data)
}

// copyAssets adds every asset verbatim
func copyAssets(tree *domain.OutputTree, book *Book) error {
	for _, asset := range book.Assets {
		if err := addFile(tree, asset.RelativePath, asset.RelativePath, asset.Raw); err != nil {
			return err
		}
	}
	return nil
}
