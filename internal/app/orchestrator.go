package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/quantmind-br/folio/internal/cache"
	"github.com/quantmind-br/folio/internal/config"
	"github.com/quantmind-br/folio/internal/domain"
	"github.com/quantmind-br/folio/internal/format"
	"github.com/quantmind-br/folio/internal/git"
	"github.com/quantmind-br/folio/internal/output"
	"github.com/quantmind-br/folio/internal/renderer"
	"github.com/quantmind-br/folio/internal/source"
	"github.com/quantmind-br/folio/internal/state"
	"github.com/quantmind-br/folio/internal/utils"
)

// Orchestrator coordinates the read, render and write stages of a build
type Orchestrator struct {
	config   *config.Config
	logger   *utils.Logger
	registry *format.Registry
	reader   domain.SourceReader
	writer   domain.TreeWriter
	git      git.Client
	onChange state.Listener
	progress io.Writer

	// deps is shared with the built-in renderers; nil with a custom registry
	deps      *renderer.Dependencies
	useCache  bool
	cacheOnce sync.Once
	cache     *cache.Instrumented
}

// OrchestratorOptions contains options for creating an orchestrator
type OrchestratorOptions struct {
	Config  *config.Config
	Verbose bool
	Quiet   bool
	// NoCache disables the render cache regardless of configuration
	NoCache bool
	// Logger overrides the logger built from Config.Logging
	Logger *utils.Logger
	// Registry overrides the built-in formats
	Registry *format.Registry
	// Reader overrides the per-build source reader
	Reader    domain.SourceReader
	Writer    domain.TreeWriter
	GitClient git.Client
	// OnStateChange observes every build phase transition
	OnStateChange state.Listener
	// Progress receives progress bars; nil disables them
	Progress io.Writer
}

// NewOrchestrator creates a new orchestrator with the given configuration
func NewOrchestrator(opts OrchestratorOptions) (*Orchestrator, error) {
	cfg := opts.Config

	// Validate config
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := opts.Logger
	if logger == nil {
		logLevel := "info"
		logFormat := "pretty"
		if cfg.Logging.Level != "" {
			logLevel = cfg.Logging.Level
		}
		if cfg.Logging.Format != "" {
			logFormat = cfg.Logging.Format
		}
		logger = utils.NewLogger(utils.LoggerOptions{
			Level:   logLevel,
			Format:  logFormat,
			Verbose: opts.Verbose,
			Quiet:   opts.Quiet,
		})
	}

	progress := opts.Progress
	if opts.Quiet {
		progress = nil
	}

	o := &Orchestrator{
		config:   cfg,
		logger:   logger,
		reader:   opts.Reader,
		git:      opts.GitClient,
		onChange: opts.OnStateChange,
		progress: progress,
	}

	o.registry = opts.Registry
	if o.registry == nil {
		o.deps = renderer.NewDependencies(renderer.Dependencies{
			Logger:   logger,
			CacheTTL: cfg.Cache.TTL,
			Progress: progress,
		})
		o.registry = DefaultRegistry(o.deps)
		o.useCache = cfg.Cache.Enabled && !opts.NoCache
	}

	o.writer = opts.Writer
	if o.writer == nil {
		o.writer = output.NewWriter(output.WriterOptions{
			Logger:   logger,
			Progress: progress,
			Workers:  cfg.Concurrency.Workers,
		})
	}
	if o.git == nil {
		o.git = git.NewClient()
	}

	return o, nil
}

// openCache opens the render cache. A cache that cannot be opened, for
// example because another build holds its lock, only disables caching.
func openCache(cfg *config.Config, logger *utils.Logger) *cache.Instrumented {
	dir := cfg.Cache.Directory
	if dir == "" {
		dir = config.CacheDir()
	}
	opts := cache.DefaultOptions()
	opts.Directory = utils.ExpandPath(dir)
	c, err := cache.NewBadgerCache(opts)
	if err != nil {
		logger.Warn().Err(err).Str("dir", dir).Msg("Render cache unavailable, building without it")
		return nil
	}
	return cache.NewInstrumented(c)
}

// attachCache opens the render cache on the first build that gets past
// configuration checks and hands it to the built-in renderers
func (o *Orchestrator) attachCache() {
	o.cacheOnce.Do(func() {
		if !o.useCache {
			return
		}
		o.cache = openCache(o.config, o.logger)
		// Leave the interface nil rather than holding a nil pointer
		if o.cache != nil {
			o.deps.Cache = o.cache
		}
	})
}

// Registry returns the format registry used by Build
func (o *Orchestrator) Registry() *format.Registry {
	return o.registry
}

// Build runs one build. Configuration errors are returned before any file
// is read. On failure or cancellation the output directory is left as it
// was before the call.
func (o *Orchestrator) Build(ctx context.Context, bc domain.BuildConfig) (*domain.BuildResult, error) {
	startTime := time.Now()
	machine := state.NewMachine(state.MachineOptions{Logger: o.logger, OnChange: o.observe})

	cfg, err := bc.Resolve("")
	if err != nil {
		_ = machine.Fail(err)
		return nil, err
	}
	desc, err := o.registry.Resolve(cfg.Format)
	if err != nil {
		_ = machine.Fail(err)
		return nil, err
	}
	cfg.Format = desc.Name
	if err := renderer.CheckThemeDir(cfg.ThemePath); err != nil {
		_ = machine.Fail(err)
		return nil, err
	}
	o.attachCache()
	if cfg.RepoRef == "" {
		o.inferRepo(&cfg)
	}

	logger := o.logger.WithFormat(cfg.Format)
	logger.Info().
		Str("source", cfg.SourceDir).
		Str("output", cfg.OutputDir).
		Int("workers", cfg.Workers).
		Msg("Starting build")

	fail := func(stage string, err error) (*domain.BuildResult, error) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
			logger.Warn().Str("stage", stage).Msg("Build cancelled")
		} else {
			err = fmt.Errorf("%s: %w", stage, err)
		}
		_ = machine.Fail(err)
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return fail("reading source", err)
	}

	// Reading
	_ = machine.Advance(state.Reading)
	manifest, err := o.readerFor(cfg).Read(ctx, cfg.SourceDir)
	if err != nil {
		return fail("reading source", err)
	}

	// Rendering
	_ = machine.Advance(state.Rendering)
	hitsBefore, missesBefore := o.cacheStats()
	tree, err := desc.Renderer.Render(ctx, manifest, cfg)
	if err == nil && tree == nil {
		err = errors.New("renderer returned no output")
	}
	if err != nil {
		return fail("rendering", err)
	}
	hits, misses := o.cacheStats()
	hits -= hitsBefore
	misses -= missesBefore

	// Writing
	_ = machine.Advance(state.Writing)
	if err := o.writer.Write(ctx, tree, cfg.OutputDir); err != nil {
		return fail("writing output", err)
	}
	_ = machine.Advance(state.Done)

	result := &domain.BuildResult{
		Config:    cfg,
		Files:     tree.Len(),
		Bytes:     tree.Size(),
		Pages:     len(manifest.Pages()),
		CacheHits: hits,
		Duration:  time.Since(startTime),
		Stages:    make(map[string]time.Duration),
	}
	for phase, d := range machine.Durations() {
		if phase != state.Idle {
			result.Stages[string(phase)] = d
		}
	}

	logger.Info().
		Int("files", result.Files).
		Int("pages", result.Pages).
		Int64("bytes", result.Bytes).
		Int("cache_hits", result.CacheHits).
		Int("cache_misses", misses).
		Dur("duration", result.Duration).
		Msg("Build completed")

	return result, nil
}

// observe logs finished stages and forwards transitions to the caller
func (o *Orchestrator) observe(t state.Transition) {
	if t.To != state.Failed && t.From != state.Idle {
		o.logger.Info().
			Str("stage", string(t.From)).
			Dur("duration", t.Elapsed).
			Msg("Stage completed")
	}
	if t.To == state.Failed {
		o.logger.Debug().Err(t.Err).Str("stage", string(t.From)).Msg("Build failed")
	}
	if o.onChange != nil {
		o.onChange(t)
	}
}

func (o *Orchestrator) readerFor(cfg domain.BuildConfig) domain.SourceReader {
	if o.reader != nil {
		return o.reader
	}
	return source.NewReader(source.ReaderOptions{
		Logger:        o.logger,
		Exclude:       []string{cfg.OutputDir},
		IncludeDrafts: cfg.IncludeDrafts,
		Workers:       cfg.Workers,
		Progress:      o.progress,
	})
}

// inferRepo fills the repository reference from the origin remote of the
// repository holding the source directory
func (o *Orchestrator) inferRepo(cfg *domain.BuildConfig) {
	info, err := git.Inspect(o.git, cfg.SourceDir)
	if err != nil {
		o.logger.Debug().Err(err).Msg("No repository information")
		return
	}
	if info.Ref == "" {
		return
	}
	cfg.RepoRef = info.Ref
	if info.Root != "" {
		cfg.RepoDir = repoDir(info.Root, cfg.SourceDir)
	}
	if cfg.GitHubHost == domain.DefaultGitHubHost && info.Host != "" {
		cfg.GitHubHost = info.Host
	}
	o.logger.Debug().
		Str("repo", cfg.RepoRef).
		Str("repo_dir", cfg.RepoDir).
		Str("branch", info.Branch).
		Msg("Detected repository")
}

// repoDir returns the slash separated path of dir below root, "" when dir
// is the root or lies outside it
func repoDir(root, dir string) string {
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		dir = resolved
	}
	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ""
	}
	return filepath.ToSlash(rel)
}

func (o *Orchestrator) cacheStats() (hits, misses int) {
	if o.cache == nil {
		return 0, 0
	}
	return o.cache.Hits(), o.cache.Misses()
}

// Close releases resources held by the orchestrator
func (o *Orchestrator) Close() error {
	if o.cache != nil {
		return o.cache.Close()
	}
	return nil
}
