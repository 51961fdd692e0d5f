package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/quantmind-br/folio/internal/domain"
	"github.com/quantmind-br/folio/internal/utils"
)

// IgnoreNames are skipped wherever they appear in the source tree
var IgnoreNames = map[string]bool{
	"node_modules": true,
	"_book":        true,
	"CNAME":        true,
}

// MarkdownExtensions are rendered as markdown pages
var MarkdownExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
}

// HTMLExtensions are rendered as HTML pages
var HTMLExtensions = map[string]bool{
	".html": true,
	".htm":  true,
}

// Reader walks a source directory and produces its manifest
type Reader struct {
	logger        *utils.Logger
	exclude       []string
	includeDrafts bool
	workers       int
	progress      io.Writer
}

// ReaderOptions contains options for creating a Reader
type ReaderOptions struct {
	Logger *utils.Logger
	// Exclude lists absolute paths skipped during the walk, typically the
	// output directory when it lies inside the source tree
	Exclude       []string
	IncludeDrafts bool
	Workers       int
	// Progress receives a progress bar while files load; nil disables it
	Progress io.Writer
}

// NewReader creates a new source reader
func NewReader(opts ReaderOptions) *Reader {
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	workers := opts.Workers
	if workers < 1 {
		workers = domain.DefaultWorkers
	}
	exclude := make([]string, 0, len(opts.Exclude))
	for _, p := range opts.Exclude {
		exclude = append(exclude, filepath.Clean(p))
	}
	return &Reader{
		logger:        logger.WithComponent("reader"),
		exclude:       exclude,
		includeDrafts: opts.IncludeDrafts,
		workers:       workers,
		progress:      opts.Progress,
	}
}

// Read walks sourceDir and returns its entries in lexicographic path order
func (r *Reader) Read(ctx context.Context, sourceDir string) (*domain.Manifest, error) {
	root, err := filepath.Abs(sourceDir)
	if err != nil {
		return nil, domain.NewConfigError("source", "cannot resolve source directory", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &domain.NotFoundError{Path: root}
		}
		if errors.Is(err, fs.ErrPermission) {
			return nil, &domain.PermissionError{Path: root, Err: err}
		}
		return nil, fmt.Errorf("stat source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, domain.NewConfigError("source", root+" is not a directory", nil)
	}

	paths, err := r.walk(ctx, root)
	if err != nil {
		return nil, err
	}

	bar := utils.NewProgressBarTo(r.progress, len(paths), utils.DescReading)
	entries, errs := utils.ParallelMap(ctx, paths, r.workers, func(ctx context.Context, rel string) (domain.Entry, error) {
		defer func() { _ = bar.Add(1) }()
		return r.load(root, rel)
	})
	_ = bar.Finish()
	if err := utils.FirstError(errs); err != nil {
		return nil, err
	}

	manifest := &domain.Manifest{Root: root, Entries: make([]domain.Entry, 0, len(entries))}
	drafts := 0
	for _, e := range entries {
		if e.Meta.IsDraft() && !r.includeDrafts {
			drafts++
			r.logger.Debug().Str("path", e.RelativePath).Msg("Skipping draft")
			continue
		}
		manifest.Entries = append(manifest.Entries, e)
	}

	r.logger.Debug().
		Int("entries", manifest.Len()).
		Int("drafts_skipped", drafts).
		Str("root", root).
		Msg("Source tree read")

	return manifest, nil
}

// walk collects slash separated relative paths of regular files, sorted
func (r *Reader) walk(ctx context.Context, root string) ([]string, error) {
	var paths []string

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrPermission) {
				return &domain.PermissionError{Path: relOrSelf(root, p), Err: err}
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p == root {
			return nil
		}

		if r.skip(p, d) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		// symlinks are not followed
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		paths = append(paths, relOrSelf(root, p))
		return nil
	})
	if err != nil {
		return nil, err
	}

	// WalkDir orders per directory; "a.md" must still precede "a/b.md"
	sort.Strings(paths)
	return paths, nil
}

func (r *Reader) skip(p string, d fs.DirEntry) bool {
	name := d.Name()
	if utils.IsHidden(name) || IgnoreNames[name] {
		return true
	}
	for _, ex := range r.exclude {
		if p == ex {
			return true
		}
	}
	return false
}

// load reads and classifies one file
func (r *Reader) load(root, rel string) (domain.Entry, error) {
	raw, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return domain.Entry{}, &domain.PermissionError{Path: rel, Err: err}
		}
		return domain.Entry{}, fmt.Errorf("read %s: %w", rel, err)
	}

	entry := domain.Entry{RelativePath: rel, Raw: raw, ContentType: domain.ContentAsset}
	ext := strings.ToLower(filepath.Ext(rel))

	switch {
	case MarkdownExtensions[ext]:
		return r.loadMarkdown(entry)
	case HTMLExtensions[ext]:
		return r.loadHTML(entry)
	}

	if lang, ok := LanguageFor(rel); ok {
		return r.loadSemilit(entry, lang)
	}
	return entry, nil
}

func (r *Reader) loadMarkdown(entry domain.Entry) (domain.Entry, error) {
	text, err := r.decode(entry, "text/plain")
	if err != nil {
		return entry, err
	}
	entry.Raw = text
	entry.ContentType = domain.ContentMarkdown

	head, body, ok := splitFrontMatter(string(text))
	entry.Body = body
	if !ok {
		return entry, nil
	}

	meta, _, err := parseMeta(head)
	if err != nil {
		return entry, domain.NewConfigError(entry.RelativePath, "malformed front matter", err)
	}
	entry.Meta = meta
	return entry, nil
}

func (r *Reader) loadHTML(entry domain.Entry) (domain.Entry, error) {
	text, err := r.decode(entry, "text/html")
	if err != nil {
		return entry, err
	}
	entry.Raw = text
	entry.ContentType = domain.ContentHTML
	entry.Body = string(text)
	return entry, nil
}

// loadSemilit keeps code files without doc blocks as plain assets
func (r *Reader) loadSemilit(entry domain.Entry, lang Language) (domain.Entry, error) {
	text, err := r.decode(entry, "text/plain")
	if err != nil {
		return entry, err
	}
	if !IsSemilit(string(text), lang) {
		return entry, nil
	}

	var headErr error
	parsed := ParseSemilit(string(text), lang, func(block string) bool {
		_, isMeta, err := parseMeta(block)
		if isMeta && err != nil {
			headErr = err
		}
		// a first block that is not YAML is plain documentation
		return isMeta && err == nil
	})
	if headErr != nil {
		return entry, domain.NewConfigError(entry.RelativePath, "malformed head block", headErr)
	}

	entry.Raw = text
	entry.ContentType = domain.ContentSemilit
	entry.Language = lang.Name
	entry.Body = parsed.Body
	if parsed.Head != "" {
		entry.Meta, _, _ = parseMeta(parsed.Head)
	}
	return entry, nil
}

// decode normalizes entry.Raw to UTF-8, noting transcoded files
func (r *Reader) decode(entry domain.Entry, contentType string) ([]byte, error) {
	text, err := ToUTF8(entry.Raw, contentType)
	if err != nil {
		return nil, &domain.RenderError{Path: entry.RelativePath, Err: err}
	}
	if !utf8.Valid(entry.Raw) {
		r.logger.WithPath(entry.RelativePath).Debug().
			Str("encoding", EncodingName(entry.Raw, contentType)).
			Msg("Transcoded to UTF-8")
	}
	return text, nil
}

func relOrSelf(root, p string) string {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return p
	}
	return filepath.ToSlash(rel)
}
