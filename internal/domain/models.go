package domain

import (
	"path"
	"sort"
	"strings"
	"time"
)

// ContentType classifies a source file
type ContentType string

const (
	// ContentMarkdown is a markdown page (.md, .markdown)
	ContentMarkdown ContentType = "markdown"
	// ContentHTML is an HTML page (.html, .htm)
	ContentHTML ContentType = "html"
	// ContentSemilit is a code file carrying semi-literate doc blocks
	ContentSemilit ContentType = "semilit"
	// ContentAsset is copied to the output tree verbatim
	ContentAsset ContentType = "asset"
)

// IsPage returns true for content types that render to a page
func (c ContentType) IsPage() bool {
	return c == ContentMarkdown || c == ContentHTML || c == ContentSemilit
}

// StatusDraft marks a page excluded from builds by default
const StatusDraft = "draft"

// Meta holds the YAML head block of a page
type Meta struct {
	Title     string   `yaml:"title" json:"title,omitempty"`
	Author    string   `yaml:"author" json:"author,omitempty"`
	Summary   string   `yaml:"summary" json:"summary,omitempty"`
	Published string   `yaml:"published" json:"published,omitempty"`
	Updated   string   `yaml:"updated" json:"updated,omitempty"`
	Status    string   `yaml:"status" json:"status,omitempty"`
	Tags      []string `yaml:"tags" json:"tags,omitempty"`
}

// IsDraft reports whether the page is marked as a draft
func (m Meta) IsDraft() bool {
	return strings.EqualFold(strings.TrimSpace(m.Status), StatusDraft)
}

// Entry is one source file of the manifest
type Entry struct {
	// RelativePath is slash separated and relative to the source directory
	RelativePath string
	// Raw is the file content, UTF-8 normalized for text entries
	Raw         []byte
	ContentType ContentType
	Meta        Meta
	// Body is the page markup with any head block removed.
	// For semilit entries it is the generated markdown.
	Body     string
	Language string
}

// Dir returns the slash separated directory of the entry
func (e *Entry) Dir() string {
	dir := path.Dir(e.RelativePath)
	if dir == "." {
		return ""
	}
	return dir
}

// IsReadme reports whether the entry is a directory README
func (e *Entry) IsReadme() bool {
	base := strings.ToLower(path.Base(e.RelativePath))
	return e.ContentType == ContentMarkdown && (base == "readme.md" || base == "readme.markdown")
}

// Manifest is the ordered list of source files for one build
type Manifest struct {
	Root    string
	Entries []Entry
}

// Len returns the number of entries
func (m *Manifest) Len() int {
	return len(m.Entries)
}

// Paths returns the relative paths in manifest order
func (m *Manifest) Paths() []string {
	paths := make([]string, len(m.Entries))
	for i := range m.Entries {
		paths[i] = m.Entries[i].RelativePath
	}
	return paths
}

// Pages returns the entries that render to pages, in manifest order
func (m *Manifest) Pages() []*Entry {
	pages := make([]*Entry, 0, len(m.Entries))
	for i := range m.Entries {
		if m.Entries[i].ContentType.IsPage() {
			pages = append(pages, &m.Entries[i])
		}
	}
	return pages
}

// Lookup finds an entry by relative path
func (m *Manifest) Lookup(rel string) (*Entry, bool) {
	for i := range m.Entries {
		if m.Entries[i].RelativePath == rel {
			return &m.Entries[i], true
		}
	}
	return nil, false
}

// OutputTree maps relative output paths to rendered bytes
type OutputTree struct {
	files map[string][]byte
}

// NewOutputTree creates an empty output tree
func NewOutputTree() *OutputTree {
	return &OutputTree{files: make(map[string][]byte)}
}

// Add stores a file. The path must be relative, clean and unique.
func (t *OutputTree) Add(rel string, data []byte) error {
	clean, err := CleanRelative(rel)
	if err != nil {
		return err
	}
	if _, exists := t.files[clean]; exists {
		return &WriteError{Path: clean, Err: ErrDuplicatePath}
	}
	t.files[clean] = data
	return nil
}

// Get returns the bytes stored for a path
func (t *OutputTree) Get(rel string) ([]byte, bool) {
	data, ok := t.files[rel]
	return data, ok
}

// Len returns the number of files
func (t *OutputTree) Len() int {
	return len(t.files)
}

// Size returns the total number of bytes
func (t *OutputTree) Size() int64 {
	var size int64
	for _, data := range t.files {
		size += int64(len(data))
	}
	return size
}

// Paths returns all paths in lexicographic order
func (t *OutputTree) Paths() []string {
	paths := make([]string, 0, len(t.files))
	for p := range t.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// CleanRelative validates a slash separated relative path and returns it cleaned
func CleanRelative(rel string) (string, error) {
	if rel == "" || strings.HasPrefix(rel, "/") || strings.Contains(rel, "\\") {
		return "", &WriteError{Path: rel, Err: ErrPathEscapes}
	}
	clean := path.Clean(rel)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", &WriteError{Path: rel, Err: ErrPathEscapes}
	}
	return clean, nil
}

// Heading is a section heading of a rendered page
type Heading struct {
	Level int    `json:"level"`
	ID    string `json:"id,omitempty"`
	Text  string `json:"text"`
}

// Fragment is the rendered body of one page, before any theme is applied
type Fragment struct {
	HTML      string    `json:"html"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary,omitempty"`
	Headings  []Heading `json:"headings,omitempty"`
	WordCount int       `json:"word_count"`
}

// BuildResult describes a finished build
type BuildResult struct {
	Config    BuildConfig
	Files     int
	Bytes     int64
	Pages     int
	CacheHits int
	Duration  time.Duration
	// Stages holds the time spent reading, rendering and writing
	Stages map[string]time.Duration
}
