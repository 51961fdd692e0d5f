package renderer

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/quantmind-br/folio/internal/domain"
)

//go:embed theme/page.html theme/style.css
var defaultTheme embed.FS

// Theme file names, both in the embedded default and in override directories
const (
	ThemePageFile  = "page.html"
	ThemeStyleFile = "style.css"
)

// Theme wraps page fragments into complete HTML documents
type Theme struct {
	page  *template.Template
	style []byte
}

// navLink is one entry of the sidebar or the prev/next footer
type navLink struct {
	Title  string
	URL    string
	Depth  int
	Active bool
}

// pageView is the data passed to page.html
type pageView struct {
	Title       string
	BookTitle   string
	Description string
	// Root is the prefix leading from the page to the site root
	Root    string
	Home    string
	Content template.HTML
	Nav     []navLink
	Prev    *navLink
	Next    *navLink
	EditURL string
	RepoURL string
}

// LoadTheme reads the default theme and applies overrides from dir.
// An empty dir selects the default theme.
func LoadTheme(dir string) (*Theme, error) {
	pageSrc, err := fs.ReadFile(defaultTheme, "theme/"+ThemePageFile)
	if err != nil {
		return nil, err
	}
	style, err := fs.ReadFile(defaultTheme, "theme/"+ThemeStyleFile)
	if err != nil {
		return nil, err
	}

	if dir != "" {
		if err := CheckThemeDir(dir); err != nil {
			return nil, err
		}
		if data, ok, err := readOverride(dir, ThemePageFile); err != nil {
			return nil, err
		} else if ok {
			pageSrc = data
		}
		if data, ok, err := readOverride(dir, ThemeStyleFile); err != nil {
			return nil, err
		} else if ok {
			style = data
		}
	}

	page, err := template.New(ThemePageFile).Parse(string(pageSrc))
	if err != nil {
		return nil, domain.NewConfigError("theme", "invalid page template", err)
	}
	return &Theme{page: page, style: style}, nil
}

// CheckThemeDir reports a ConfigError unless dir is empty or an existing
// directory
func CheckThemeDir(dir string) error {
	if dir == "" {
		return nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return domain.NewConfigError("theme", "theme directory not found: "+dir, err)
	}
	if !info.IsDir() {
		return domain.NewConfigError("theme", "theme path is not a directory: "+dir, nil)
	}
	return nil
}

func readOverride(dir, name string) ([]byte, bool, error) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, domain.NewConfigError("theme", "cannot read "+name, err)
	}
	return data, true, nil
}

// Style returns the stylesheet written to style.css
func (t *Theme) Style() []byte {
	return t.style
}

// RenderPage executes the page template
func (t *Theme) RenderPage(view *pageView) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.page.Execute(&buf, view); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
