package domain

import (
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode"
)

// Build defaults
const (
	DefaultOutputDir  = "./_book"
	DefaultFormat     = "site"
	DefaultGitHubHost = "https://github.com"
	DefaultPort       = 4000
	DefaultWorkers    = 5
)

// BuildConfig is the resolved configuration of one build invocation.
// Values are copied, never mutated, once Resolve has run.
type BuildConfig struct {
	SourceDir     string `json:"source_dir"`
	OutputDir     string `json:"output_dir"`
	Format        string `json:"format"`
	Title         string `json:"title"`
	Intro         string `json:"intro,omitempty"`
	RepoRef       string `json:"repo,omitempty"`
	// RepoDir is the slash separated location of SourceDir inside the
	// repository, "" when the source directory is the repository root
	RepoDir       string `json:"repo_dir,omitempty"`
	GitHubHost    string `json:"github_host,omitempty"`
	ThemePath     string `json:"theme,omitempty"`
	Port          int    `json:"port,omitempty"`
	IncludeDrafts bool   `json:"include_drafts,omitempty"`
	Workers       int    `json:"-"`
}

// Resolve returns a copy with inferred defaults filled in.
// Relative directories are made absolute against workDir.
func (c BuildConfig) Resolve(workDir string) (BuildConfig, error) {
	if strings.TrimSpace(c.SourceDir) == "" {
		return c, NewConfigError("source", "source directory is required", nil)
	}
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return c, NewConfigError("source", "cannot determine working directory", err)
		}
		workDir = wd
	}

	c.SourceDir = absolute(workDir, c.SourceDir)
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	c.OutputDir = absolute(workDir, c.OutputDir)
	if c.OutputDir == c.SourceDir {
		return c, NewConfigError("output", "output directory must differ from the source directory", nil)
	}
	if rel, err := filepath.Rel(c.OutputDir, c.SourceDir); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return c, NewConfigError("output", "output directory must not contain the source directory", nil)
	}

	if c.Format == "" {
		c.Format = DefaultFormat
	}
	if c.Title == "" {
		c.Title = TitleFromName(filepath.Base(c.SourceDir))
	}
	if c.GitHubHost == "" {
		c.GitHubHost = DefaultGitHubHost
	}
	c.GitHubHost = strings.TrimRight(c.GitHubHost, "/")
	c.RepoRef = strings.Trim(c.RepoRef, "/")
	c.RepoDir = strings.Trim(path.Clean("/"+filepath.ToSlash(c.RepoDir)), "/")
	if c.ThemePath != "" {
		c.ThemePath = absolute(workDir, c.ThemePath)
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Port < 0 || c.Port > 65535 {
		return c, NewConfigError("port", "port must be between 0 and 65535", nil)
	}
	if c.Workers < 1 {
		c.Workers = DefaultWorkers
	}
	return c, nil
}

// RepoURL returns the web URL of the repository, or "" when unknown
func (c BuildConfig) RepoURL() string {
	if c.RepoRef == "" {
		return ""
	}
	host := c.GitHubHost
	if host == "" {
		host = DefaultGitHubHost
	}
	return host + "/" + c.RepoRef
}

// EditURL returns the link to a source file in the repository
func (c BuildConfig) EditURL(rel string) string {
	repo := c.RepoURL()
	if repo == "" {
		return ""
	}
	return repo + "/blob/HEAD/" + path.Join(c.RepoDir, rel)
}

func absolute(workDir, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(workDir, p)
}

// TitleFromName turns a directory or file base name into a title.
// "my-first_book" becomes "My First Book".
func TitleFromName(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_' || unicode.IsSpace(r)
	})
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	if len(words) == 0 {
		return "Untitled"
	}
	return strings.Join(words, " ")
}
