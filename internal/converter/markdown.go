package converter

import (
	"fmt"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/quantmind-br/folio/internal/domain"
	"gopkg.in/yaml.v3"
)

// Pre-compiled regex patterns for markdown stripping
var (
	linkRegex              = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	imageRegex             = regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`)
	boldAsterisksRegex     = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicAsterisksRegex   = regexp.MustCompile(`\*([^*]+)\*`)
	boldUnderscoresRegex   = regexp.MustCompile(`__([^_]+)__`)
	italicUnderscoresRegex = regexp.MustCompile(`_([^_]+)_`)
	headersRegex           = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	horizontalRuleRegex    = regexp.MustCompile(`(?m)^[\-*_]{3,}$`)
	blockquoteRegex        = regexp.MustCompile(`(?m)^>\s+`)
	unorderedListRegex     = regexp.MustCompile(`(?m)^[\s]*[\-*+]\s+`)
	orderedListRegex       = regexp.MustCompile(`(?m)^[\s]*\d+\.\s+`)
	fencedCodeBlockRegex   = regexp.MustCompile("(?s)```.*?```")
	indentedCodeBlockRegex = regexp.MustCompile(`(?m)^(    |\t).*$`)
)

// MarkdownConverter converts HTML to Markdown
type MarkdownConverter struct{}

// NewMarkdownConverter creates a new Markdown converter
func NewMarkdownConverter() *MarkdownConverter {
	return &MarkdownConverter{}
}

// Convert converts HTML to Markdown
func (c *MarkdownConverter) Convert(html string) (string, error) {
	markdown, err := md.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to Markdown: %w", err)
	}

	return cleanMarkdown(markdown), nil
}

// cleanMarkdown cleans up the converted markdown
func cleanMarkdown(markdown string) string {
	// Remove excessive blank lines (more than 2 consecutive)
	for strings.Contains(markdown, "\n\n\n\n") {
		markdown = strings.ReplaceAll(markdown, "\n\n\n\n", "\n\n\n")
	}

	return strings.TrimSpace(markdown)
}

// Frontmatter is the YAML head written in front of exported markdown
type Frontmatter struct {
	Title     string   `yaml:"title"`
	Summary   string   `yaml:"summary,omitempty"`
	Author    string   `yaml:"author,omitempty"`
	Published string   `yaml:"published,omitempty"`
	Updated   string   `yaml:"updated,omitempty"`
	Tags      []string `yaml:"tags,omitempty"`
	Source    string   `yaml:"source"`
}

// NewFrontmatter builds front matter for a source entry and its fragment
func NewFrontmatter(entry *domain.Entry, frag *domain.Fragment) Frontmatter {
	return Frontmatter{
		Title:     frag.Title,
		Summary:   frag.Summary,
		Author:    entry.Meta.Author,
		Published: entry.Meta.Published,
		Updated:   entry.Meta.Updated,
		Tags:      entry.Meta.Tags,
		Source:    entry.RelativePath,
	}
}

// GenerateFrontmatter renders front matter as a YAML block
func GenerateFrontmatter(fm Frontmatter) (string, error) {
	data, err := yaml.Marshal(fm)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("---\n%s---\n\n", string(data)), nil
}

// AddFrontmatter adds YAML frontmatter to markdown content
func AddFrontmatter(markdown string, fm Frontmatter) (string, error) {
	frontmatter, err := GenerateFrontmatter(fm)
	if err != nil {
		return "", err
	}

	return frontmatter + markdown, nil
}

// CountWords counts words in text
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// StripMarkdown removes markdown formatting to get plain text
func StripMarkdown(markdown string) string {
	// Remove code blocks
	markdown = removeCodeBlocks(markdown)

	// Remove images: ![alt](url) -> alt
	markdown = imageRegex.ReplaceAllString(markdown, "$1")

	// Remove links but keep text: [text](url) -> text
	markdown = linkRegex.ReplaceAllString(markdown, "$1")

	// Remove emphasis: **bold** -> bold, *italic* -> italic
	markdown = boldAsterisksRegex.ReplaceAllString(markdown, "$1")
	markdown = italicAsterisksRegex.ReplaceAllString(markdown, "$1")
	markdown = boldUnderscoresRegex.ReplaceAllString(markdown, "$1")
	markdown = italicUnderscoresRegex.ReplaceAllString(markdown, "$1")

	// Remove headers: # Header -> Header
	markdown = headersRegex.ReplaceAllString(markdown, "")

	// Remove horizontal rules
	markdown = horizontalRuleRegex.ReplaceAllString(markdown, "")

	// Remove blockquotes
	markdown = blockquoteRegex.ReplaceAllString(markdown, "")

	// Remove list markers
	markdown = unorderedListRegex.ReplaceAllString(markdown, "")
	markdown = orderedListRegex.ReplaceAllString(markdown, "")

	return strings.TrimSpace(markdown)
}

// removeCodeBlocks removes fenced and indented code blocks
func removeCodeBlocks(markdown string) string {
	markdown = fencedCodeBlockRegex.ReplaceAllString(markdown, "")
	return indentedCodeBlockRegex.ReplaceAllString(markdown, "")
}
