package source

import (
	"path"
	"strings"
)

// Language describes the doc block delimiters of a semi-literate code file
type Language struct {
	Name     string
	DocStart string
	DocEnd   string
}

// Languages maps file extensions to their semi-literate conventions
var Languages = map[string]Language{
	".py":   {Name: "python", DocStart: `"""<`, DocEnd: `>"""`},
	".js":   {Name: "javascript", DocStart: "/*<", DocEnd: ">*/"},
	".java": {Name: "java", DocStart: "/*<", DocEnd: ">*/"},
	".go":   {Name: "go", DocStart: "/*<", DocEnd: ">*/"},
	".hs":   {Name: "haskell", DocStart: "{-<", DocEnd: ">-}"},
}

// LanguageFor returns the semi-literate language of a path
func LanguageFor(rel string) (Language, bool) {
	lang, ok := Languages[strings.ToLower(path.Ext(rel))]
	return lang, ok
}

// Semilit is a code file split into its head block and markdown body
type Semilit struct {
	// Head is the first doc block, empty when it is not YAML metadata
	Head string
	Body string
}

// IsSemilit reports whether content carries at least one doc block
func IsSemilit(content string, lang Language) bool {
	return strings.Contains(content, lang.DocStart)
}

// ParseSemilit turns a semi-literate code file into markdown. Doc blocks
// are emitted as unindented markdown and the code between them as fenced
// blocks tagged with the language. Leading "#" lines (shebang, encoding
// header) are prepended to the first code block and whitespace-only code
// is dropped. isHead decides whether the first doc block is metadata.
func ParseSemilit(content string, lang Language, isHead func(block string) bool) Semilit {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	header, content := splitHashHeader(content)

	var (
		out       Semilit
		body      strings.Builder
		firstDoc  = true
		firstCode = true
	)

	emitCode := func(code string) {
		code = strings.Trim(code, "\n")
		if strings.TrimSpace(code) == "" {
			return
		}
		if firstCode {
			firstCode = false
			if header != "" {
				code = header + "\n" + code
			}
		}
		body.WriteString("\n\n```" + lang.Name + "\n" + code + "\n```\n\n")
	}

	emitDoc := func(doc string) {
		if firstDoc {
			firstDoc = false
			if isHead != nil && isHead(doc) {
				out.Head = doc
				return
			}
		}
		lines := strings.Split(doc, "\n")
		for i, line := range lines {
			lines[i] = strings.TrimLeft(line, " \t")
		}
		body.WriteString("\n\n" + strings.Trim(strings.Join(lines, "\n"), "\n") + "\n\n")
	}

	rest := content
	for rest != "" {
		start := strings.Index(rest, lang.DocStart)
		if start < 0 {
			emitCode(rest)
			break
		}
		emitCode(rest[:start])
		rest = rest[start+len(lang.DocStart):]

		end := strings.Index(rest, lang.DocEnd)
		if end < 0 {
			emitDoc(rest)
			break
		}
		emitDoc(rest[:end])
		rest = rest[end+len(lang.DocEnd):]
	}

	out.Body = strings.TrimSpace(collapseBlankLines(body.String())) + "\n"
	return out
}

// splitHashHeader separates the leading lines starting with '#'
func splitHashHeader(content string) (header, rest string) {
	lines := strings.Split(content, "\n")
	i := 0
	for i < len(lines) && strings.HasPrefix(lines[i], "#") {
		i++
	}
	return strings.Join(lines[:i], "\n"), strings.Join(lines[i:], "\n")
}

// collapseBlankLines squeezes runs of blank lines outside fenced code
func collapseBlankLines(s string) string {
	var b strings.Builder
	blank := 0
	inFence := false
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(line, "```") {
			inFence = !inFence
		}
		if !inFence && strings.TrimSpace(line) == "" {
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
