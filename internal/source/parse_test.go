package source

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitFrontMatter(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantHead string
		wantBody string
		wantOK   bool
	}{
		{
			name:     "front matter",
			content:  "---\ntitle: A\n---\n\nBody\n",
			wantHead: "title: A",
			wantBody: "Body\n",
			wantOK:   true,
		},
		{
			name:     "crlf",
			content:  "---\r\ntitle: A\r\n---\r\nBody",
			wantHead: "title: A\r",
			wantBody: "Body",
			wantOK:   true,
		},
		{
			name:     "no front matter",
			content:  "# Title\n",
			wantBody: "# Title\n",
		},
		{
			name:     "unclosed",
			content:  "---\ntitle: A\n",
			wantBody: "---\ntitle: A\n",
		},
		{
			name:     "horizontal rule is not a delimiter",
			content:  "----\ntext",
			wantBody: "----\ntext",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			head, body, ok := splitFrontMatter(tt.content)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantHead, head)
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestParseMeta(t *testing.T) {
	meta, isMeta, err := parseMeta("title: T\nstatus: draft\npublished: 2014-04-17\n")
	require.NoError(t, err)
	assert.True(t, isMeta)
	assert.Equal(t, "T", meta.Title)
	assert.True(t, meta.IsDraft())
	assert.Equal(t, "2014-04-17", meta.Published)

	_, isMeta, err = parseMeta("Just a paragraph of prose.")
	assert.NoError(t, err)
	assert.False(t, isMeta)

	_, isMeta, err = parseMeta("tags: {a: b}")
	assert.Error(t, err)
	assert.True(t, isMeta)
}

func TestParseSemilit_Python(t *testing.T) {
	src := strings.Join([]string{
		"#!/usr/bin/env python",
		"# -*- coding: utf-8 -*-",
		`"""<`,
		"title: Tic tac toe",
		"status: project",
		`>"""`,
		"",
		`"""<`,
		"    Intro",
		"    =====",
		`>"""`,
		"",
		"def main():",
		"    pass",
		"",
		`"""<`,
		"The end.",
		`>"""`,
		"",
	}, "\n")

	lang := Languages[".py"]
	got := ParseSemilit(src, lang, func(block string) bool {
		_, ok, err := parseMeta(block)
		return ok && err == nil
	})

	assert.Contains(t, got.Head, "title: Tic tac toe")
	assert.Equal(t, strings.Join([]string{
		"Intro",
		"=====",
		"",
		"```python",
		"#!/usr/bin/env python",
		"# -*- coding: utf-8 -*-",
		"def main():",
		"    pass",
		"```",
		"",
		"The end.",
		"",
	}, "\n"), got.Body)
}

func TestParseSemilit_ProseFirstBlockAndTrailingCode(t *testing.T) {
	src := "/*<\nNot metadata, just words.\n>*/\nconsole.log(1);\n"

	got := ParseSemilit(src, Languages[".js"], func(block string) bool {
		_, ok, err := parseMeta(block)
		return ok && err == nil
	})

	assert.Empty(t, got.Head)
	assert.Equal(t, "Not metadata, just words.\n\n```javascript\nconsole.log(1);\n```\n", got.Body)
}

func TestParseSemilit_UnterminatedDoc(t *testing.T) {
	got := ParseSemilit("{-<\ntitle: H\n>-}\nmain = pure ()\n{-<\ndangling", Languages[".hs"], func(string) bool { return true })

	assert.Equal(t, "\ntitle: H\n", got.Head)
	assert.Equal(t, "```haskell\nmain = pure ()\n```\n\ndangling\n", got.Body)
}

func TestLanguageFor(t *testing.T) {
	lang, ok := LanguageFor("cmd/Main.GO")
	require.True(t, ok)
	assert.Equal(t, "go", lang.Name)

	_, ok = LanguageFor("style.css")
	assert.False(t, ok)
}

func TestToUTF8(t *testing.T) {
	out, err := ToUTF8([]byte("\xEF\xBB\xBFhello"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(out))

	out, err = ToUTF8([]byte("<meta charset=\"iso-8859-1\"><p>na\xefve</p>"), "text/html")
	require.NoError(t, err)
	assert.Equal(t, "<meta charset=\"iso-8859-1\"><p>naïve</p>", string(out))

	assert.Equal(t, "utf-8", EncodingName([]byte("plain ascii"), "text/plain"))
	assert.Equal(t, "windows-1252", EncodingName([]byte("caf\xe9"), "text/plain"))
}
