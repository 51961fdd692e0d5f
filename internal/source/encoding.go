package source

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ToUTF8 normalizes text content to UTF-8. Valid UTF-8 is returned as-is
// minus a leading byte order mark; anything else is decoded using the
// encoding detected for contentType ("text/html" enables meta prescanning).
func ToUTF8(content []byte, contentType string) ([]byte, error) {
	content = bytes.TrimPrefix(content, utf8BOM)
	if utf8.Valid(content) {
		return content, nil
	}

	enc, name, _ := charset.DetermineEncoding(content, contentType)
	out, _, err := transform.Bytes(enc.NewDecoder(), content)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return out, nil
}

// EncodingName returns the canonical name of the detected encoding
func EncodingName(content []byte, contentType string) string {
	if utf8.Valid(bytes.TrimPrefix(content, utf8BOM)) {
		return "utf-8"
	}
	enc, name, _ := charset.DetermineEncoding(content, contentType)
	if canonical, err := htmlindex.Name(enc); err == nil {
		return canonical
	}
	return name
}
