package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"path"
)

// KeyPrefix constants for different cache types
const (
	PrefixRender = "render"
)

// keySchema is bumped whenever the cached fragment layout changes
const keySchema = "v2"

// GenerateKey hashes its parts into a hex SHA-256 digest. Parts are
// separated by a NUL byte so ("ab", "c") and ("a", "bc") differ.
func GenerateKey(parts ...[]byte) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// GenerateKeyWithPrefix generates a cache key with a prefix
func GenerateKeyWithPrefix(prefix string, parts ...[]byte) string {
	return prefix + ":" + GenerateKey(parts...)
}

// RenderKey identifies the rendering of one source file in one format.
// routes is a digest of the source to output mapping of the build, since
// rewritten links depend on it. Any change to the content or the routes
// yields a new key, so stale entries are never served.
func RenderKey(format, rel string, content []byte, routes string) string {
	return GenerateKeyWithPrefix(PrefixRender,
		[]byte(keySchema), []byte(format), []byte(path.Clean(rel)), []byte(routes), content)
}

// RoutesDigest hashes a sorted list of "source=output" pairs
func RoutesDigest(pairs []string) string {
	parts := make([][]byte, len(pairs))
	for i, p := range pairs {
		parts[i] = []byte(p)
	}
	return GenerateKey(parts...)
}
