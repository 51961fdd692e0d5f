package cache

import (
	"encoding/json"
	"time"

	"github.com/quantmind-br/folio/internal/domain"
)

// Ensure BadgerCache implements domain.Cache
var _ domain.Cache = (*BadgerCache)(nil)

// Entry is a rendered page fragment stored in the cache
type Entry struct {
	Path       string          `json:"path"`
	Format     string          `json:"format"`
	Fragment   domain.Fragment `json:"fragment"`
	RenderedAt time.Time       `json:"rendered_at"`
	ExpiresAt  time.Time       `json:"expires_at"`
}

// NewEntry wraps a fragment for storage with the given TTL
func NewEntry(path, format string, frag domain.Fragment, ttl time.Duration) *Entry {
	now := time.Now()
	return &Entry{
		Path:       path,
		Format:     format,
		Fragment:   frag,
		RenderedAt: now,
		ExpiresAt:  now.Add(ttl),
	}
}

// IsExpired returns true if the entry has expired
func (e *Entry) IsExpired() bool {
	return time.Now().After(e.ExpiresAt)
}

// TTL returns the remaining time-to-live
func (e *Entry) TTL() time.Duration {
	remaining := time.Until(e.ExpiresAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Marshal encodes the entry for storage
func (e *Entry) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// UnmarshalEntry decodes a stored entry
func UnmarshalEntry(data []byte) (*Entry, error) {
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Options contains cache configuration options
type Options struct {
	Directory string
	InMemory  bool
	Logger    bool
}

// DefaultOptions returns default cache options
func DefaultOptions() Options {
	return Options{
		Directory: "",
		InMemory:  false,
		Logger:    false,
	}
}
