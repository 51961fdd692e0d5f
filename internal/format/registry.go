// Package format maps output format names to renderers.
package format

import (
	"iter"
	"slices"
	"strings"
	"sync"

	"github.com/quantmind-br/folio/internal/domain"
)

// Descriptor describes a registered output format
type Descriptor struct {
	Name        string
	Description string
	Renderer    domain.Renderer
}

// Registry is a concurrency-safe mapping from format name to Descriptor.
// Names are case-insensitive.
type Registry struct {
	mu      sync.RWMutex
	formats map[string]Descriptor
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{formats: make(map[string]Descriptor)}
}

// Register adds a format. Registering an existing name replaces it.
func (r *Registry) Register(name string, desc Descriptor) {
	key := normalize(name)
	desc.Name = key

	r.mu.Lock()
	defer r.mu.Unlock()
	r.formats[key] = desc
}

// Resolve looks up a format by name
func (r *Registry) Resolve(name string) (Descriptor, error) {
	key := normalize(name)

	r.mu.RLock()
	desc, ok := r.formats[key]
	r.mu.RUnlock()

	if !ok || desc.Renderer == nil {
		return Descriptor{}, &domain.UnknownFormatError{Name: name, Known: slices.Collect(r.Names())}
	}
	return desc, nil
}

// Names yields the registered format names in sorted order. Each call
// takes a fresh snapshot, so the sequence can be ranged over repeatedly.
func (r *Registry) Names() iter.Seq[string] {
	return func(yield func(string) bool) {
		r.mu.RLock()
		names := make([]string, 0, len(r.formats))
		for name := range r.formats {
			names = append(names, name)
		}
		r.mu.RUnlock()

		slices.Sort(names)
		for _, name := range names {
			if !yield(name) {
				return
			}
		}
	}
}

// Descriptors returns every registered descriptor sorted by name
func (r *Registry) Descriptors() []Descriptor {
	var out []Descriptor
	for name := range r.Names() {
		r.mu.RLock()
		desc, ok := r.formats[name]
		r.mu.RUnlock()
		if ok {
			out = append(out, desc)
		}
	}
	return out
}

// Len returns the number of registered formats
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.formats)
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
