package normalisers

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/normalisers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry maps file extensions to normalisers.
type Registry struct {
	mu          sync.RWMutex
	byExtension map[string]driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byExtension: make(map[string]driven.Normaliser),
	}
}

// NewDefaultRegistry returns a registry with the built-in normalisers.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(plaintext.New())
	return r
}

// Register adds a normaliser for each of its extensions. An extension
// already claimed by a normaliser of equal or higher priority is kept.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ext := range n.SupportedExtensions() {
		ext = strings.ToLower(ext)
		if existing, ok := r.byExtension[ext]; ok && existing.Priority() >= n.Priority() {
			continue
		}
		r.byExtension[ext] = n
	}
}

// Get returns the normaliser for a file name.
func (r *Registry) Get(name string) (driven.Normaliser, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.byExtension[ext]
	return n, ok
}

// Supports reports whether a normaliser handles the file name.
func (r *Registry) Supports(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Extensions returns all registered extensions in sorted order.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.byExtension))
	for ext := range r.byExtension {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
