package layout

import (
	"fmt"
	"sync"
)

// Registry holds lazily-initialized layouts addressed by a stable
// name. It replaces the self-referential constants a layout graph
// would otherwise need: a field's Ref can resolve through the
// registry while the layout it refers to is still being built.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*registryEntry
}

type registryEntry struct {
	once   sync.Once
	build  func() *TypeLayout
	layout *TypeLayout
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*registryEntry)}
}

// Register associates a name with a layout constructor and returns a
// Ref resolving to it. The constructor runs at most once, on first
// resolution. Registering a name twice panics: layout identity must
// be unambiguous for the whole process.
func (r *Registry) Register(name string, build func() *TypeLayout) Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.entries[name]; dup {
		panic(fmt.Sprintf("layout: %q registered twice", name))
	}
	e := &registryEntry{build: build}
	r.entries[name] = e
	return e.resolve
}

// Lookup returns the Ref registered under name, or nil.
func (r *Registry) Lookup(name string) Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[name]
	if !ok {
		return nil
	}
	return e.resolve
}

func (e *registryEntry) resolve() *TypeLayout {
	e.once.Do(func() {
		e.layout = e.build()
		e.build = nil
	})
	return e.layout
}

// Global is the process-wide registry used by generated layout code.
var Global = NewRegistry()
