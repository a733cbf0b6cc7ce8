package settings

import (
	"sync"

	"stateview/pkg/state"
)

// ReaderAtFunc opens a snapshot reader for a root.
type ReaderAtFunc func(root state.Root) (Reader, error)

// Factory creates views bound to roots, caching one view per root so
// repeated lookups against the same snapshot share it. The cache is purely
// an optimization: views are stateless wrappers, and building a duplicate
// under a race is harmless.
type Factory struct {
	readerAt ReaderAtFunc

	mu    sync.RWMutex
	views map[state.Root]*View
}

// NewFactory builds a factory over an arbitrary reader source.
func NewFactory(readerAt ReaderAtFunc) *Factory {
	return &Factory{
		readerAt: readerAt,
		views:    make(map[state.Root]*View),
	}
}

// NewStoreFactory builds a factory over a state snapshot store.
func NewStoreFactory(st *state.Store) *Factory {
	return NewFactory(func(root state.Root) (Reader, error) {
		return st.ReaderAt(root)
	})
}

// CreateView returns the view bound to root, creating it on first use.
// No I/O happens beyond what opening the reader requires; lookups stay
// lazy. Safe for concurrent use.
func (f *Factory) CreateView(root state.Root) (*View, error) {
	f.mu.RLock()
	v, ok := f.views[root]
	f.mu.RUnlock()
	if ok {
		return v, nil
	}

	r, err := f.readerAt(root)
	if err != nil {
		return nil, err
	}
	v = NewView(root, r)

	// Insert-if-absent: a racing caller may have cached one first.
	f.mu.Lock()
	if cached, ok := f.views[root]; ok {
		v = cached
	} else {
		f.views[root] = v
	}
	f.mu.Unlock()
	return v, nil
}

// Evict drops the cached view for root, if any. Re-creation is always
// correct, so eviction never needs coordination with CreateView.
func (f *Factory) Evict(root state.Root) {
	f.mu.Lock()
	delete(f.views, root)
	f.mu.Unlock()
}
