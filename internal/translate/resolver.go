package translate

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Resolver maps language pairs to loaded model handles. Handles are
// cached for the process lifetime and never evicted; concurrent first
// requests for the same pair share a single load.
type Resolver struct {
	loader Loader

	mu    sync.RWMutex
	cache map[string]Model
	group singleflight.Group
}

func NewResolver(loader Loader) *Resolver {
	return &Resolver{
		loader: loader,
		cache:  make(map[string]Model),
	}
}

// Resolve returns the model handle for a (source, target) pair. A miss
// attempts to load the model; load failure surfaces as
// ErrModelUnavailable so callers can fall back to hub routing.
// Negative results are not cached — a model published later becomes
// visible on the next request.
func (r *Resolver) Resolve(ctx context.Context, source, target string) (Model, error) {
	if source == target {
		return nil, ErrSameLanguage
	}

	id := PairID(source, target)

	r.mu.RLock()
	m, ok := r.cache[id]
	r.mu.RUnlock()
	if ok {
		return m, nil
	}

	v, err, _ := r.group.Do(id, func() (any, error) {
		// Re-check under the flight: a concurrent caller may have
		// populated the cache between the read and Do.
		r.mu.RLock()
		m, ok := r.cache[id]
		r.mu.RUnlock()
		if ok {
			return m, nil
		}

		m, err := r.loader.Load(ctx, id)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.cache[id] = m
		r.mu.Unlock()

		slog.Info("translation model loaded", "model", id)
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Model), nil
}

// Cached reports whether a handle for the pair is already loaded.
func (r *Resolver) Cached(source, target string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.cache[PairID(source, target)]
	return ok
}

// Size returns the number of loaded handles.
func (r *Resolver) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}
