package planner

import (
	"context"
	"log"
	"sync"
)

// Fetcher loads a product's recipe with current stock figures.
type Fetcher interface {
	FetchRecipe(ctx context.Context, productID uint) (*Recipe, error)
}

// Resolver caches resolved recipes for the lifetime of a form session.
// Selecting the same product twice never refetches, and a per-product
// loading flag is queryable while a fetch is outstanding.
type Resolver struct {
	mu      sync.Mutex
	fetcher Fetcher
	recipes Catalog
	loading map[uint]bool

	// OnError, when set, is called in addition to logging a failed fetch.
	OnError func(productID uint, err error)
}

// NewResolver creates a resolver backed by the given fetcher.
func NewResolver(fetcher Fetcher) *Resolver {
	return &Resolver{
		fetcher: fetcher,
		recipes: Catalog{},
		loading: make(map[uint]bool),
	}
}

// Ensure resolves the product's recipe at most once per session. A failed
// fetch is logged and leaves the entry absent, so the preview for lines
// using that product degrades to nothing; there is no retry.
func (r *Resolver) Ensure(ctx context.Context, productID uint) {
	if productID == 0 {
		return
	}
	r.mu.Lock()
	if _, ok := r.recipes[productID]; ok || r.loading[productID] {
		r.mu.Unlock()
		return
	}
	r.loading[productID] = true
	r.mu.Unlock()

	recipe, err := r.fetcher.FetchRecipe(ctx, productID)

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.loading, productID)
	if err != nil {
		log.Printf("resolver: failed to fetch recipe for product %d: %v", productID, err)
		if r.OnError != nil {
			r.OnError(productID, err)
		}
		return
	}
	r.recipes[productID] = recipe
}

// Get returns the cached recipe for a product, if resolution succeeded.
func (r *Resolver) Get(productID uint) (*Recipe, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	recipe, ok := r.recipes[productID]
	return recipe, ok
}

// Loading reports whether a fetch for the product is still outstanding.
func (r *Resolver) Loading(productID uint) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loading[productID]
}

// Snapshot returns a copy of the catalog for use by the pure preview
// functions. Recipes themselves are never mutated after resolution.
func (r *Resolver) Snapshot() Catalog {
	r.mu.Lock()
	defer r.mu.Unlock()
	catalog := make(Catalog, len(r.recipes))
	for id, recipe := range r.recipes {
		catalog[id] = recipe
	}
	return catalog
}
