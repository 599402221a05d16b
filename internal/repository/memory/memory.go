// Package memory implements the catalog and sync repositories on in-process
// maps. It backs local development and tests where PostgreSQL is not
// available; the search engine scores entirely in Go against it.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vuquimar/api-rei-do-pano/internal/domain"
)

// Repository is an in-memory implementation of the catalog and sync
// repositories. Thread-safe via sync.RWMutex.
type Repository struct {
	mu          sync.RWMutex
	products    map[string]domain.Product
	groups      map[string]domain.ProductGroup
	checkpoints map[string]domain.SyncCheckpoint
}

// New creates an empty in-memory repository.
func New() *Repository {
	return &Repository{
		products:    make(map[string]domain.Product),
		groups:      make(map[string]domain.ProductGroup),
		checkpoints: make(map[string]domain.SyncCheckpoint),
	}
}

// List returns every product ordered by code.
func (r *Repository) List(_ context.Context) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]domain.Product, 0, len(r.products))
	for _, p := range r.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].Code < products[j].Code
	})

	return products, nil
}

// Count returns the number of stored products.
func (r *Repository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.products), nil
}

// UpsertProducts stores products keyed by code.
func (r *Repository) UpsertProducts(_ context.Context, products []domain.Product) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range products {
		r.products[products[i].Code] = products[i]
	}
	return len(products), nil
}

// UpsertGroups stores product groups keyed by code.
func (r *Repository) UpsertGroups(_ context.Context, groups []domain.ProductGroup) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range groups {
		r.groups[groups[i].Code] = groups[i]
	}
	return len(groups), nil
}

// GroupDescriptions returns code → description for every stored group.
func (r *Repository) GroupDescriptions(_ context.Context) (map[string]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	descriptions := make(map[string]string, len(r.groups))
	for code, g := range r.groups {
		descriptions[code] = g.Description
	}
	return descriptions, nil
}

// Checkpoint returns the stored checkpoint for resource, or a zero-valued
// checkpoint when the resource was never synced.
func (r *Repository) Checkpoint(_ context.Context, resource string) (domain.SyncCheckpoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cp, ok := r.checkpoints[resource]
	if !ok {
		return domain.SyncCheckpoint{Resource: resource}, nil
	}
	return cp, nil
}

// SaveCheckpoint advances the checkpoint for resource.
func (r *Repository) SaveCheckpoint(_ context.Context, resource string, lastSyncAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.checkpoints[resource] = domain.SyncCheckpoint{
		Resource:   resource,
		LastSyncAt: lastSyncAt,
		UpdatedAt:  time.Now().UTC(),
	}
	return nil
}
