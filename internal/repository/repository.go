// Package repository defines the persistence boundaries between the search
// engine, the sync job, and the catalog store.
package repository

import (
	"context"
	"time"

	"github.com/vuquimar/api-rei-do-pano/internal/domain"
)

// CatalogRepository serves read-only search candidates. Implementations must
// be safe for concurrent readers while a sync upsert is in flight.
type CatalogRepository interface {
	// List enumerates every product with its precomputed searchable text.
	List(ctx context.Context) ([]domain.Product, error)

	// Count returns the catalog size.
	Count(ctx context.Context) (int, error)
}

// SyncRepository persists what the sync job pulls from the ERP.
type SyncRepository interface {
	// UpsertProducts inserts or updates products by code, returning how many
	// rows were written.
	UpsertProducts(ctx context.Context, products []domain.Product) (int, error)

	// UpsertGroups inserts or updates product groups by code.
	UpsertGroups(ctx context.Context, groups []domain.ProductGroup) (int, error)

	// GroupDescriptions returns group code → description for denormalizing
	// group names into product rows.
	GroupDescriptions(ctx context.Context) (map[string]string, error)

	// Checkpoint returns the sync checkpoint for a resource. A resource that
	// was never synced yields a zero LastSyncAt, not an error.
	Checkpoint(ctx context.Context, resource string) (domain.SyncCheckpoint, error)

	// SaveCheckpoint advances a resource's checkpoint. Callers only invoke it
	// after the whole run succeeded.
	SaveCheckpoint(ctx context.Context, resource string, lastSyncAt time.Time) error
}
