package domain

import (
	"time"
)

// Product is one catalog record as synced from the ERP. The search path never
// mutates products; the sync job owns their lifecycle and upserts by Code.
type Product struct {
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	PriceCash float64   `json:"price_cash"`
	Stock     float64   `json:"stock"`
	GroupCode string    `json:"group_code,omitempty"`
	GroupName string    `json:"group_name,omitempty"`
	Barcode   string    `json:"barcode,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`

	// SearchText is the normalized projection of name, group, code, and
	// barcode, computed once at sync time. Never serialized to clients.
	SearchText string `json:"-"`
}

// ProductGroup is the ERP's category record, denormalized into each product's
// GroupName so scoring can match on it.
type ProductGroup struct {
	Code        string    `json:"code"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Checkpoint resources tracked in sync_state.
const (
	CheckpointProducts = "products"
	CheckpointGroups   = "product_groups"
)

// SyncCheckpoint records the newest upstream timestamp fully ingested for one
// resource. Incremental syncs resume from here; it only advances after the
// whole run succeeds.
type SyncCheckpoint struct {
	Resource   string    `json:"resource"`
	LastSyncAt time.Time `json:"last_sync_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
