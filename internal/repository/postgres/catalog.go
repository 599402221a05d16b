// Package postgres implements the catalog and sync repositories over
// PostgreSQL. Full-text ranking can be pushed down to ts_rank over the
// search_vector column the migrations maintain by trigger.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vuquimar/api-rei-do-pano/internal/domain"
	"github.com/vuquimar/api-rei-do-pano/internal/search"
	"github.com/vuquimar/api-rei-do-pano/pkg/database"
)

// CatalogRepository implements repository.CatalogRepository and
// repository.SyncRepository, plus the engine's optional FullTextRanker.
type CatalogRepository struct {
	pool database.DBTX
}

// NewCatalogRepository creates a PostgreSQL-backed catalog repository.
func NewCatalogRepository(pool database.DBTX) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

const productColumns = `code, name, price, price_cash, stock, group_code, group_name, barcode, search_text, updated_at`

// List enumerates the whole catalog in code order.
func (r *CatalogRepository) List(ctx context.Context) ([]domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY code`

	ctx, end := database.TraceQuery(ctx, "ListProducts", query)
	rows, err := r.pool.Query(ctx, query)
	end(err)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.Code,
			&p.Name,
			&p.Price,
			&p.PriceCash,
			&p.Stock,
			&p.GroupCode,
			&p.GroupName,
			&p.Barcode,
			&p.SearchText,
			&p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, nil
}

// Count returns the catalog size.
func (r *CatalogRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM products`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}

// FullTextRanks computes ts_rank for every product matching the query's
// terms, keyed by code. Ranks are squashed to [0,1) with r/(r+1) so the
// engine can weight them like the in-process scorer's output. The query text
// arrives already unaccented, matching how search_vector is built.
func (r *CatalogRepository) FullTextRanks(ctx context.Context, q search.Query) (map[string]float64, error) {
	query := `
		SELECT code, ts_rank(search_vector, plainto_tsquery('portuguese', $1)) AS rank
		FROM products
		WHERE search_vector @@ plainto_tsquery('portuguese', $1)`

	ctx, end := database.TraceQuery(ctx, "FullTextRanks", query)
	rows, err := r.pool.Query(ctx, query, q.Normalized)
	end(err)
	if err != nil {
		return nil, fmt.Errorf("full-text ranks: %w", err)
	}
	defer rows.Close()

	ranks := make(map[string]float64)
	for rows.Next() {
		var (
			code string
			rank float64
		)
		if err := rows.Scan(&code, &rank); err != nil {
			return nil, fmt.Errorf("scan rank row: %w", err)
		}
		ranks[code] = rank / (rank + 1)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rank rows: %w", err)
	}

	return ranks, nil
}

// UpsertProducts writes products by code in one batch. The caller populates
// SearchText before handing products over; this layer only persists it.
func (r *CatalogRepository) UpsertProducts(ctx context.Context, products []domain.Product) (int, error) {
	if len(products) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO products (code, name, price, price_cash, stock, group_code, group_name, barcode, search_text, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (code) DO UPDATE SET
			name = EXCLUDED.name,
			price = EXCLUDED.price,
			price_cash = EXCLUDED.price_cash,
			stock = EXCLUDED.stock,
			group_code = EXCLUDED.group_code,
			group_name = EXCLUDED.group_name,
			barcode = EXCLUDED.barcode,
			search_text = EXCLUDED.search_text,
			updated_at = EXCLUDED.updated_at`

	batch := &pgx.Batch{}
	for _, p := range products {
		batch.Queue(query,
			p.Code,
			p.Name,
			p.Price,
			p.PriceCash,
			p.Stock,
			p.GroupCode,
			p.GroupName,
			p.Barcode,
			p.SearchText,
			p.UpdatedAt,
		)
	}

	ctx, end := database.TraceQuery(ctx, "UpsertProducts", "INSERT INTO products ... ON CONFLICT (code) DO UPDATE")
	results := r.pool.SendBatch(ctx, batch)
	for i := range products {
		if _, err := results.Exec(); err != nil {
			results.Close()
			end(err)
			return i, fmt.Errorf("upsert product %s: %w", products[i].Code, err)
		}
	}
	if err := results.Close(); err != nil {
		end(err)
		return 0, fmt.Errorf("close product batch: %w", err)
	}
	end(nil)

	return len(products), nil
}

// UpsertGroups writes product groups by code in one batch.
func (r *CatalogRepository) UpsertGroups(ctx context.Context, groups []domain.ProductGroup) (int, error) {
	if len(groups) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO product_groups (code, description, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (code) DO UPDATE SET
			description = EXCLUDED.description,
			updated_at = EXCLUDED.updated_at`

	batch := &pgx.Batch{}
	for _, g := range groups {
		batch.Queue(query, g.Code, g.Description, g.UpdatedAt)
	}

	ctx, end := database.TraceQuery(ctx, "UpsertGroups", "INSERT INTO product_groups ... ON CONFLICT (code) DO UPDATE")
	results := r.pool.SendBatch(ctx, batch)
	for i := range groups {
		if _, err := results.Exec(); err != nil {
			results.Close()
			end(err)
			return i, fmt.Errorf("upsert group %s: %w", groups[i].Code, err)
		}
	}
	if err := results.Close(); err != nil {
		end(err)
		return 0, fmt.Errorf("close group batch: %w", err)
	}
	end(nil)

	return len(groups), nil
}

// GroupDescriptions returns code → description for every known group.
func (r *CatalogRepository) GroupDescriptions(ctx context.Context) (map[string]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT code, description FROM product_groups`)
	if err != nil {
		return nil, fmt.Errorf("list group descriptions: %w", err)
	}
	defer rows.Close()

	descriptions := make(map[string]string)
	for rows.Next() {
		var code, description string
		if err := rows.Scan(&code, &description); err != nil {
			return nil, fmt.Errorf("scan group row: %w", err)
		}
		descriptions[code] = description
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate group rows: %w", err)
	}

	return descriptions, nil
}

// Checkpoint returns the stored checkpoint for resource. A resource never
// synced yields a zero-valued checkpoint.
func (r *CatalogRepository) Checkpoint(ctx context.Context, resource string) (domain.SyncCheckpoint, error) {
	query := `
		SELECT resource, last_sync_at, updated_at
		FROM sync_state
		WHERE resource = $1`

	var cp domain.SyncCheckpoint
	err := r.pool.QueryRow(ctx, query, resource).Scan(&cp.Resource, &cp.LastSyncAt, &cp.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.SyncCheckpoint{Resource: resource}, nil
	}
	if err != nil {
		return domain.SyncCheckpoint{}, fmt.Errorf("get checkpoint %s: %w", resource, err)
	}

	return cp, nil
}

// SaveCheckpoint advances the checkpoint for resource.
func (r *CatalogRepository) SaveCheckpoint(ctx context.Context, resource string, lastSyncAt time.Time) error {
	query := `
		INSERT INTO sync_state (resource, last_sync_at, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (resource) DO UPDATE SET
			last_sync_at = EXCLUDED.last_sync_at,
			updated_at = NOW()`

	if _, err := r.pool.Exec(ctx, query, resource, lastSyncAt); err != nil {
		return fmt.Errorf("save checkpoint %s: %w", resource, err)
	}
	return nil
}
