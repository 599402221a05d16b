package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vuquimar/api-rei-do-pano/internal/domain"
	"github.com/vuquimar/api-rei-do-pano/internal/search"
	"github.com/vuquimar/api-rei-do-pano/pkg/database"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	return mock
}

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

var productCols = []string{
	"code", "name", "price", "price_cash", "stock",
	"group_code", "group_name", "barcode", "search_text", "updated_at",
}

func sampleProduct() domain.Product {
	return domain.Product{
		Code:       "7898",
		Name:       "Toalha de Banho Gigante Azul",
		Price:      39.90,
		PriceCash:  37.90,
		Stock:      12.5,
		GroupCode:  "12",
		GroupName:  "Toalhas",
		Barcode:    "7891234567890",
		SearchText: "toalha de banho gigante azul 7898 7891234567890 toalhas",
		UpdatedAt:  now,
	}
}

// productRow doubles as the argument list for upsert expectations; the insert
// column order matches the select column order.
func productRow(p domain.Product) []any {
	return []any{
		p.Code, p.Name, p.Price, p.PriceCash, p.Stock,
		p.GroupCode, p.GroupName, p.Barcode, p.SearchText, p.UpdatedAt,
	}
}

func TestCatalogRepository_List_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCatalogRepository(mock)

	first := sampleProduct()
	second := sampleProduct()
	second.Code = "9001"
	second.Name = "Lençol de Algodão Queen"

	mock.ExpectQuery("SELECT .+ FROM products").
		WillReturnRows(
			pgxmock.NewRows(productCols).
				AddRow(productRow(first)...).
				AddRow(productRow(second)...),
		)

	products, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "7898", products[0].Code)
	assert.Equal(t, "Toalha de Banho Gigante Azul", products[0].Name)
	assert.Equal(t, 39.90, products[0].Price)
	assert.Equal(t, "Toalhas", products[0].GroupName)
	assert.Equal(t, "9001", products[1].Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_List_Empty(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCatalogRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM products").
		WillReturnRows(pgxmock.NewRows(productCols))

	products, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_List_QueryError(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCatalogRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM products").
		WillReturnError(errors.New("connection refused"))

	products, err := repo.List(context.Background())
	assert.Nil(t, products)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list products")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_Count_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCatalogRepository(mock)

	mock.ExpectQuery("SELECT count").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1542))

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1542, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_FullTextRanks_SquashesToUnitInterval(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCatalogRepository(mock)

	q := search.NewQuery("toalha algodão")

	mock.ExpectQuery("SELECT code, ts_rank").
		WithArgs(q.Normalized).
		WillReturnRows(
			pgxmock.NewRows([]string{"code", "rank"}).
				AddRow("7898", 0.0991).
				AddRow("9001", 3.0),
		)

	ranks, err := repo.FullTextRanks(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, ranks, 2)
	assert.InDelta(t, 0.0991/1.0991, ranks["7898"], 1e-9)
	assert.InDelta(t, 0.75, ranks["9001"], 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_FullTextRanks_NoMatches(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCatalogRepository(mock)

	q := search.NewQuery("zzz")

	mock.ExpectQuery("SELECT code, ts_rank").
		WithArgs(q.Normalized).
		WillReturnRows(pgxmock.NewRows([]string{"code", "rank"}))

	ranks, err := repo.FullTextRanks(context.Background(), q)
	require.NoError(t, err)
	assert.Empty(t, ranks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_UpsertProducts_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCatalogRepository(mock)

	first := sampleProduct()
	second := sampleProduct()
	second.Code = "9001"

	batch := mock.ExpectBatch()
	batch.ExpectExec("INSERT INTO products").
		WithArgs(productRow(first)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	batch.ExpectExec("INSERT INTO products").
		WithArgs(productRow(second)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	n, err := repo.UpsertProducts(context.Background(), []domain.Product{first, second})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_UpsertProducts_Empty(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCatalogRepository(mock)

	n, err := repo.UpsertProducts(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_UpsertProducts_FailsMidBatch(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCatalogRepository(mock)

	first := sampleProduct()
	second := sampleProduct()
	second.Code = "9001"

	batch := mock.ExpectBatch()
	batch.ExpectExec("INSERT INTO products").
		WithArgs(productRow(first)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	batch.ExpectExec("INSERT INTO products").
		WithArgs(productRow(second)...).
		WillReturnError(errors.New("value too long for type character varying"))

	n, err := repo.UpsertProducts(context.Background(), []domain.Product{first, second})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upsert product 9001")
	assert.Equal(t, 1, n)
}

func TestCatalogRepository_UpsertGroups_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCatalogRepository(mock)

	groups := []domain.ProductGroup{
		{Code: "12", Description: "Toalhas", UpdatedAt: now},
		{Code: "15", Description: "Cama", UpdatedAt: now},
	}

	batch := mock.ExpectBatch()
	batch.ExpectExec("INSERT INTO product_groups").
		WithArgs("12", "Toalhas", now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	batch.ExpectExec("INSERT INTO product_groups").
		WithArgs("15", "Cama", now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	n, err := repo.UpsertGroups(context.Background(), groups)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_GroupDescriptions_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCatalogRepository(mock)

	mock.ExpectQuery("SELECT code, description FROM product_groups").
		WillReturnRows(
			pgxmock.NewRows([]string{"code", "description"}).
				AddRow("12", "Toalhas").
				AddRow("15", "Cama"),
		)

	descriptions, err := repo.GroupDescriptions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"12": "Toalhas", "15": "Cama"}, descriptions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_Checkpoint_Found(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCatalogRepository(mock)

	lastSync := now.Add(-6 * time.Hour)

	mock.ExpectQuery("SELECT resource, last_sync_at, updated_at FROM sync_state").
		WithArgs(domain.CheckpointProducts).
		WillReturnRows(
			pgxmock.NewRows([]string{"resource", "last_sync_at", "updated_at"}).
				AddRow(domain.CheckpointProducts, lastSync, now),
		)

	cp, err := repo.Checkpoint(context.Background(), domain.CheckpointProducts)
	require.NoError(t, err)
	assert.Equal(t, domain.CheckpointProducts, cp.Resource)
	assert.Equal(t, lastSync, cp.LastSyncAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_Checkpoint_NeverSynced(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCatalogRepository(mock)

	mock.ExpectQuery("SELECT resource, last_sync_at, updated_at FROM sync_state").
		WithArgs(domain.CheckpointGroups).
		WillReturnError(pgx.ErrNoRows)

	cp, err := repo.Checkpoint(context.Background(), domain.CheckpointGroups)
	require.NoError(t, err)
	assert.Equal(t, domain.CheckpointGroups, cp.Resource)
	assert.True(t, cp.LastSyncAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_SaveCheckpoint_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCatalogRepository(mock)

	lastSync := now.Add(-time.Minute)

	mock.ExpectExec("INSERT INTO sync_state").
		WithArgs(domain.CheckpointProducts, lastSync).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.SaveCheckpoint(context.Background(), domain.CheckpointProducts, lastSync)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
