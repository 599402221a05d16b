package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vuquimar/api-rei-do-pano/internal/domain"
)

func TestRepository_UpsertAndListOrderedByCode(t *testing.T) {
	repo := New()
	ctx := context.Background()

	n, err := repo.UpsertProducts(ctx, []domain.Product{
		{Code: "9001", Name: "Lençol de Algodão"},
		{Code: "0100", Name: "Toalha de Rosto"},
		{Code: "7898", Name: "Toalha de Banho"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	products, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "0100", products[0].Code)
	assert.Equal(t, "7898", products[1].Code)
	assert.Equal(t, "9001", products[2].Code)
}

func TestRepository_UpsertReplacesByCode(t *testing.T) {
	repo := New()
	ctx := context.Background()

	_, err := repo.UpsertProducts(ctx, []domain.Product{{Code: "7898", Name: "Toalha de Banho", Price: 39.90}})
	require.NoError(t, err)
	_, err = repo.UpsertProducts(ctx, []domain.Product{{Code: "7898", Name: "Toalha de Banho Gigante", Price: 44.90}})
	require.NoError(t, err)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	products, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Toalha de Banho Gigante", products[0].Name)
	assert.Equal(t, 44.90, products[0].Price)
}

func TestRepository_ListEmpty(t *testing.T) {
	repo := New()

	products, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestRepository_GroupDescriptions(t *testing.T) {
	repo := New()
	ctx := context.Background()

	n, err := repo.UpsertGroups(ctx, []domain.ProductGroup{
		{Code: "12", Description: "Toalhas"},
		{Code: "15", Description: "Cama"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	descriptions, err := repo.GroupDescriptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"12": "Toalhas", "15": "Cama"}, descriptions)
}

func TestRepository_CheckpointLifecycle(t *testing.T) {
	repo := New()
	ctx := context.Background()

	cp, err := repo.Checkpoint(ctx, domain.CheckpointProducts)
	require.NoError(t, err)
	assert.Equal(t, domain.CheckpointProducts, cp.Resource)
	assert.True(t, cp.LastSyncAt.IsZero())

	lastSync := time.Date(2025, 6, 15, 3, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SaveCheckpoint(ctx, domain.CheckpointProducts, lastSync))

	cp, err = repo.Checkpoint(ctx, domain.CheckpointProducts)
	require.NoError(t, err)
	assert.Equal(t, lastSync, cp.LastSyncAt)
	assert.False(t, cp.UpdatedAt.IsZero())
}

func TestRepository_ConcurrentUpserts(t *testing.T) {
	repo := New()
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			_, _ = repo.UpsertProducts(ctx, []domain.Product{{Code: "7898", Name: "Toalha"}})
		}
	}()
	for i := 0; i < 50; i++ {
		_, err := repo.List(ctx)
		require.NoError(t, err)
	}
	<-done

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
