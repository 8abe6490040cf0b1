package seeders

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"pos-api/config"
	"pos-api/models"
	"pos-api/repositories"
	"pos-api/services"
	"pos-api/utils/pagination"
)

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := config.OpenDatabase("sqlite", ":memory:", 1)
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))

	log := slog.New(slog.DiscardHandler)
	store := repositories.NewStore(db)
	checkout := services.NewCheckoutService(store, nil, log)

	require.NoError(t, Seed(ctx, store, checkout, log))
	require.NoError(t, Seed(ctx, store, checkout, log))

	n, err := store.Products.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(products)), n)

	trxCount, err := store.Transactions.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), trxCount)

	cats, err := store.Categories.List(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 3)

	admin, err := store.Users.FindByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte("admin123")))

	nasi, _, err := store.Products.List(ctx, repositories.ProductFilter{Query: "NG001", Page: pagination.New(1, 10)})
	require.NoError(t, err)
	require.Len(t, nasi, 1)
	assert.Equal(t, 48, nasi[0].Stock)
}
