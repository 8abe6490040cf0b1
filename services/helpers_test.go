package services

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pos-api/config"
	"pos-api/dtos"
	"pos-api/models"
	"pos-api/repositories"
)

var (
	admin   = &Actor{UserID: 1, Role: models.RoleAdmin, IPAddress: "10.0.0.1"}
	cashier = &Actor{UserID: 2, Role: models.RoleCashier, IPAddress: "10.0.0.2"}
	quiet   = slog.New(slog.DiscardHandler)
)

func newTestStore(t *testing.T) *repositories.Store {
	t.Helper()
	db, err := config.OpenDatabase("sqlite", ":memory:", 1)
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return repositories.NewStore(db)
}

func seedProduct(t *testing.T, s *repositories.Store, sku string, price int64, stock int) *models.Product {
	t.Helper()
	p := &models.Product{Name: "Product " + sku, SKU: sku, Price: price, Stock: stock}
	require.NoError(t, s.Products.Create(context.Background(), p))
	return p
}

func stockOf(t *testing.T, s *repositories.Store, id uint) int {
	t.Helper()
	p, err := s.Products.FindByID(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func countRows(t *testing.T, s *repositories.Store, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.DB().Model(model).Count(&n).Error)
	return n
}

func ptr[T any](v T) *T { return &v }

// fixedInvoices hands out the queued numbers, then repeats the last one.
type fixedInvoices struct {
	mu      sync.Mutex
	numbers []string
}

func (f *fixedInvoices) Next(time.Time) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.numbers[0]
	if len(f.numbers) > 1 {
		f.numbers = f.numbers[1:]
	}
	return n
}

// countingCache records invalidations and otherwise never hits.
type countingCache struct {
	mu          sync.Mutex
	invalidated int
}

func (c *countingCache) Key(_ context.Context, key string) (string, error) { return key, nil }
func (c *countingCache) Get(context.Context, string) (*dtos.Report, bool)  { return nil, false }
func (c *countingCache) Set(context.Context, string, *dtos.Report)        {}
func (c *countingCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated++
	return nil
}

func (c *countingCache) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invalidated
}
