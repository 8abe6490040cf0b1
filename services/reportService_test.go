package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-api/models"
	"pos-api/repositories"
)

var reportNow = time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)

func seedSale(t *testing.T, store *repositories.Store, invoice string, at time.Time, method string, discount int64, items ...models.TransactionItem) {
	t.Helper()
	trx := &models.Transaction{
		InvoiceNumber: invoice,
		PaymentMethod: method,
		Discount:      discount,
		Items:         items,
		CreatedAt:     at,
	}
	for _, it := range items {
		trx.Subtotal += it.Subtotal
	}
	trx.Total = max(0, trx.Subtotal-discount)
	require.NoError(t, store.Transactions.Create(context.Background(), trx))
}

func line(p *models.Product, qty int) models.TransactionItem {
	return models.TransactionItem{
		ProductID: p.ID, ProductName: p.Name, ProductSKU: p.SKU,
		Quantity: qty, UnitPrice: p.Price, Subtotal: int64(qty) * p.Price,
	}
}

func newReportFixture(t *testing.T) (*repositories.Store, *ReportService) {
	store := newTestStore(t)
	kopi := seedProduct(t, store, "KOPI", 8000, 80)
	teh := seedProduct(t, store, "TEH", 5000, 3)
	seedProduct(t, store, "ROTI", 12000, 0)

	seedSale(t, store, "INV-1", reportNow.Add(-2*time.Hour), models.PaymentCash, 1000, line(kopi, 2), line(teh, 1))
	seedSale(t, store, "INV-2", reportNow.Add(-1*time.Hour), models.PaymentQRIS, 0, line(teh, 4))
	seedSale(t, store, "INV-3", reportNow.AddDate(0, 0, -3), models.PaymentCash, 0, line(kopi, 1))
	seedSale(t, store, "INV-4", reportNow.AddDate(0, -2, 0), models.PaymentDebit, 0, line(kopi, 10))

	svc := NewReportService(store, nil, 10, quiet)
	svc.now = func() time.Time { return reportNow }
	return store, svc
}

func TestReportToday(t *testing.T) {
	_, svc := newReportFixture(t)

	report, err := svc.Generate(context.Background(), ReportQuery{})
	require.NoError(t, err)

	assert.Equal(t, WindowToday, report.Window)
	assert.Equal(t, "2024-05-10", report.From)
	assert.Equal(t, "2024-05-10", report.To)
	assert.Equal(t, 2, report.TransactionCount)
	assert.Equal(t, int64(20000+20000), report.Revenue)
	assert.Equal(t, int64(1000), report.DiscountTotal)
	assert.Equal(t, "20000", report.AverageTicket.String())

	require.Len(t, report.RevenueByDay, 1)
	assert.Equal(t, 2, report.RevenueByDay[0].Count)

	require.Len(t, report.ByPaymentMethod, 2)
	assert.Equal(t, models.PaymentCash, report.ByPaymentMethod[0].Method)

	require.Len(t, report.TopProducts, 2)
	assert.Equal(t, "Product TEH", report.TopProducts[0].Name)
	assert.Equal(t, 5, report.TopProducts[0].Quantity)
	assert.Equal(t, int64(25000), report.TopProducts[0].Revenue)

	assert.Equal(t, 2, report.LowStockCount)
	assert.Equal(t, "ROTI", report.LowStock[0].SKU)
	assert.Equal(t, int64(3), report.TotalProducts)
}

func TestReportWeekAndMonths(t *testing.T) {
	_, svc := newReportFixture(t)
	ctx := context.Background()

	week, err := svc.Generate(ctx, ReportQuery{Window: WindowWeek, Top: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, week.TransactionCount)
	assert.Len(t, week.RevenueByDay, 7)
	assert.Equal(t, "2024-05-04", week.From)
	require.Len(t, week.TopProducts, 1)

	months, err := svc.Generate(ctx, ReportQuery{Window: WindowMonths, Months: 3})
	require.NoError(t, err)
	assert.Equal(t, 4, months.TransactionCount)
	assert.Equal(t, "Product KOPI", months.TopProducts[0].Name)
	assert.Equal(t, 13, months.TopProducts[0].Quantity)
}

func TestReportRejectsBadQuery(t *testing.T) {
	_, svc := newReportFixture(t)
	ctx := context.Background()

	for _, q := range []ReportQuery{
		{Window: "year"},
		{Window: WindowMonths, Months: 99},
		{Top: -1},
	} {
		_, err := svc.Generate(ctx, q)
		assert.ErrorIs(t, err, ErrInvalidInput, "%+v", q)
	}
}

func TestReportNormalizesLegacyItems(t *testing.T) {
	store := newTestStore(t)
	legacy := `[{"id":"7","nama":"Es Teh","harga":"3000","qty":"2"},{"harga":"x","qty":1},{"price":1000,"quantity":1,"name":"Es Teh","id":7}]`
	trx := &models.Transaction{
		InvoiceNumber: "OLD-1",
		PaymentMethod: models.PaymentCash,
		Total:         7000,
		LegacyItems:   &legacy,
		CreatedAt:     reportNow.Add(-time.Hour),
	}
	require.NoError(t, store.Transactions.Create(context.Background(), trx))

	svc := NewReportService(store, nil, 10, quiet)
	svc.now = func() time.Time { return reportNow }

	report, err := svc.Generate(context.Background(), ReportQuery{Window: WindowToday})
	require.NoError(t, err)
	assert.Equal(t, 1, report.TransactionCount)
	assert.Equal(t, 1, report.SkippedLegacyRows)
	require.Len(t, report.TopProducts, 1)
	assert.Equal(t, uint(7), report.TopProducts[0].ProductID)
	assert.Equal(t, 3, report.TopProducts[0].Quantity)
	assert.Equal(t, int64(7000), report.TopProducts[0].Revenue)
}

func TestReportEmptyWindow(t *testing.T) {
	store := newTestStore(t)
	svc := NewReportService(store, nil, 10, quiet)
	svc.now = func() time.Time { return reportNow }

	report, err := svc.Generate(context.Background(), ReportQuery{Window: WindowToday})
	require.NoError(t, err)
	assert.Zero(t, report.TransactionCount)
	assert.True(t, report.AverageTicket.IsZero())
	assert.Empty(t, report.TopProducts)
}

func TestRedisReportCacheServesUntilInvalidated(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	store, svc := newReportFixture(t)
	cache := NewReportCache(rdb, time.Minute)
	svc.cache = cache
	ctx := context.Background()

	first, err := svc.Generate(ctx, ReportQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, first.TransactionCount)

	kopi, err := store.Products.FindByID(ctx, 1)
	require.NoError(t, err)
	seedSale(t, store, "INV-5", reportNow.Add(-time.Minute), models.PaymentCash, 0, line(kopi, 1))

	cached, err := svc.Generate(ctx, ReportQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, cached.TransactionCount, "served from cache")

	require.NoError(t, cache.Invalidate(ctx))
	fresh, err := svc.Generate(ctx, ReportQuery{})
	require.NoError(t, err)
	assert.Equal(t, 3, fresh.TransactionCount)
}

func TestNewReportCacheWithoutRedisIsNoop(t *testing.T) {
	cache := NewReportCache(nil, time.Minute)
	_, ok := cache.Get(context.Background(), "x")
	assert.False(t, ok)
	assert.NoError(t, cache.Invalidate(context.Background()))
}
