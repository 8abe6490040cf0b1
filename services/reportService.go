package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"pos-api/dtos"
	"pos-api/models"
	"pos-api/repositories"
	"pos-api/utils"
)

const (
	WindowToday  = "today"
	WindowWeek   = "week"
	WindowMonths = "months"

	defaultTopProducts = 5
	maxTopProducts     = 50
	maxReportMonths    = 24
)

type ReportQuery struct {
	Window string
	Months int
	Top    int
}

// ReportService aggregates committed transactions over a time window. It takes
// no locks; a report may miss a checkout that commits while it runs.
type ReportService struct {
	store     *repositories.Store
	cache     ReportCache
	threshold int
	now       func() time.Time
	log       *slog.Logger
}

func NewReportService(store *repositories.Store, cache ReportCache, lowStockThreshold int, log *slog.Logger) *ReportService {
	if cache == nil {
		cache = noopReportCache{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &ReportService{store: store, cache: cache, threshold: lowStockThreshold, now: time.Now, log: log}
}

type reportRange struct {
	window string
	months int
	top    int
	from   time.Time
	to     time.Time
}

func (s *ReportService) resolve(q ReportQuery) (reportRange, error) {
	now := s.now()
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	r := reportRange{window: q.Window, to: startOfToday.AddDate(0, 0, 1), top: q.Top}

	if r.top == 0 {
		r.top = defaultTopProducts
	}
	if r.top < 0 || r.top > maxTopProducts {
		return r, invalid("top", fmt.Sprintf("must be between 1 and %d", maxTopProducts))
	}

	switch q.Window {
	case "", WindowToday:
		r.window = WindowToday
		r.from = startOfToday
	case WindowWeek:
		r.from = startOfToday.AddDate(0, 0, -6)
	case WindowMonths:
		r.months = q.Months
		if r.months == 0 {
			r.months = 1
		}
		if r.months < 1 || r.months > maxReportMonths {
			return r, invalid("months", fmt.Sprintf("must be between 1 and %d", maxReportMonths))
		}
		r.from = startOfToday.AddDate(0, -r.months, 1)
	default:
		return r, invalid("window", "must be one of today, week, months")
	}
	return r, nil
}

func (s *ReportService) Generate(ctx context.Context, q ReportQuery) (*dtos.Report, error) {
	r, err := s.resolve(q)
	if err != nil {
		return nil, err
	}

	cacheKey, cacheErr := s.cache.Key(ctx, fmt.Sprintf("%s:%d:%d:%s", r.window, r.months, r.top, r.from.Format("20060102")))
	if cacheErr == nil {
		if cached, ok := s.cache.Get(ctx, cacheKey); ok {
			return cached, nil
		}
	}

	var (
		transactions  []models.Transaction
		lowStock      []models.Product
		totalProducts int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		transactions, err = s.store.Transactions.ListBetween(gctx, r.from, r.to)
		return err
	})
	g.Go(func() error {
		var err error
		lowStock, err = s.store.Products.ListLowStock(gctx, s.threshold)
		return err
	})
	g.Go(func() error {
		var err error
		totalProducts, err = s.store.Products.Count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, persistence("generate report", err)
	}

	report := aggregate(r, transactions)
	report.TotalProducts = totalProducts
	report.LowStockCount = len(lowStock)
	report.LowStock = make([]dtos.LowStockProduct, 0, len(lowStock))
	for _, p := range lowStock {
		report.LowStock = append(report.LowStock, dtos.LowStockProduct{ID: p.ID, Name: p.Name, SKU: p.SKU, Stock: p.Stock})
	}
	report.GeneratedAt = s.now().Format(time.RFC3339)

	if report.SkippedLegacyRows > 0 {
		s.log.Warn("report skipped malformed legacy line items", "skipped", report.SkippedLegacyRows, "window", r.window)
	}
	if cacheErr == nil {
		s.cache.Set(ctx, cacheKey, report)
	}
	return report, nil
}

type productKey struct {
	id   uint
	name string
}

func aggregate(r reportRange, transactions []models.Transaction) *dtos.Report {
	report := &dtos.Report{
		Window:        r.window,
		From:          r.from.Format(time.DateOnly),
		To:            r.to.AddDate(0, 0, -1).Format(time.DateOnly),
		AverageTicket: decimal.Zero,
	}

	days := make(map[string]int)
	for d := r.from; d.Before(r.to); d = d.AddDate(0, 0, 1) {
		key := d.Format(time.DateOnly)
		days[key] = len(report.RevenueByDay)
		report.RevenueByDay = append(report.RevenueByDay, dtos.DailyRevenue{Date: key})
	}

	methods := make(map[string]*dtos.PaymentBreakdown)
	products := make(map[productKey]*dtos.TopProduct)

	for _, trx := range transactions {
		report.TransactionCount++
		report.Revenue += trx.Total
		report.DiscountTotal += trx.Discount

		if i, ok := days[trx.CreatedAt.In(r.from.Location()).Format(time.DateOnly)]; ok {
			report.RevenueByDay[i].Count++
			report.RevenueByDay[i].Revenue += trx.Total
		}

		m, ok := methods[trx.PaymentMethod]
		if !ok {
			m = &dtos.PaymentBreakdown{Method: trx.PaymentMethod}
			methods[trx.PaymentMethod] = m
		}
		m.Count++
		m.Revenue += trx.Total

		lines, skipped := transactionLines(trx)
		report.SkippedLegacyRows += skipped
		for _, line := range lines {
			key := productKey{id: line.ProductID}
			if line.ProductID == 0 {
				key.name = line.Name
			}
			tp, ok := products[key]
			if !ok {
				tp = &dtos.TopProduct{ProductID: line.ProductID, Name: line.Name}
				products[key] = tp
			}
			tp.Quantity += line.Quantity
			tp.Revenue += line.Subtotal()
		}
	}

	if report.TransactionCount > 0 {
		report.AverageTicket = decimal.NewFromInt(report.Revenue).
			DivRound(decimal.NewFromInt(int64(report.TransactionCount)), 2)
	}

	report.ByPaymentMethod = make([]dtos.PaymentBreakdown, 0, len(methods))
	for _, m := range methods {
		report.ByPaymentMethod = append(report.ByPaymentMethod, *m)
	}
	sort.Slice(report.ByPaymentMethod, func(i, j int) bool {
		return report.ByPaymentMethod[i].Method < report.ByPaymentMethod[j].Method
	})

	report.TopProducts = make([]dtos.TopProduct, 0, len(products))
	for _, tp := range products {
		report.TopProducts = append(report.TopProducts, *tp)
	}
	sort.Slice(report.TopProducts, func(i, j int) bool {
		a, b := report.TopProducts[i], report.TopProducts[j]
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		if a.Revenue != b.Revenue {
			return a.Revenue > b.Revenue
		}
		return a.Name < b.Name
	})
	if len(report.TopProducts) > r.top {
		report.TopProducts = report.TopProducts[:r.top]
	}
	return report
}

// transactionLines returns the normalized line items of a transaction,
// falling back to the raw legacy payload when no rows exist.
func transactionLines(trx models.Transaction) ([]utils.LegacyLine, int) {
	if len(trx.Items) > 0 {
		lines := make([]utils.LegacyLine, 0, len(trx.Items))
		for _, item := range trx.Items {
			lines = append(lines, utils.LegacyLine{
				ProductID: item.ProductID,
				Name:      item.ProductName,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
			})
		}
		return lines, 0
	}
	if trx.LegacyItems == nil {
		return nil, 0
	}
	return utils.ParseLegacyItems(*trx.LegacyItems)
}
