package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"pos-api/repositories"
	"pos-api/utils"
)

// StockAlertService sends one WhatsApp message listing every product whose
// stock fell below the threshold. A failed send is logged and not retried.
type StockAlertService struct {
	products  *repositories.ProductRepository
	notifier  utils.Notifier
	phone     string
	threshold int
	now       func() time.Time
	log       *slog.Logger
}

func NewStockAlertService(products *repositories.ProductRepository, notifier utils.Notifier, phone string, threshold int, log *slog.Logger) *StockAlertService {
	if log == nil {
		log = slog.Default()
	}
	return &StockAlertService{
		products:  products,
		notifier:  notifier,
		phone:     phone,
		threshold: threshold,
		now:       time.Now,
		log:       log,
	}
}

func (s *StockAlertService) Enabled() bool {
	return s.notifier != nil && s.phone != ""
}

// Run returns how many low-stock products were reported.
func (s *StockAlertService) Run(ctx context.Context) (int, error) {
	low, err := s.products.ListLowStock(ctx, s.threshold)
	if err != nil {
		return 0, persistence("list low stock", err)
	}
	if len(low) == 0 {
		s.log.Info("stock alert: nothing below threshold", "threshold", s.threshold)
		return 0, nil
	}
	if !s.Enabled() {
		s.log.Warn("stock alert: notifier not configured", "low_stock", len(low))
		return 0, nil
	}

	message := utils.FormatLowStockMessage(low, s.threshold, s.now())
	if err := s.notifier.Send(ctx, s.phone, message); err != nil {
		s.log.Error("stock alert: send failed", "error", err, "low_stock", len(low))
		return 0, err
	}
	s.log.Info("stock alert sent", "low_stock", len(low))
	return len(low), nil
}

// Schedule registers the alert on c using a six-field cron spec.
func (s *StockAlertService) Schedule(c *cron.Cron, spec string, timeout time.Duration) (cron.EntryID, error) {
	return c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		_, _ = s.Run(ctx)
	})
}
