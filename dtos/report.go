package dtos

import "github.com/shopspring/decimal"

type DailyRevenue struct {
	Date    string `json:"date"`
	Count   int    `json:"count"`
	Revenue int64  `json:"revenue"`
}

type PaymentBreakdown struct {
	Method  string `json:"method"`
	Count   int    `json:"count"`
	Revenue int64  `json:"revenue"`
}

type TopProduct struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Revenue   int64  `json:"revenue"`
}

type LowStockProduct struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	SKU   string `json:"sku"`
	Stock int    `json:"stock"`
}

type Report struct {
	Window            string             `json:"window"`
	From              string             `json:"from"`
	To                string             `json:"to"`
	TransactionCount  int                `json:"transaction_count"`
	Revenue           int64              `json:"revenue"`
	DiscountTotal     int64              `json:"discount_total"`
	AverageTicket     decimal.Decimal    `json:"average_ticket"`
	RevenueByDay      []DailyRevenue     `json:"revenue_by_day"`
	ByPaymentMethod   []PaymentBreakdown `json:"by_payment_method"`
	TopProducts       []TopProduct       `json:"top_products"`
	LowStock          []LowStockProduct  `json:"low_stock"`
	LowStockCount     int                `json:"low_stock_count"`
	TotalProducts     int64              `json:"total_products"`
	SkippedLegacyRows int                `json:"skipped_legacy_rows"`
	GeneratedAt       string             `json:"generated_at"`
}
