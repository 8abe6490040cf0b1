package models

import "time"

const (
	PaymentCash   = "cash"
	PaymentQRIS   = "qris"
	PaymentDebit  = "debit"
	PaymentCredit = "credit"
)

var PaymentMethods = []string{PaymentCash, PaymentQRIS, PaymentDebit, PaymentCredit}

type Transaction struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	InvoiceNumber string            `gorm:"size:50;not null;uniqueIndex" json:"invoice_number"`
	UserID        *uint             `gorm:"index" json:"user_id,omitempty"`
	Items         []TransactionItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	Subtotal      int64             `gorm:"not null;default:0" json:"subtotal"`
	Discount      int64             `gorm:"not null;default:0" json:"discount"`
	Total         int64             `gorm:"not null;default:0" json:"total"`
	PaymentMethod string            `gorm:"size:20;not null" json:"payment_method"`
	CashReceived  *int64            `json:"cash_received,omitempty"`
	Change        *int64            `gorm:"column:change_amount" json:"change,omitempty"`
	Note          *string           `gorm:"type:text" json:"note,omitempty"`

	// LegacyItems holds line items imported from older revisions as raw JSON.
	LegacyItems *string `gorm:"type:text" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TransactionItem keeps a name/SKU snapshot so history survives catalog edits.
type TransactionItem struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	TransactionID uint   `gorm:"not null;index" json:"transaction_id"`
	ProductID     uint   `gorm:"not null;index" json:"product_id"`
	ProductName   string `gorm:"size:100;not null" json:"product_name"`
	ProductSKU    string `gorm:"size:50;not null" json:"product_sku"`
	Quantity      int    `gorm:"not null" json:"quantity"`
	UnitPrice     int64  `gorm:"not null" json:"unit_price"`
	Subtotal      int64  `gorm:"not null" json:"subtotal"`
}
