package dtos

type CheckoutLine struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity"`
	UnitPrice *int64 `json:"unit_price,omitempty"`
}

type CheckoutRequest struct {
	Items         []CheckoutLine `json:"items"`
	PaymentMethod string         `json:"payment_method"`
	Discount      int64          `json:"discount"`
	CashReceived  *int64         `json:"cash_received,omitempty"`
	Note          *string        `json:"note,omitempty"`
}

// CheckoutResult leaves Change nil for non-cash payments.
type CheckoutResult struct {
	ID            uint   `json:"id"`
	InvoiceNumber string `json:"invoice_number"`
	Subtotal      int64  `json:"subtotal"`
	Discount      int64  `json:"discount"`
	Total         int64  `json:"total"`
	Change        *int64 `json:"change,omitempty"`
}
