package services

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

type InvoiceGenerator interface {
	Next(now time.Time) string
}

// RandomInvoices yields INV-YYYYMMDD-XXXXXXXXXXXX where the suffix is 48 random
// bits taken from a v4 UUID. Uniqueness is finally enforced by the unique index
// on transactions.invoice_number; a collision makes checkout retry.
type RandomInvoices struct{}

func (RandomInvoices) Next(now time.Time) string {
	id := uuid.New()
	return "INV-" + now.Format("20060102") + "-" + strings.ToUpper(hex.EncodeToString(id[:6]))
}
