package utils

import (
	"fmt"

	"pos-api/models"
)

// NewTransactionAuditLog mencatat checkout (action create) atau pembatalan transaksi.
// Snapshot menyertakan item agar transaksi yang dibatalkan bisa direkonstruksi.
func NewTransactionAuditLog(action string, trx *models.Transaction, userID *uint, ipAddress string) *models.AuditLog {
	entry := &models.AuditLog{
		EntityType: models.AuditEntityTransaction,
		EntityID:   trx.ID,
		Action:     action,
		UserID:     userID,
	}

	switch action {
	case models.AuditActionCancel:
		entry.OldValue = toJSONString(trx)
		entry.Description = fmt.Sprintf("transaction %s cancelled, stock restored for %d lines", trx.InvoiceNumber, len(trx.Items))
	default:
		entry.NewValue = toJSONString(trx)
		entry.Description = fmt.Sprintf("checkout %s total %d via %s", trx.InvoiceNumber, trx.Total, trx.PaymentMethod)
	}

	if ipAddress != "" {
		entry.IPAddress = &ipAddress
	}
	return entry
}
