package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"pos-api/dtos"
	"pos-api/models"
	"pos-api/repositories"
	"pos-api/utils"
	"pos-api/utils/pagination"
)

const maxInvoiceAttempts = 5

var errInvoiceCollision = errors.New("invoice number collision")

// CheckoutService turns carts into transactions. Stock checks, line items,
// stock decrements and the audit row commit in one database transaction.
type CheckoutService struct {
	store    *repositories.Store
	cache    ReportCache
	invoices InvoiceGenerator
	now      func() time.Time
	log      *slog.Logger
}

func NewCheckoutService(store *repositories.Store, cache ReportCache, log *slog.Logger) *CheckoutService {
	if cache == nil {
		cache = noopReportCache{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &CheckoutService{
		store:    store,
		cache:    cache,
		invoices: RandomInvoices{},
		now:      time.Now,
		log:      log,
	}
}

type cartLine struct {
	productID uint
	quantity  int
	unitPrice *int64
}

type checkoutPlan struct {
	lines         []cartLine
	totals        map[uint]int
	productIDs    []uint
	paymentMethod string
	discount      int64
	cashReceived  *int64
	note          *string
}

func (s *CheckoutService) Checkout(ctx context.Context, actor *Actor, req dtos.CheckoutRequest) (*dtos.CheckoutResult, error) {
	if err := authorize(actor); err != nil {
		return nil, err
	}
	plan, err := planCheckout(req)
	if err != nil {
		return nil, err
	}

	var trx *models.Transaction
	for attempt := 1; ; attempt++ {
		now := s.now()
		trx, err = s.commit(ctx, actor, plan, s.invoices.Next(now), now)
		if errors.Is(err, errInvoiceCollision) && attempt < maxInvoiceAttempts {
			s.log.Warn("invoice number collision, retrying", "attempt", attempt)
			continue
		}
		break
	}
	if err != nil {
		if errors.Is(err, errInvoiceCollision) {
			return nil, persistence("allocate invoice number", err)
		}
		return nil, txError("checkout", err)
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn("report cache invalidation failed", "error", err)
	}
	s.log.Info("checkout committed",
		"transaction_id", trx.ID,
		"invoice_number", trx.InvoiceNumber,
		"total", trx.Total,
		"payment_method", trx.PaymentMethod,
		"lines", len(trx.Items),
		"user_id", actor.UserID,
	)

	result := &dtos.CheckoutResult{
		ID:            trx.ID,
		InvoiceNumber: trx.InvoiceNumber,
		Subtotal:      trx.Subtotal,
		Discount:      trx.Discount,
		Total:         trx.Total,
		Change:        trx.Change,
	}
	return result, nil
}

// planCheckout performs every check that needs no database access.
func planCheckout(req dtos.CheckoutRequest) (*checkoutPlan, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}

	method := req.PaymentMethod
	if method == "" {
		method = models.PaymentCash
	}
	if !slices.Contains(models.PaymentMethods, method) {
		return nil, invalid("payment_method", "must be one of cash, qris, debit, credit")
	}
	if req.Discount < 0 {
		return nil, invalid("discount", "must not be negative")
	}
	if req.CashReceived != nil && *req.CashReceived < 0 {
		return nil, invalid("cash_received", "must not be negative")
	}

	plan := &checkoutPlan{
		totals:        make(map[uint]int, len(req.Items)),
		paymentMethod: method,
		discount:      req.Discount,
		cashReceived:  req.CashReceived,
		note:          req.Note,
	}
	for i, item := range req.Items {
		field := fmt.Sprintf("items[%d]", i)
		if item.ProductID == 0 {
			return nil, invalid(field+".product_id", "is required")
		}
		if item.Quantity < 1 {
			return nil, invalid(field+".quantity", "must be a positive integer")
		}
		if item.Quantity > MaxStock || plan.totals[item.ProductID] > MaxStock-item.Quantity {
			return nil, invalid(field+".quantity", fmt.Sprintf("must not exceed %d per product", MaxStock))
		}
		if item.UnitPrice != nil && *item.UnitPrice < 0 {
			return nil, invalid(field+".unit_price", "must not be negative")
		}
		if _, seen := plan.totals[item.ProductID]; !seen {
			plan.productIDs = append(plan.productIDs, item.ProductID)
		}
		plan.totals[item.ProductID] += item.Quantity
		plan.lines = append(plan.lines, cartLine{productID: item.ProductID, quantity: item.Quantity, unitPrice: item.UnitPrice})
	}
	// Ascending id order keeps row locks acquired in the same order by every checkout.
	slices.Sort(plan.productIDs)
	return plan, nil
}

func (s *CheckoutService) commit(ctx context.Context, actor *Actor, plan *checkoutPlan, invoice string, now time.Time) (*models.Transaction, error) {
	var trx *models.Transaction
	err := s.store.ExecTx(ctx, func(tx *repositories.Store) error {
		products, err := tx.Products.FindByIDsForUpdate(ctx, plan.productIDs)
		if err != nil {
			return err
		}
		byID := make(map[uint]models.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		for _, id := range plan.productIDs {
			p, ok := byID[id]
			if !ok {
				return &MissingProductError{ProductID: id}
			}
			if want := plan.totals[id]; p.Stock < want {
				return &StockError{ProductID: id, Name: p.Name, Available: p.Stock, Requested: want}
			}
		}

		trx, err = buildTransaction(plan, byID, invoice, now)
		if err != nil {
			return err
		}
		trx.UserID = actor.userID()

		for _, id := range plan.productIDs {
			applied, err := tx.Products.AdjustStock(ctx, id, -plan.totals[id])
			if err != nil {
				return err
			}
			if !applied {
				p := byID[id]
				return &StockError{ProductID: id, Name: p.Name, Available: p.Stock, Requested: plan.totals[id]}
			}
		}

		if err := tx.Transactions.Create(ctx, trx); err != nil {
			if repositories.IsUniqueViolation(err) {
				return errInvoiceCollision
			}
			return err
		}

		return tx.Audit.Create(ctx, utils.NewTransactionAuditLog(models.AuditActionCreate, trx, actor.userID(), actor.ip()))
	})
	return trx, err
}

func buildTransaction(plan *checkoutPlan, byID map[uint]models.Product, invoice string, now time.Time) (*models.Transaction, error) {
	trx := &models.Transaction{
		InvoiceNumber: invoice,
		PaymentMethod: plan.paymentMethod,
		Note:          plan.note,
		CreatedAt:     now,
		UpdatedAt:     now,
		Items:         make([]models.TransactionItem, 0, len(plan.lines)),
	}

	for i, line := range plan.lines {
		p := byID[line.productID]
		price := p.Price
		if line.unitPrice != nil {
			price = *line.unitPrice
		}
		if price > 0 && int64(line.quantity) > math.MaxInt64/price {
			return nil, invalid(fmt.Sprintf("items[%d]", i), "line total overflows")
		}
		lineTotal := int64(line.quantity) * price
		if trx.Subtotal > math.MaxInt64-lineTotal {
			return nil, invalid("items", "cart total overflows")
		}
		trx.Subtotal += lineTotal
		trx.Items = append(trx.Items, models.TransactionItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			ProductSKU:  p.SKU,
			Quantity:    line.quantity,
			UnitPrice:   price,
			Subtotal:    lineTotal,
		})
	}

	trx.Discount = plan.discount
	trx.Total = max(0, trx.Subtotal-plan.discount)

	if plan.paymentMethod == models.PaymentCash {
		var received int64
		if plan.cashReceived != nil {
			received = *plan.cashReceived
		}
		if received < trx.Total {
			return nil, &PaymentError{Total: trx.Total, Received: received}
		}
		change := received - trx.Total
		trx.CashReceived = &received
		trx.Change = &change
	}
	return trx, nil
}

// Cancel restores the stock of every line of the transaction and removes it.
// A second cancel of the same transaction fails with ErrTransactionNotFound.
func (s *CheckoutService) Cancel(ctx context.Context, actor *Actor, id uint) error {
	if err := authorize(actor, adminOnly...); err != nil {
		return err
	}

	var cancelled *models.Transaction
	err := s.store.ExecTx(ctx, func(tx *repositories.Store) error {
		trx, err := tx.Transactions.FindByIDForUpdate(ctx, id)
		if err != nil {
			if repositories.IsNotFound(err) {
				return ErrTransactionNotFound
			}
			return err
		}

		restore := make(map[uint]int, len(trx.Items))
		var ids []uint
		for _, item := range trx.Items {
			if _, seen := restore[item.ProductID]; !seen {
				ids = append(ids, item.ProductID)
			}
			restore[item.ProductID] += item.Quantity
		}
		slices.Sort(ids)

		for _, pid := range ids {
			applied, err := tx.Products.AdjustStock(ctx, pid, restore[pid])
			if err != nil {
				return err
			}
			if !applied {
				s.log.Warn("product missing while restoring stock", "transaction_id", id, "product_id", pid)
			}
		}

		n, err := tx.Transactions.Delete(ctx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrTransactionNotFound
		}

		cancelled = trx
		return tx.Audit.Create(ctx, utils.NewTransactionAuditLog(models.AuditActionCancel, trx, actor.userID(), actor.ip()))
	})
	if err != nil {
		return txError("cancel transaction", err)
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn("report cache invalidation failed", "error", err)
	}
	s.log.Info("transaction cancelled",
		"transaction_id", cancelled.ID,
		"invoice_number", cancelled.InvoiceNumber,
		"lines", len(cancelled.Items),
		"user_id", actor.UserID,
	)
	return nil
}

type TransactionQuery struct {
	Page  int
	Limit int
	// Date restricts the list to one calendar day, formatted YYYY-MM-DD.
	Date string
}

func (s *CheckoutService) ListTransactions(ctx context.Context, q TransactionQuery) ([]models.Transaction, pagination.Meta, error) {
	p := pagination.New(q.Page, q.Limit)
	filter := repositories.TransactionFilter{Page: p}
	if q.Date != "" {
		day, err := time.ParseInLocation(time.DateOnly, q.Date, s.now().Location())
		if err != nil {
			return nil, pagination.Meta{}, invalid("date", "must be formatted YYYY-MM-DD")
		}
		next := day.AddDate(0, 0, 1)
		filter.From, filter.To = &day, &next
	}

	transactions, total, err := s.store.Transactions.List(ctx, filter)
	if err != nil {
		return nil, pagination.Meta{}, persistence("list transactions", err)
	}
	return transactions, pagination.BuildMeta(p.Page, p.PageSize, total), nil
}

func (s *CheckoutService) GetTransaction(ctx context.Context, id uint) (*models.Transaction, error) {
	trx, err := s.store.Transactions.FindByID(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrTransactionNotFound
		}
		return nil, persistence("get transaction", err)
	}
	return trx, nil
}
