package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"pos-api/models"
	"pos-api/utils/pagination"
)

type TransactionFilter struct {
	From *time.Time
	To   *time.Time
	Page pagination.Params
}

type TransactionRepository struct {
	db *gorm.DB
}

// Create inserts the transaction together with its line items.
func (r *TransactionRepository) Create(ctx context.Context, t *models.Transaction) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TransactionRepository) FindByID(ctx context.Context, id uint) (*models.Transaction, error) {
	var t models.Transaction
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&t, id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepository) FindByIDForUpdate(ctx context.Context, id uint) (*models.Transaction, error) {
	var t models.Transaction
	if err := forUpdate(r.db.WithContext(ctx)).First(&t, id).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Where("transaction_id = ?", id).Order("id").Find(&t.Items).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepository) List(ctx context.Context, f TransactionFilter) ([]models.Transaction, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Transaction{})
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var transactions []models.Transaction
	err := q.Preload("Items").
		Order("created_at DESC, id DESC").
		Offset(f.Page.Offset).
		Limit(f.Page.PageSize).
		Find(&transactions).Error
	return transactions, total, err
}

// ListBetween returns every transaction created in [from, to) with its items.
func (r *TransactionRepository) ListBetween(ctx context.Context, from, to time.Time) ([]models.Transaction, error) {
	var transactions []models.Transaction
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at ASC").
		Find(&transactions).Error
	return transactions, err
}

// Delete removes the transaction and its items; it returns the number of
// transaction rows removed.
func (r *TransactionRepository) Delete(ctx context.Context, id uint) (int64, error) {
	db := r.db.WithContext(ctx)
	if err := db.Where("transaction_id = ?", id).Delete(&models.TransactionItem{}).Error; err != nil {
		return 0, err
	}
	res := db.Delete(&models.Transaction{}, id)
	return res.RowsAffected, res.Error
}

func (r *TransactionRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Transaction{}).Count(&count).Error
	return count, err
}
