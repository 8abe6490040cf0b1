package repositories

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"pos-api/models"
	"pos-api/utils/pagination"
)

type ProductFilter struct {
	Query      string
	CategoryID *uint
	Page       pagination.Params
}

type ProductRepository struct {
	db *gorm.DB
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ProductRepository) CreateBatch(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&products).Error
}

func (r *ProductRepository) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).Preload("Category").First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByIDForUpdate loads one product and locks its row until the surrounding
// transaction ends.
func (r *ProductRepository) FindByIDForUpdate(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := forUpdate(r.db.WithContext(ctx)).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByIDsForUpdate loads the given products and locks their rows until the
// surrounding transaction ends.
func (r *ProductRepository) FindByIDsForUpdate(ctx context.Context, ids []uint) ([]models.Product, error) {
	var products []models.Product
	err := forUpdate(r.db.WithContext(ctx)).
		Where("id IN ?", ids).
		Order("id").
		Find(&products).Error
	return products, err
}

func (r *ProductRepository) SKUExists(ctx context.Context, sku string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Product{}).Where("sku = ?", sku)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ProductRepository) List(ctx context.Context, f ProductFilter) ([]models.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{})
	for _, term := range strings.Fields(strings.ToLower(strings.TrimSpace(f.Query))) {
		like := "%" + term + "%"
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(sku) LIKE ?)", like, like)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []models.Product
	err := q.Preload("Category").
		Order("name ASC").
		Offset(f.Page.Offset).
		Limit(f.Page.PageSize).
		Find(&products).Error
	return products, total, err
}

func (r *ProductRepository) Save(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Omit("Category").Save(p).Error
}

func (r *ProductRepository) Delete(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, id)
	return res.RowsAffected, res.Error
}

// AdjustStock applies delta only if the resulting stock stays non-negative.
// It reports false when the guard rejected the update or the row is missing.
func (r *ProductRepository) AdjustStock(ctx context.Context, id uint, delta int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock + ? >= 0", id, delta).
		Update("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *ProductRepository) IsReferenced(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.TransactionItem{}).
		Where("product_id = ?", id).
		Count(&count).Error
	return count > 0, err
}

func (r *ProductRepository) ListLowStock(ctx context.Context, threshold int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("stock < ?", threshold).
		Order("stock ASC, name ASC").
		Find(&products).Error
	return products, err
}

func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&count).Error
	return count, err
}

// FirstOrCreate inserts p unless a product with the same SKU exists.
func (r *ProductRepository) FirstOrCreate(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Omit("Category").Where(models.Product{SKU: p.SKU}).FirstOrCreate(p).Error
}
