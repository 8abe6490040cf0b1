package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"pos-api/dtos"
	"pos-api/models"
	"pos-api/repositories"
	"pos-api/utils"
	"pos-api/utils/pagination"
)

// CatalogService manages products and categories. Every mutation writes its
// audit row in the same database transaction.
type CatalogService struct {
	store *repositories.Store
	cache ReportCache
	log   *slog.Logger
}

func NewCatalogService(store *repositories.Store, cache ReportCache, log *slog.Logger) *CatalogService {
	if cache == nil {
		cache = noopReportCache{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &CatalogService{store: store, cache: cache, log: log}
}

// MaxStock bounds any stock level, stock delta or per-product sale quantity
// so stock arithmetic never overflows.
const MaxStock = 1_000_000_000

type ProductQuery struct {
	Query      string
	CategoryID *uint
	Page       int
	PageSize   int
}

// NormalizeSKU trims and upper-cases a SKU so uniqueness is case-insensitive.
func NormalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}

func validateProductInput(prefix string, in dtos.CreateProductInput) (models.Product, error) {
	p := models.Product{
		Name:       strings.TrimSpace(in.Name),
		SKU:        NormalizeSKU(in.SKU),
		CategoryID: in.CategoryID,
		Price:      in.Price,
		Stock:      in.Stock,
		ImageURL:   in.ImageURL,
	}
	switch {
	case p.Name == "":
		return p, invalid(prefix+"name", "is required")
	case p.SKU == "":
		return p, invalid(prefix+"sku", "is required")
	case p.Price <= 0:
		return p, invalid(prefix+"price", "must be greater than zero")
	case p.Stock < 0:
		return p, invalid(prefix+"stock", "must not be negative")
	case p.Stock > MaxStock:
		return p, invalid(prefix+"stock", fmt.Sprintf("must not exceed %d", MaxStock))
	}
	return p, nil
}

func (s *CatalogService) checkCategory(ctx context.Context, tx *repositories.Store, id *uint) error {
	if id == nil {
		return nil
	}
	ok, err := tx.Categories.Exists(ctx, *id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCategoryNotFound
	}
	return nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, actor *Actor, in dtos.CreateProductInput) (*models.Product, error) {
	if err := authorize(actor, adminOnly...); err != nil {
		return nil, err
	}
	product, err := validateProductInput("", in)
	if err != nil {
		return nil, err
	}

	err = s.store.ExecTx(ctx, func(tx *repositories.Store) error {
		if err := s.checkCategory(ctx, tx, product.CategoryID); err != nil {
			return err
		}
		exists, err := tx.Products.SKUExists(ctx, product.SKU, 0)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateSku
		}
		if err := tx.Products.Create(ctx, &product); err != nil {
			if repositories.IsUniqueViolation(err) {
				return ErrDuplicateSku
			}
			return err
		}
		return tx.Audit.Create(ctx, utils.NewProductAuditLog(models.AuditActionCreate, nil, &product, actor.userID(), actor.ip(),
			"product created: "+product.Name))
	})
	if err != nil {
		return nil, txError("create product", err)
	}

	s.invalidate(ctx)
	s.log.Info("product created", "product_id", product.ID, "sku", product.SKU)
	return &product, nil
}

// BulkCreateProducts imports all products or none.
func (s *CatalogService) BulkCreateProducts(ctx context.Context, actor *Actor, inputs []dtos.CreateProductInput) ([]models.Product, error) {
	if err := authorize(actor, adminOnly...); err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, invalid("products", "must not be empty")
	}

	products := make([]models.Product, 0, len(inputs))
	seen := make(map[string]bool, len(inputs))
	for i, in := range inputs {
		p, err := validateProductInput(fmt.Sprintf("products[%d].", i), in)
		if err != nil {
			return nil, err
		}
		if seen[p.SKU] {
			return nil, fmt.Errorf("%w: %s appears twice in the batch", ErrDuplicateSku, p.SKU)
		}
		seen[p.SKU] = true
		products = append(products, p)
	}

	err := s.store.ExecTx(ctx, func(tx *repositories.Store) error {
		for i := range products {
			if err := s.checkCategory(ctx, tx, products[i].CategoryID); err != nil {
				return err
			}
			exists, err := tx.Products.SKUExists(ctx, products[i].SKU, 0)
			if err != nil {
				return err
			}
			if exists {
				return fmt.Errorf("%w: %s", ErrDuplicateSku, products[i].SKU)
			}
		}
		if err := tx.Products.CreateBatch(ctx, products); err != nil {
			if repositories.IsUniqueViolation(err) {
				return ErrDuplicateSku
			}
			return err
		}
		for i := range products {
			entry := utils.NewProductAuditLog(models.AuditActionCreate, nil, &products[i], actor.userID(), actor.ip(),
				"product imported: "+products[i].Name)
			if err := tx.Audit.Create(ctx, entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, txError("bulk create products", err)
	}

	s.invalidate(ctx)
	s.log.Info("products imported", "count", len(products))
	return products, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.store.Products.FindByID(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrProductNotFound
		}
		return nil, persistence("get product", err)
	}
	return p, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, q ProductQuery) ([]models.Product, pagination.Meta, error) {
	p := pagination.New(q.Page, q.PageSize)
	products, total, err := s.store.Products.List(ctx, repositories.ProductFilter{
		Query:      q.Query,
		CategoryID: q.CategoryID,
		Page:       p,
	})
	if err != nil {
		return nil, pagination.Meta{}, persistence("list products", err)
	}
	return products, pagination.BuildMeta(p.Page, p.PageSize, total), nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, actor *Actor, id uint, in dtos.UpdateProductInput) (*models.Product, error) {
	if err := authorize(actor, adminOnly...); err != nil {
		return nil, err
	}

	var updated models.Product
	err := s.store.ExecTx(ctx, func(tx *repositories.Store) error {
		current, err := tx.Products.FindByIDForUpdate(ctx, id)
		if err != nil {
			if repositories.IsNotFound(err) {
				return ErrProductNotFound
			}
			return err
		}
		before := *current
		updated = *current

		if in.Name != nil {
			updated.Name = strings.TrimSpace(*in.Name)
			if updated.Name == "" {
				return invalid("name", "must not be empty")
			}
		}
		if in.Price != nil {
			if *in.Price <= 0 {
				return invalid("price", "must be greater than zero")
			}
			updated.Price = *in.Price
		}
		if in.Stock != nil {
			if *in.Stock < 0 {
				return invalid("stock", "must not be negative")
			}
			if *in.Stock > MaxStock {
				return invalid("stock", fmt.Sprintf("must not exceed %d", MaxStock))
			}
			updated.Stock = *in.Stock
		}
		if in.ImageURL != nil {
			updated.ImageURL = in.ImageURL
		}
		if in.CategoryID != nil {
			if err := s.checkCategory(ctx, tx, in.CategoryID); err != nil {
				return err
			}
			updated.CategoryID = in.CategoryID
		}
		if in.SKU != nil {
			sku := NormalizeSKU(*in.SKU)
			if sku == "" {
				return invalid("sku", "must not be empty")
			}
			if sku != before.SKU {
				exists, err := tx.Products.SKUExists(ctx, sku, id)
				if err != nil {
					return err
				}
				if exists {
					return ErrDuplicateSku
				}
			}
			updated.SKU = sku
		}

		if err := tx.Products.Save(ctx, &updated); err != nil {
			if repositories.IsUniqueViolation(err) {
				return ErrDuplicateSku
			}
			return err
		}
		return tx.Audit.Create(ctx, utils.NewProductAuditLog(models.AuditActionUpdate, &before, &updated, actor.userID(), actor.ip(),
			"product updated: "+updated.Name))
	})
	if err != nil {
		return nil, txError("update product", err)
	}

	s.invalidate(ctx)
	return &updated, nil
}

// DeleteProduct removes a product that no transaction line references.
// Referenced products fail with ErrProductInUse.
func (s *CatalogService) DeleteProduct(ctx context.Context, actor *Actor, id uint) error {
	if err := authorize(actor, adminOnly...); err != nil {
		return err
	}

	err := s.store.ExecTx(ctx, func(tx *repositories.Store) error {
		current, err := tx.Products.FindByIDForUpdate(ctx, id)
		if err != nil {
			if repositories.IsNotFound(err) {
				return ErrProductNotFound
			}
			return err
		}
		referenced, err := tx.Products.IsReferenced(ctx, id)
		if err != nil {
			return err
		}
		if referenced {
			return ErrProductInUse
		}
		if _, err := tx.Products.Delete(ctx, id); err != nil {
			return err
		}
		return tx.Audit.Create(ctx, utils.NewProductAuditLog(models.AuditActionDelete, current, nil, actor.userID(), actor.ip(),
			"product deleted: "+current.Name))
	})
	if err != nil {
		return txError("delete product", err)
	}

	s.invalidate(ctx)
	s.log.Info("product deleted", "product_id", id)
	return nil
}

// AdjustStock atomically adds delta to the product's stock. A delta that would
// drive stock below zero fails with a *StockError and changes nothing.
func (s *CatalogService) AdjustStock(ctx context.Context, actor *Actor, id uint, delta int, reason string) (*models.Product, error) {
	if err := authorize(actor, adminOnly...); err != nil {
		return nil, err
	}
	if delta == 0 {
		return nil, invalid("delta", "must not be zero")
	}
	if delta > MaxStock || delta < -MaxStock {
		return nil, invalid("delta", fmt.Sprintf("must be between -%d and %d", MaxStock, MaxStock))
	}

	var adjusted *models.Product
	err := s.store.ExecTx(ctx, func(tx *repositories.Store) error {
		current, err := tx.Products.FindByIDForUpdate(ctx, id)
		if err != nil {
			if repositories.IsNotFound(err) {
				return ErrProductNotFound
			}
			return err
		}
		if current.Stock+delta > MaxStock {
			return invalid("delta", fmt.Sprintf("stock would exceed %d", MaxStock))
		}
		applied, err := tx.Products.AdjustStock(ctx, id, delta)
		if err != nil {
			return err
		}
		if !applied {
			return &StockError{ProductID: id, Name: current.Name, Available: current.Stock, Requested: -delta}
		}

		adjusted, err = tx.Products.FindByID(ctx, id)
		if err != nil {
			return err
		}
		description := fmt.Sprintf("stock %+d", delta)
		if reason = strings.TrimSpace(reason); reason != "" {
			description += ": " + reason
		}
		return tx.Audit.Create(ctx, utils.NewProductAuditLog(models.AuditActionStock, current, adjusted, actor.userID(), actor.ip(), description))
	})
	if err != nil {
		return nil, txError("adjust stock", err)
	}

	s.invalidate(ctx)
	s.log.Info("stock adjusted", "product_id", id, "delta", delta, "stock", adjusted.Stock)
	return adjusted, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.store.Categories.List(ctx)
	if err != nil {
		return nil, persistence("list categories", err)
	}
	return categories, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, actor *Actor, in dtos.CreateCategoryInput) (*models.Category, error) {
	if err := authorize(actor, adminOnly...); err != nil {
		return nil, err
	}
	category := models.Category{Name: strings.TrimSpace(in.Name), Description: in.Description}
	if category.Name == "" {
		return nil, invalid("name", "is required")
	}

	err := s.store.ExecTx(ctx, func(tx *repositories.Store) error {
		exists, err := tx.Categories.NameExists(ctx, category.Name)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateCategory
		}
		if err := tx.Categories.Create(ctx, &category); err != nil {
			if repositories.IsUniqueViolation(err) {
				return ErrDuplicateCategory
			}
			return err
		}
		return tx.Audit.Create(ctx, utils.NewCategoryAuditLog(&category, actor.userID(), actor.ip()))
	})
	if err != nil {
		return nil, txError("create category", err)
	}
	return &category, nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn("report cache invalidation failed", "error", err)
	}
}
