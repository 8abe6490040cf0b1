package dtos

type CreateProductInput struct {
	Name       string  `json:"name" binding:"required"`
	SKU        string  `json:"sku" binding:"required"`
	CategoryID *uint   `json:"category_id"`
	Price      int64   `json:"price"`
	Stock      int     `json:"stock"`
	ImageURL   *string `json:"image_url"`
}

// UpdateProductInput carries a partial update; nil fields are left untouched.
type UpdateProductInput struct {
	Name       *string `json:"name"`
	SKU        *string `json:"sku"`
	CategoryID *uint   `json:"category_id"`
	Price      *int64  `json:"price"`
	Stock      *int    `json:"stock"`
	ImageURL   *string `json:"image_url"`
}

type BulkCreateProductInput struct {
	Products []CreateProductInput `json:"products" binding:"required,min=1,dive"`
}

type AdjustStockInput struct {
	Delta  int    `json:"delta" binding:"required"`
	Reason string `json:"reason"`
}

type CreateCategoryInput struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
}
