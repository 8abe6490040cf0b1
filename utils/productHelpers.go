package utils

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"pos-api/models"
)

const (
	ContextUserID    = "user_id"
	ContextRole      = "role"
	ContextRequestID = "request_id"
)

// GetUserRole mengambil role user dari context gin.
func GetUserRole(c *gin.Context) string {
	role, ok := c.Get(ContextRole)
	if !ok {
		return ""
	}
	s, _ := role.(string)
	return s
}

// GetUserID mengambil user id dari context gin, nil jika belum login.
func GetUserID(c *gin.Context) *uint {
	value, exists := c.Get(ContextUserID)
	if !exists {
		return nil
	}
	switch v := value.(type) {
	case uint:
		return &v
	case int:
		id := uint(v)
		return &id
	case float64:
		id := uint(v)
		return &id
	}
	return nil
}

// NewProductAuditLog membuat audit log produk beserta daftar field yang berubah.
func NewProductAuditLog(action string, oldProduct, newProduct *models.Product, userID *uint, ipAddress, description string) *models.AuditLog {
	entityID := uint(0)
	switch {
	case newProduct != nil:
		entityID = newProduct.ID
	case oldProduct != nil:
		entityID = oldProduct.ID
	}

	entry := &models.AuditLog{
		EntityType:  models.AuditEntityProduct,
		EntityID:    entityID,
		Action:      action,
		UserID:      userID,
		OldValue:    toJSONString(oldProduct),
		NewValue:    toJSONString(newProduct),
		Changes:     productChanges(oldProduct, newProduct),
		Description: description,
	}
	if ipAddress != "" {
		entry.IPAddress = &ipAddress
	}
	return entry
}

func NewCategoryAuditLog(category *models.Category, userID *uint, ipAddress string) *models.AuditLog {
	entry := &models.AuditLog{
		EntityType:  models.AuditEntityCategory,
		EntityID:    category.ID,
		Action:      models.AuditActionCreate,
		UserID:      userID,
		NewValue:    toJSONString(category),
		Description: "category created: " + category.Name,
	}
	if ipAddress != "" {
		entry.IPAddress = &ipAddress
	}
	return entry
}

func toJSONString(v any) *string {
	if v == nil {
		return nil
	}
	switch t := v.(type) {
	case *models.Product:
		if t == nil {
			return nil
		}
	case *models.Transaction:
		if t == nil {
			return nil
		}
	case *models.Category:
		if t == nil {
			return nil
		}
	}
	bytes, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	str := string(bytes)
	return &str
}

type change[T comparable] struct {
	Old T `json:"old"`
	New T `json:"new"`
}

func productChanges(oldProduct, newProduct *models.Product) *string {
	if oldProduct == nil || newProduct == nil {
		return nil
	}

	changes := make(map[string]any)

	if oldProduct.Name != newProduct.Name {
		changes["name"] = change[string]{oldProduct.Name, newProduct.Name}
	}
	if oldProduct.SKU != newProduct.SKU {
		changes["sku"] = change[string]{oldProduct.SKU, newProduct.SKU}
	}
	if oldProduct.Price != newProduct.Price {
		changes["price"] = change[int64]{oldProduct.Price, newProduct.Price}
	}
	if oldProduct.Stock != newProduct.Stock {
		changes["stock"] = change[int]{oldProduct.Stock, newProduct.Stock}
	}
	if getUintValue(oldProduct.CategoryID) != getUintValue(newProduct.CategoryID) {
		changes["category_id"] = change[uint]{getUintValue(oldProduct.CategoryID), getUintValue(newProduct.CategoryID)}
	}
	if getStringValue(oldProduct.ImageURL) != getStringValue(newProduct.ImageURL) {
		changes["image_url"] = change[string]{getStringValue(oldProduct.ImageURL), getStringValue(newProduct.ImageURL)}
	}

	if len(changes) == 0 {
		return nil
	}
	return toJSONString(changes)
}

func getStringValue(ptr *string) string {
	if ptr != nil {
		return *ptr
	}
	return ""
}

func getUintValue(ptr *uint) uint {
	if ptr != nil {
		return *ptr
	}
	return 0
}
