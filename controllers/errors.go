package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pos-api/services"
	"pos-api/utils"
	"pos-api/utils/response"
)

// respondError maps service errors onto HTTP statuses. Storage errors are
// logged and replaced by a generic message.
func respondError(c *gin.Context, err error) {
	var (
		validation *services.ValidationError
		stock      *services.StockError
		payment    *services.PaymentError
		missing    *services.MissingProductError
	)

	switch {
	case errors.As(err, &validation):
		response.Error(c, http.StatusBadRequest, "invalid_input", err.Error(), map[string]any{
			"field":  validation.Field,
			"reason": validation.Reason,
		})
	case errors.Is(err, services.ErrEmptyCart):
		response.Error(c, http.StatusBadRequest, "empty_cart", err.Error(), nil)
	case errors.Is(err, services.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, "invalid_input", err.Error(), nil)
	case errors.As(err, &stock):
		response.Error(c, http.StatusUnprocessableEntity, "insufficient_stock", err.Error(), map[string]any{
			"product_id": stock.ProductID,
			"name":       stock.Name,
			"available":  stock.Available,
			"requested":  stock.Requested,
		})
	case errors.As(err, &payment):
		response.Error(c, http.StatusUnprocessableEntity, "insufficient_payment", err.Error(), map[string]any{
			"total":    payment.Total,
			"received": payment.Received,
		})
	case errors.As(err, &missing):
		response.Error(c, http.StatusNotFound, "product_not_found", err.Error(), map[string]any{
			"product_id": missing.ProductID,
		})
	case errors.Is(err, services.ErrNotFound):
		response.Error(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, services.ErrDuplicateSku):
		response.Error(c, http.StatusConflict, "duplicate_sku", err.Error(), nil)
	case errors.Is(err, services.ErrDuplicateCategory):
		response.Error(c, http.StatusConflict, "duplicate_category", err.Error(), nil)
	case errors.Is(err, services.ErrDuplicateUsername):
		response.Error(c, http.StatusConflict, "duplicate_username", err.Error(), nil)
	case errors.Is(err, services.ErrProductInUse):
		response.Error(c, http.StatusConflict, "product_in_use", err.Error(), nil)
	case errors.Is(err, services.ErrUnauthorized):
		response.Error(c, http.StatusUnauthorized, "unauthorized", "Invalid credentials", nil)
	case errors.Is(err, services.ErrForbidden):
		response.Error(c, http.StatusForbidden, "forbidden", "You do not have access to this resource", nil)
	default:
		slog.ErrorContext(c.Request.Context(), "request failed",
			"error", err,
			"path", c.Request.URL.Path,
			"request_id", c.GetString(utils.ContextRequestID),
		)
		response.Error(c, http.StatusInternalServerError, "internal_error", "Internal server error", nil)
	}
}

func bindError(c *gin.Context, err error) {
	response.Error(c, http.StatusBadRequest, "invalid_input", err.Error(), nil)
}

func actorFrom(c *gin.Context) *services.Actor {
	userID := utils.GetUserID(c)
	if userID == nil {
		return nil
	}
	return &services.Actor{
		UserID:    *userID,
		Role:      utils.GetUserRole(c),
		IPAddress: c.ClientIP(),
	}
}

func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, "invalid_input", "id must be a positive integer", nil)
		return 0, false
	}
	return uint(id), true
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.DefaultQuery(key, strconv.Itoa(def)))
	if err != nil {
		return def
	}
	return v
}
