package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pos-api/dtos"
	"pos-api/services"
)

type TransactionController struct {
	checkout *services.CheckoutService
}

func NewTransactionController(checkout *services.CheckoutService) *TransactionController {
	return &TransactionController{checkout: checkout}
}

// CreateTransaction checks out a cart.
func (tc *TransactionController) CreateTransaction(c *gin.Context) {
	var input dtos.CheckoutRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	result, err := tc.checkout.Checkout(c.Request.Context(), actorFrom(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (tc *TransactionController) GetTransactions(c *gin.Context) {
	transactions, meta, err := tc.checkout.ListTransactions(c.Request.Context(), services.TransactionQuery{
		Page:  queryInt(c, "page", 1),
		Limit: queryInt(c, "limit", 10),
		Date:  c.Query("date"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": transactions, "meta": meta})
}

func (tc *TransactionController) GetTransactionByID(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	transaction, err := tc.checkout.GetTransaction(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, transaction)
}

// CancelTransaction restores stock and removes the transaction.
func (tc *TransactionController) CancelTransaction(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := tc.checkout.Cancel(c.Request.Context(), actorFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Transaction cancelled"})
}
