package routes

import (
	"github.com/gin-gonic/gin"

	"pos-api/controllers"
	"pos-api/middlewares"
	"pos-api/models"
	"pos-api/services"
)

type Handlers struct {
	Auth         *controllers.AuthController
	Products     *controllers.ProductController
	Transactions *controllers.TransactionController
	Reports      *controllers.ReportController
	Gate         services.Authenticator
	DB           controllers.Pinger
}

func RegisterRoutes(r *gin.Engine, h Handlers) {
	r.GET("/healthz", controllers.Healthz(h.DB))
	r.POST("/login", h.Auth.Login)

	auth := middlewares.AuthMiddleware(h.Gate)
	adminOnly := middlewares.RoleMiddleware(models.RoleAdmin)

	// Users
	r.GET("/me", auth, h.Auth.Me)
	r.POST("/users", auth, adminOnly, h.Auth.Register)

	// Products
	products := r.Group("/products")
	products.Use(auth)
	{
		products.GET("", h.Products.GetProducts)
		products.GET("/:id", h.Products.GetProductByID)
		products.POST("", adminOnly, h.Products.CreateProduct)
		products.POST("/bulk", adminOnly, h.Products.BulkCreateProducts)
		products.PUT("/:id", adminOnly, h.Products.UpdateProduct)
		products.PATCH("/:id/stock", adminOnly, h.Products.AdjustStock)
		products.DELETE("/:id", adminOnly, h.Products.DeleteProduct)
	}

	// Categories
	categories := r.Group("/categories")
	categories.Use(auth)
	{
		categories.GET("", h.Products.GetCategories)
		categories.POST("", adminOnly, h.Products.CreateCategory)
	}

	// Transactions
	transactions := r.Group("/transactions")
	transactions.Use(auth)
	{
		transactions.POST("", h.Transactions.CreateTransaction)
		transactions.GET("", h.Transactions.GetTransactions)
		transactions.GET("/:id", h.Transactions.GetTransactionByID)
		transactions.DELETE("/:id", adminOnly, h.Transactions.CancelTransaction)
	}

	// Reports
	r.GET("/reports", auth, h.Reports.GetReport)
}
