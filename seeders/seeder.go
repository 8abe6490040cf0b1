package seeders

import (
	"context"
	"fmt"
	"log/slog"

	"pos-api/dtos"
	"pos-api/models"
	"pos-api/repositories"
	"pos-api/services"
)

func ptrString(s string) *string {
	return &s
}

type seedUser struct {
	Username string
	Password string
	Role     string
}

type seedProduct struct {
	Name     string
	SKU      string
	Category string
	Price    int64
	Stock    int
}

var (
	users = []seedUser{
		{Username: "admin", Password: "admin123", Role: models.RoleAdmin},
		{Username: "cashier1", Password: "cashier123", Role: models.RoleCashier},
	}

	categories = []models.Category{
		{Name: "Makanan", Description: ptrString("Makanan berat")},
		{Name: "Minuman", Description: ptrString("Minuman dingin dan panas")},
		{Name: "Snack", Description: ptrString("Camilan ringan")},
	}

	products = []seedProduct{
		{Name: "Nasi Goreng", SKU: "NG001", Category: "Makanan", Price: 25000, Stock: 50},
		{Name: "Mie Goreng", SKU: "MG001", Category: "Makanan", Price: 20000, Stock: 40},
		{Name: "Teh Manis", SKU: "TM001", Category: "Minuman", Price: 5000, Stock: 100},
		{Name: "Kopi", SKU: "KP001", Category: "Minuman", Price: 8000, Stock: 80},
		{Name: "Keripik", SKU: "KR001", Category: "Snack", Price: 15000, Stock: 60},
	}
)

// Seed inserts demo users, categories and products. Existing rows are kept,
// so running it twice changes nothing. When the store has no transactions yet
// a few sample sales are checked out so reports have data.
func Seed(ctx context.Context, store *repositories.Store, checkout *services.CheckoutService, log *slog.Logger) error {
	var adminID uint
	for _, u := range users {
		hash, err := services.HashPassword(u.Password)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", u.Username, err)
		}
		user := models.User{Username: u.Username, Password: hash, Role: u.Role}
		if err := store.Users.FirstOrCreate(ctx, &user); err != nil {
			return fmt.Errorf("seed user %s: %w", u.Username, err)
		}
		if user.Role == models.RoleAdmin {
			adminID = user.ID
		}
	}

	categoryIDs := make(map[string]uint, len(categories))
	for _, c := range categories {
		category := c
		if err := store.Categories.FirstOrCreate(ctx, &category); err != nil {
			return fmt.Errorf("seed category %s: %w", c.Name, err)
		}
		categoryIDs[category.Name] = category.ID
	}

	productIDs := make([]uint, 0, len(products))
	for _, p := range products {
		categoryID := categoryIDs[p.Category]
		product := models.Product{
			Name:       p.Name,
			SKU:        p.SKU,
			CategoryID: &categoryID,
			Price:      p.Price,
			Stock:      p.Stock,
		}
		if err := store.Products.FirstOrCreate(ctx, &product); err != nil {
			return fmt.Errorf("seed product %s: %w", p.SKU, err)
		}
		productIDs = append(productIDs, product.ID)
	}

	count, err := store.Transactions.Count(ctx)
	if err != nil {
		return err
	}
	if count == 0 && checkout != nil {
		actor := &services.Actor{UserID: adminID, Role: models.RoleAdmin}
		sales := []dtos.CheckoutRequest{
			{
				Items:         []dtos.CheckoutLine{{ProductID: productIDs[0], Quantity: 2}, {ProductID: productIDs[2], Quantity: 2}},
				PaymentMethod: models.PaymentCash,
				CashReceived:  ptrInt64(100000),
			},
			{
				Items:         []dtos.CheckoutLine{{ProductID: productIDs[3], Quantity: 3}},
				PaymentMethod: models.PaymentQRIS,
			},
			{
				Items:         []dtos.CheckoutLine{{ProductID: productIDs[1], Quantity: 1}, {ProductID: productIDs[4], Quantity: 1}},
				PaymentMethod: models.PaymentDebit,
				Discount:      5000,
			},
		}
		for _, sale := range sales {
			if _, err := checkout.Checkout(ctx, actor, sale); err != nil {
				return fmt.Errorf("seed sale: %w", err)
			}
		}
	}

	log.Info("seeding finished", "users", len(users), "categories", len(categories), "products", len(products))
	return nil
}

func ptrInt64(v int64) *int64 {
	return &v
}
