// Package seed creates the default admin account and a starter catalog on
// first run. Both are skipped when the collections already hold data, so
// running it on every start is safe.
package seed

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/abuind/ASIA-Mart-1/internal/auth"
	"github.com/abuind/ASIA-Mart-1/internal/catalog"
	"github.com/abuind/ASIA-Mart-1/internal/entity"
	"github.com/abuind/ASIA-Mart-1/internal/storage"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Run seeds the admin and sample products when their collections are empty.
func Run(ctx context.Context, db *storage.Handle) error {
	if err := seedAdmin(ctx, db); err != nil {
		return err
	}
	return seedProducts(ctx, db)
}

func seedAdmin(ctx context.Context, db *storage.Handle) error {
	admins, err := db.Admins.GetAll(ctx)
	if err != nil {
		return err
	}
	if len(admins) > 0 {
		return nil
	}
	_, err = db.Admins.Add(ctx, &entity.Admin{
		Username:  "admin",
		Password:  auth.HashPassword("admin123"),
		Role:      "admin",
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	logger.Info().Msg("Seeded default admin account")
	return nil
}

func seedProducts(ctx context.Context, db *storage.Handle) error {
	products, err := db.Products.GetAll(ctx)
	if err != nil {
		return err
	}
	if len(products) > 0 {
		return nil
	}

	cat := catalog.NewService(db)
	for _, p := range sampleProducts() {
		if _, err := cat.CreateProduct(ctx, p); err != nil {
			return err
		}
	}
	logger.Info().Msgf("Seeded %d sample products", len(sampleProducts()))
	return nil
}

func sampleProducts() []*entity.Product {
	price := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }
	return []*entity.Product{
		{
			Name:        "Lavender Homemade Soap",
			Category:    entity.CategoryCosmetics,
			SKU:         "SOAP-LAV-001",
			Price:       price("8.99"),
			Stock:       50,
			Image:       "https://via.placeholder.com/300x300?text=Lavender+Soap",
			Description: "Handmade lavender soap with natural ingredients, perfect for sensitive skin.",
		},
		{
			Name:        "Rose Petal Soap",
			Category:    entity.CategoryCosmetics,
			SKU:         "SOAP-ROS-002",
			Price:       price("9.99"),
			Stock:       45,
			Image:       "https://via.placeholder.com/300x300?text=Rose+Soap",
			Description: "Delicate rose petal handmade soap with moisturizing properties.",
		},
		{
			Name:        "Honey & Oatmeal Soap",
			Category:    entity.CategoryCosmetics,
			SKU:         "SOAP-HON-003",
			Price:       price("7.99"),
			Stock:       60,
			Image:       "https://via.placeholder.com/300x300?text=Honey+Soap",
			Description: "Nourishing honey and oatmeal soap for dry skin.",
		},
		{
			Name:        "Shikkakai Powder - 500g",
			Category:    entity.CategoryCosmetics,
			SKU:         "SHIK-500-001",
			Price:       price("12.99"),
			Stock:       30,
			Image:       "https://via.placeholder.com/300x300?text=Shikkakai+Powder",
			Description: "Pure Shikkakai powder for natural hair care.",
		},
		{
			Name:        "Organic Turmeric Powder",
			Category:    entity.CategoryGroceries,
			SKU:         "GROC-TUR-001",
			Price:       price("6.99"),
			Stock:       100,
			Image:       "https://via.placeholder.com/300x300?text=Turmeric",
			Description: "Premium organic turmeric powder, rich in curcumin.",
		},
		{
			Name:        "Organic Cumin Seeds",
			Category:    entity.CategoryGroceries,
			SKU:         "GROC-CUM-002",
			Price:       price("5.99"),
			Stock:       80,
			Image:       "https://via.placeholder.com/300x300?text=Cumin",
			Description: "High-quality organic cumin seeds, whole and aromatic.",
		},
		{
			Name:        "Organic Red Lentils",
			Category:    entity.CategoryGroceries,
			SKU:         "GROC-LEN-003",
			Price:       price("4.99"),
			Stock:       120,
			Image:       "https://via.placeholder.com/300x300?text=Lentils",
			Description: "Premium organic red lentils, rich in protein and fiber.",
		},
		{
			Name:        "Organic Basmati Rice - 2kg",
			Category:    entity.CategoryGroceries,
			SKU:         "GROC-RIC-004",
			Price:       price("15.99"),
			Stock:       70,
			Image:       "https://via.placeholder.com/300x300?text=Basmati+Rice",
			Description: "Premium long-grain basmati rice, aged for superior flavor.",
		},
	}
}
