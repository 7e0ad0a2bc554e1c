// Package catalog exposes product reads and every stock-affecting write.
// Stock mutations keep the inventory mirror in step: whenever Product.Stock
// changes, the matching InventoryRecord.Quantity is written too, created on
// the spot if it does not exist yet.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/abuind/ASIA-Mart-1/internal/entity"
	"github.com/abuind/ASIA-Mart-1/internal/storage"
	"github.com/abuind/ASIA-Mart-1/internal/store"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// InsufficientStockError reports a stock check that failed because fewer
// items are available than requested.
type InsufficientStockError struct {
	ProductID int64
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("only %d items available", e.Available)
}

// StockCheck is the outcome of CheckStock. When Available is false, Message
// explains why in user-facing terms.
type StockCheck struct {
	Available bool   `json:"available"`
	Stock     int    `json:"stock"`
	Message   string `json:"message,omitempty"`
}

type Service struct {
	db *storage.Handle
}

func NewService(db *storage.Handle) *Service {
	return &Service{db: db}
}

// Products returns the whole catalog, unordered.
func (s *Service) Products(ctx context.Context) ([]*entity.Product, error) {
	products, err := s.db.Products.GetAll(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Error getting products")
		return nil, err
	}
	return products, nil
}

func (s *Service) Product(ctx context.Context, id int64) (*entity.Product, error) {
	product, err := s.db.Products.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logger.Error().Err(err).Msgf("Error getting product %d", id)
		}
		return nil, err
	}
	return product, nil
}

func (s *Service) ByCategory(ctx context.Context, category string) ([]*entity.Product, error) {
	products, err := s.db.Products.GetByIndex(ctx, "category", category)
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting products in category %s", category)
		return nil, err
	}
	return products, nil
}

// Search returns every product whose name, description, category or SKU
// contains the query, case-insensitively. Results are unordered.
func (s *Service) Search(ctx context.Context, query string) ([]*entity.Product, error) {
	products, err := s.db.Products.GetAll(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Error searching products")
		return nil, err
	}
	q := strings.ToLower(query)
	var matches []*entity.Product
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q) ||
			strings.Contains(strings.ToLower(p.Category), q) ||
			strings.Contains(strings.ToLower(p.SKU), q) {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

// VerifyStock reports whether quantity items of the product can be taken.
// Returns store.ErrNotFound for an absent product and InsufficientStockError
// when fewer items are available; the returned count is the current stock.
func (s *Service) VerifyStock(ctx context.Context, productID int64, quantity int) (int, error) {
	product, err := s.db.Products.Get(ctx, productID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logger.Error().Err(err).Msgf("Error checking stock for product %d", productID)
		}
		return 0, err
	}
	if product.Stock < quantity {
		return product.Stock, &InsufficientStockError{
			ProductID: productID,
			Available: product.Stock,
			Requested: quantity,
		}
	}
	return product.Stock, nil
}

// CheckStock is VerifyStock folded into a user-facing result. It fails
// closed: an absent product or any storage error reads as unavailable.
func (s *Service) CheckStock(ctx context.Context, productID int64, quantity int) StockCheck {
	stock, err := s.VerifyStock(ctx, productID, quantity)
	switch {
	case err == nil:
		return StockCheck{Available: true, Stock: stock}
	case errors.Is(err, store.ErrNotFound):
		return StockCheck{Available: false, Message: "product not found"}
	default:
		var insufficient *InsufficientStockError
		if errors.As(err, &insufficient) {
			return StockCheck{Available: false, Stock: stock, Message: insufficient.Error()}
		}
		return StockCheck{Available: false, Message: "error checking stock"}
	}
}

// DecrementStock subtracts quantity from the product's stock, clamped at
// zero, and mirrors the result into inventory. Returns the new stock level.
func (s *Service) DecrementStock(ctx context.Context, productID int64, quantity int) (int, error) {
	product, err := s.db.Products.Get(ctx, productID)
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting product %d", productID)
		return 0, err
	}

	product.Stock -= quantity
	if product.Stock < 0 {
		product.Stock = 0
	}
	if err := s.db.Products.Update(ctx, product); err != nil {
		logger.Error().Err(err).Msgf("Error updating stock for product %d", productID)
		return 0, err
	}
	if err := s.SyncInventory(ctx, productID, product.Stock); err != nil {
		return 0, err
	}
	return product.Stock, nil
}

// SetStock writes an absolute stock level, following the same mirroring
// contract as DecrementStock.
func (s *Service) SetStock(ctx context.Context, productID int64, stock int) error {
	if stock < 0 {
		stock = 0
	}
	product, err := s.db.Products.Get(ctx, productID)
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting product %d", productID)
		return err
	}
	product.Stock = stock
	if err := s.db.Products.Update(ctx, product); err != nil {
		logger.Error().Err(err).Msgf("Error updating stock for product %d", productID)
		return err
	}
	return s.SyncInventory(ctx, productID, stock)
}

// SyncInventory writes the mirror record for a product, creating it when
// absent so the mirror can never silently drift out of existence.
func (s *Service) SyncInventory(ctx context.Context, productID int64, stock int) error {
	inv, err := s.db.Inventory.GetSingleByIndex(ctx, "productId", productID)
	if errors.Is(err, store.ErrNotFound) {
		_, err = s.db.Inventory.Add(ctx, &entity.InventoryRecord{
			ProductID:         productID,
			Quantity:          stock,
			LowStockThreshold: entity.DefaultLowStockThreshold,
			LastUpdated:       time.Now().UTC(),
		})
		if err != nil {
			logger.Error().Err(err).Msgf("Error creating inventory record for product %d", productID)
		}
		return err
	}
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting inventory record for product %d", productID)
		return err
	}

	inv.Quantity = stock
	inv.LastUpdated = time.Now().UTC()
	if err := s.db.Inventory.Update(ctx, inv); err != nil {
		logger.Error().Err(err).Msgf("Error updating inventory record for product %d", productID)
		return err
	}
	return nil
}

// CreateProduct adds the product and its inventory record.
func (s *Service) CreateProduct(ctx context.Context, product *entity.Product) (int64, error) {
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}
	id, err := s.db.Products.Add(ctx, product)
	if err != nil {
		logger.Error().Err(err).Msg("Error creating product")
		return 0, err
	}
	if err := s.SyncInventory(ctx, id, product.Stock); err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateProduct upserts the product, preserving CreatedAt, and re-syncs the
// mirror.
func (s *Service) UpdateProduct(ctx context.Context, product *entity.Product) error {
	existing, err := s.db.Products.Get(ctx, product.ID)
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting product %d", product.ID)
		return err
	}
	product.CreatedAt = existing.CreatedAt
	if err := s.db.Products.Update(ctx, product); err != nil {
		logger.Error().Err(err).Msgf("Error updating product %d", product.ID)
		return err
	}
	return s.SyncInventory(ctx, product.ID, product.Stock)
}

// DeleteProduct removes the product and its inventory record.
func (s *Service) DeleteProduct(ctx context.Context, productID int64) error {
	if err := s.db.Products.Delete(ctx, productID); err != nil {
		logger.Error().Err(err).Msgf("Error deleting product %d", productID)
		return err
	}
	inv, err := s.db.Inventory.GetSingleByIndex(ctx, "productId", productID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting inventory record for product %d", productID)
		return err
	}
	return s.db.Inventory.Delete(ctx, inv.ID)
}

// LowStock returns products at or below their inventory threshold.
func (s *Service) LowStock(ctx context.Context) ([]*entity.Product, error) {
	products, err := s.db.Products.GetAll(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Error getting products")
		return nil, err
	}
	var low []*entity.Product
	for _, p := range products {
		threshold := entity.DefaultLowStockThreshold
		inv, err := s.db.Inventory.GetSingleByIndex(ctx, "productId", p.ID)
		if err == nil {
			threshold = inv.LowStockThreshold
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		if p.Stock <= threshold {
			low = append(low, p)
		}
	}
	return low, nil
}
