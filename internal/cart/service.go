// Package cart manages per-actor line items. Every operation is scoped to
// one actor; lines belonging to other actors in the shared collection are
// never touched. Totals are computed at the CURRENT product price, unlike
// order line items which freeze the price at purchase time.
package cart

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/abuind/ASIA-Mart-1/internal/catalog"
	"github.com/abuind/ASIA-Mart-1/internal/entity"
	"github.com/abuind/ASIA-Mart-1/internal/storage"
	"github.com/abuind/ASIA-Mart-1/internal/store"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// ErrItemNotFound is returned when a cart line does not exist or belongs to
// a different actor.
var ErrItemNotFound = errors.New("cart item not found")

// Line is a cart row enriched with live product data.
type Line struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"productId"`
	Quantity  int             `json:"quantity"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Stock     int             `json:"stock"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type Cart struct {
	Lines []Line          `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

type Service struct {
	db      *storage.Handle
	catalog *catalog.Service
}

func NewService(db *storage.Handle, catalog *catalog.Service) *Service {
	return &Service{db: db, catalog: catalog}
}

// Items returns the actor's cart. Lines whose product no longer exists are
// dropped from the view.
func (s *Service) Items(ctx context.Context, actor Actor) (Cart, error) {
	items, err := s.db.Cart.GetByIndex(ctx, "owner", actor.Key())
	if err != nil {
		logger.Error().Err(err).Msg("Error getting cart items")
		return Cart{}, err
	}

	cart := Cart{Total: decimal.Zero}
	for _, item := range items {
		product, err := s.db.Products.Get(ctx, item.ProductID)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			logger.Error().Err(err).Msgf("Error getting product %d", item.ProductID)
			return Cart{}, err
		}
		subtotal := product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		cart.Lines = append(cart.Lines, Line{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Name:      product.Name,
			Price:     product.Price,
			Image:     product.Image,
			Stock:     product.Stock,
			Subtotal:  subtotal,
		})
		cart.Total = cart.Total.Add(subtotal)
	}
	return cart, nil
}

// Add puts quantity items of the product into the actor's cart, merging into
// an existing line when present. Stock is validated for the cumulative
// quantity (existing line + requested).
func (s *Service) Add(ctx context.Context, actor Actor, productID int64, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("quantity must be positive")
	}

	existing, err := s.line(ctx, actor, productID)
	if err != nil && !errors.Is(err, ErrItemNotFound) {
		return err
	}

	total := quantity
	if existing != nil {
		total += existing.Quantity
	}
	if _, err := s.catalog.VerifyStock(ctx, productID, total); err != nil {
		return err
	}

	if existing != nil {
		existing.Quantity = total
		if err := s.db.Cart.Update(ctx, existing); err != nil {
			logger.Error().Err(err).Msgf("Error updating cart line for product %d", productID)
			return err
		}
		return nil
	}

	_, err = s.db.Cart.Add(ctx, &entity.CartItem{
		ProductID: productID,
		Quantity:  quantity,
		Owner:     actor.Key(),
	})
	if err != nil {
		logger.Error().Err(err).Msgf("Error adding product %d to cart", productID)
	}
	return err
}

// UpdateQuantity sets the absolute quantity of a line. A quantity of zero or
// less removes the line.
func (s *Service) UpdateQuantity(ctx context.Context, actor Actor, itemID int64, quantity int) error {
	if quantity <= 0 {
		return s.Remove(ctx, actor, itemID)
	}

	item, err := s.owned(ctx, actor, itemID)
	if err != nil {
		return err
	}
	if _, err := s.catalog.VerifyStock(ctx, item.ProductID, quantity); err != nil {
		return err
	}

	item.Quantity = quantity
	if err := s.db.Cart.Update(ctx, item); err != nil {
		logger.Error().Err(err).Msgf("Error updating cart item %d", itemID)
		return err
	}
	return nil
}

// Remove deletes one of the actor's lines.
func (s *Service) Remove(ctx context.Context, actor Actor, itemID int64) error {
	if _, err := s.owned(ctx, actor, itemID); err != nil {
		return err
	}
	if err := s.db.Cart.Delete(ctx, itemID); err != nil {
		logger.Error().Err(err).Msgf("Error removing cart item %d", itemID)
		return err
	}
	return nil
}

// Clear deletes every line belonging to the actor and nothing else.
func (s *Service) Clear(ctx context.Context, actor Actor) error {
	items, err := s.db.Cart.GetByIndex(ctx, "owner", actor.Key())
	if err != nil {
		logger.Error().Err(err).Msg("Error getting cart items")
		return err
	}
	for _, item := range items {
		if err := s.db.Cart.Delete(ctx, item.ID); err != nil {
			logger.Error().Err(err).Msgf("Error removing cart item %d", item.ID)
			return err
		}
	}
	return nil
}

// Count returns the total quantity across the actor's lines.
func (s *Service) Count(ctx context.Context, actor Actor) (int, error) {
	cart, err := s.Items(ctx, actor)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, line := range cart.Lines {
		count += line.Quantity
	}
	return count, nil
}

func (s *Service) line(ctx context.Context, actor Actor, productID int64) (*entity.CartItem, error) {
	items, err := s.db.Cart.GetByIndex(ctx, "owner", actor.Key())
	if err != nil {
		logger.Error().Err(err).Msg("Error getting cart items")
		return nil, err
	}
	for _, item := range items {
		if item.ProductID == productID {
			return item, nil
		}
	}
	return nil, ErrItemNotFound
}

func (s *Service) owned(ctx context.Context, actor Actor, itemID int64) (*entity.CartItem, error) {
	item, err := s.db.Cart.Get(ctx, itemID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting cart item %d", itemID)
		return nil, err
	}
	if item.Owner != actor.Key() {
		return nil, ErrItemNotFound
	}
	return item, nil
}
