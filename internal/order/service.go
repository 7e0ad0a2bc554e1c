// Package order owns the order lifecycle: checkout assembly from cart
// contents, the admin-driven status flow, and the independent payment flag.
package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/abuind/ASIA-Mart-1/internal/cart"
	"github.com/abuind/ASIA-Mart-1/internal/catalog"
	"github.com/abuind/ASIA-Mart-1/internal/entity"
	"github.com/abuind/ASIA-Mart-1/internal/storage"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// ErrEmptyCart is returned by Place when the actor has nothing to buy.
var ErrEmptyCart = errors.New("cart is empty")

// CheckoutInput is what the checkout page collects beyond the cart itself.
type CheckoutInput struct {
	PaymentMethod   string         `json:"paymentMethod"`
	ShippingAddress entity.Address `json:"shippingAddress"`
}

// Filter narrows List. Zero values mean "no constraint".
type Filter struct {
	Status  string
	Payment string
	From    time.Time
	To      time.Time
}

type Service struct {
	db      *storage.Handle
	catalog *catalog.Service
	carts   *cart.Service
	writer  *kafka.Writer
}

// NewService builds the order service. A nil writer disables event
// publishing (used by tests).
func NewService(db *storage.Handle, cat *catalog.Service, carts *cart.Service, writer *kafka.Writer) *Service {
	return &Service{db: db, catalog: cat, carts: carts, writer: writer}
}

// Place converts the actor's cart into an order. Line items are frozen at
// the current product price; the cart is cleared and each line's stock is
// decremented (with the inventory mirror maintained). The writes commit
// independently, back to back; there is no cross-collection transaction.
func (s *Service) Place(ctx context.Context, actor cart.Actor, input CheckoutInput) (*entity.Order, error) {
	contents, err := s.carts.Items(ctx, actor)
	if err != nil {
		return nil, err
	}
	if len(contents.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	items := make([]entity.OrderItem, 0, len(contents.Lines))
	for _, line := range contents.Lines {
		if _, err := s.catalog.VerifyStock(ctx, line.ProductID, line.Quantity); err != nil {
			return nil, err
		}
		items = append(items, entity.OrderItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Price:     line.Price,
			Quantity:  line.Quantity,
		})
	}

	now := time.Now().UTC()
	order := &entity.Order{
		Number:          orderNumber(now),
		Items:           items,
		Total:           entity.ItemsTotal(items),
		Status:          entity.StatusPending,
		PaymentStatus:   entity.PaymentPending,
		PaymentMethod:   input.PaymentMethod,
		ShippingAddress: input.ShippingAddress,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if id, ok := actor.CustomerID(); ok {
		order.CustomerID = &id
	}

	if _, err := s.db.Orders.Add(ctx, order); err != nil {
		logger.Error().Err(err).Msg("Error creating order")
		return nil, err
	}

	for _, item := range items {
		if _, err := s.catalog.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			logger.Error().Err(err).Msgf("Error decrementing stock for product %d", item.ProductID)
			return nil, err
		}
	}
	if err := s.carts.Clear(ctx, actor); err != nil {
		return nil, err
	}

	if err := s.publish(ctx, order, "created"); err != nil {
		logger.Error().Err(err).Msgf("Error publishing created event for order %d", order.ID)
	}
	return order, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*entity.Order, error) {
	order, err := s.db.Orders.Get(ctx, id)
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting order %d", id)
		return nil, err
	}
	return order, nil
}

// List returns orders matching the filter, newest first.
func (s *Service) List(ctx context.Context, filter Filter) ([]*entity.Order, error) {
	orders, err := s.db.Orders.GetAll(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Error getting orders")
		return nil, err
	}

	var matched []*entity.Order
	for _, o := range orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.Payment != "" && o.PaymentStatus != filter.Payment {
			continue
		}
		if !filter.From.IsZero() && o.CreatedAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && o.CreatedAt.After(filter.To) {
			continue
		}
		matched = append(matched, o)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched, nil
}

// ForCustomer returns the customer's orders, newest first.
func (s *Service) ForCustomer(ctx context.Context, customerID int64) ([]*entity.Order, error) {
	orders, err := s.db.Orders.GetByIndex(ctx, "customerId", customerID)
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting orders for customer %d", customerID)
		return nil, err
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

// SetStatus moves the order to any status unconditionally; the flow favors
// operational flexibility over a strict transition graph. UpdatedAt is
// stamped on every call. Moving to Cancelled publishes a cancellation event
// so the stock consumer can restock the order's items.
func (s *Service) SetStatus(ctx context.Context, id int64, status string) (*entity.Order, error) {
	order, err := s.db.Orders.Get(ctx, id)
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting order %d", id)
		return nil, err
	}

	order.Status = status
	order.UpdatedAt = time.Now().UTC()
	if err := s.db.Orders.Update(ctx, order); err != nil {
		logger.Error().Err(err).Msgf("Error updating order %d", id)
		return nil, err
	}

	if status == entity.StatusCancelled {
		if err := s.publish(ctx, order, "cancelled"); err != nil {
			logger.Error().Err(err).Msgf("Error publishing cancelled event for order %d", id)
		}
	}
	return order, nil
}

// MarkPaid confirms payment. One-directional: there is no transition back to
// Pending and no refund flow.
func (s *Service) MarkPaid(ctx context.Context, id int64) (*entity.Order, error) {
	order, err := s.db.Orders.Get(ctx, id)
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting order %d", id)
		return nil, err
	}

	order.PaymentStatus = entity.PaymentPaid
	order.UpdatedAt = time.Now().UTC()
	if err := s.db.Orders.Update(ctx, order); err != nil {
		logger.Error().Err(err).Msgf("Error updating order %d", id)
		return nil, err
	}
	return order, nil
}

func (s *Service) publish(ctx context.Context, order *entity.Order, event string) error {
	if s.writer == nil {
		return nil
	}
	payload, err := json.Marshal(order)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("order-%s-%d", event, order.ID)),
		Value: payload,
	}
	return s.writer.WriteMessages(ctx, msg)
}

func orderNumber(now time.Time) string {
	suffix := strings.ToUpper(uuid.NewString()[:5])
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), suffix)
}
