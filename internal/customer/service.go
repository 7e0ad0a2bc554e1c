// Package customer provides the admin-side read views over customer
// records. Order counts and totals are always derived from the orders
// collection at read time, never stored on the customer.
package customer

import (
	"context"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/abuind/ASIA-Mart-1/internal/entity"
	"github.com/abuind/ASIA-Mart-1/internal/storage"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// View is a customer with derived aggregates, minus the password hash.
type View struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Phone      string          `json:"phone"`
	Address    entity.Address  `json:"address"`
	CreatedAt  string          `json:"createdAt"`
	OrderCount int             `json:"orderCount"`
	TotalSpent decimal.Decimal `json:"totalSpent"`
}

// Details is the single-customer admin view with the full order history.
type Details struct {
	View
	Orders []*entity.Order `json:"orders"`
}

type Service struct {
	db *storage.Handle
}

func NewService(db *storage.Handle) *Service {
	return &Service{db: db}
}

// List returns every customer with aggregates, biggest spender first.
func (s *Service) List(ctx context.Context) ([]View, error) {
	customers, err := s.db.Customers.GetAll(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Error getting customers")
		return nil, err
	}
	orders, err := s.db.Orders.GetAll(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Error getting orders")
		return nil, err
	}

	views := make([]View, 0, len(customers))
	for _, c := range customers {
		view := newView(c)
		for _, o := range orders {
			if o.CustomerID == nil || *o.CustomerID != c.ID {
				continue
			}
			view.OrderCount++
			if o.PaymentStatus == entity.PaymentPaid {
				view.TotalSpent = view.TotalSpent.Add(o.Total)
			}
		}
		views = append(views, view)
	}
	sort.Slice(views, func(i, j int) bool {
		return views[i].TotalSpent.GreaterThan(views[j].TotalSpent)
	})
	return views, nil
}

// Search filters by name, email or phone substring, case-insensitively for
// the text fields.
func (s *Service) Search(ctx context.Context, query string) ([]View, error) {
	views, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return views, nil
	}
	var matched []View
	for _, v := range views {
		if strings.Contains(strings.ToLower(v.Name), q) ||
			strings.Contains(strings.ToLower(v.Email), q) ||
			strings.Contains(v.Phone, q) {
			matched = append(matched, v)
		}
	}
	return matched, nil
}

// Get returns one customer with aggregates and order history, newest order
// first.
func (s *Service) Get(ctx context.Context, id int64) (*Details, error) {
	c, err := s.db.Customers.Get(ctx, id)
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting customer %d", id)
		return nil, err
	}
	orders, err := s.db.Orders.GetByIndex(ctx, "customerId", id)
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting orders for customer %d", id)
		return nil, err
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})

	details := &Details{View: newView(c), Orders: orders}
	for _, o := range orders {
		details.OrderCount++
		if o.PaymentStatus == entity.PaymentPaid {
			details.TotalSpent = details.TotalSpent.Add(o.Total)
		}
	}
	return details, nil
}

func newView(c *entity.Customer) View {
	return View{
		ID:         c.ID,
		Name:       c.Name,
		Email:      c.Email,
		Phone:      c.Phone,
		Address:    c.Address,
		CreatedAt:  c.CreatedAt.UTC().Format(time.RFC3339),
		TotalSpent: decimal.Zero,
	}
}
