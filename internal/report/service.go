// Package report aggregates orders and products for the admin dashboards.
// Pure read side: nothing in this package mutates the store.
package report

import (
	"context"
	"os"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/abuind/ASIA-Mart-1/internal/entity"
	"github.com/abuind/ASIA-Mart-1/internal/storage"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Range selects the reporting window, anchored at now.
type Range string

const (
	RangeToday Range = "today"
	RangeWeek  Range = "week"
	RangeMonth Range = "month"
	RangeYear  Range = "year"
	RangeAll   Range = "all"
)

// Bounds returns the window for the range. ok is false for RangeAll and
// unknown values, meaning no date constraint.
func (r Range) Bounds(now time.Time) (start, end time.Time, ok bool) {
	end = now
	switch r {
	case RangeToday:
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), end, true
	case RangeWeek:
		start = now.AddDate(0, 0, -7)
	case RangeMonth:
		start = now.AddDate(0, -1, 0)
	case RangeYear:
		start = now.AddDate(-1, 0, 0)
	default:
		return time.Time{}, time.Time{}, false
	}
	y, m, d := start.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), end, true
}

// Dashboard is the admin landing page summary.
type Dashboard struct {
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	OrderCount    int             `json:"orderCount"`
	CustomerCount int             `json:"customerCount"`
	ProductCount  int             `json:"productCount"`
	LowStockCount int             `json:"lowStockCount"`
	RecentOrders  []*entity.Order `json:"recentOrders"`
}

// DatePoint is one day's revenue.
type DatePoint struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
}

// ProductSales ranks one product's paid sales.
type ProductSales struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// CategorySales is paid revenue attributed to one product category.
type CategorySales struct {
	Category string          `json:"category"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// StatusCount is the number of orders currently in one status.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// ReportRow is one day of the sales report table.
type ReportRow struct {
	Date      string          `json:"date"`
	Orders    int             `json:"orders"`
	ItemsSold int             `json:"itemsSold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type Service struct {
	db  *storage.Handle
	now func() time.Time
}

func NewService(db *storage.Handle) *Service {
	return &Service{db: db, now: time.Now}
}

func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	orders, err := s.db.Orders.GetAll(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Error getting orders")
		return nil, err
	}
	customers, err := s.db.Customers.GetAll(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Error getting customers")
		return nil, err
	}
	products, err := s.db.Products.GetAll(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Error getting products")
		return nil, err
	}

	d := &Dashboard{
		TotalRevenue:  decimal.Zero,
		OrderCount:    len(orders),
		CustomerCount: len(customers),
		ProductCount:  len(products),
	}
	for _, o := range orders {
		if o.PaymentStatus == entity.PaymentPaid {
			d.TotalRevenue = d.TotalRevenue.Add(o.Total)
		}
	}
	for _, p := range products {
		if p.Stock <= entity.DefaultLowStockThreshold {
			d.LowStockCount++
		}
	}

	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	if len(orders) > 5 {
		orders = orders[:5]
	}
	d.RecentOrders = orders
	return d, nil
}

// SalesByDate groups paid revenue per day over the range, sorted by date.
func (s *Service) SalesByDate(ctx context.Context, r Range) ([]DatePoint, error) {
	orders, err := s.paidInRange(ctx, r)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]decimal.Decimal)
	for _, o := range orders {
		day := o.CreatedAt.UTC().Format("2006-01-02")
		byDate[day] = byDate[day].Add(o.Total)
	}

	points := make([]DatePoint, 0, len(byDate))
	for day, revenue := range byDate {
		points = append(points, DatePoint{Date: day, Revenue: revenue})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points, nil
}

// TopProducts ranks products by paid revenue over the range.
func (s *Service) TopProducts(ctx context.Context, r Range, limit int) ([]ProductSales, error) {
	orders, err := s.paidInRange(ctx, r)
	if err != nil {
		return nil, err
	}
	products, err := s.db.Products.GetAll(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Error getting products")
		return nil, err
	}
	names := make(map[int64]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}

	sales := make(map[int64]*ProductSales)
	for _, o := range orders {
		for _, item := range o.Items {
			ps := sales[item.ProductID]
			if ps == nil {
				name := names[item.ProductID]
				if name == "" {
					name = "Unknown"
				}
				ps = &ProductSales{ProductID: item.ProductID, Name: name, Revenue: decimal.Zero}
				sales[item.ProductID] = ps
			}
			ps.Quantity += item.Quantity
			ps.Revenue = ps.Revenue.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}

	ranked := make([]ProductSales, 0, len(sales))
	for _, ps := range sales {
		ranked = append(ranked, *ps)
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].Revenue.GreaterThan(ranked[j].Revenue) })
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// SalesByCategory attributes paid revenue to product categories. Items whose
// product no longer exists are skipped.
func (s *Service) SalesByCategory(ctx context.Context, r Range) ([]CategorySales, error) {
	orders, err := s.paidInRange(ctx, r)
	if err != nil {
		return nil, err
	}
	products, err := s.db.Products.GetAll(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Error getting products")
		return nil, err
	}
	categories := make(map[int64]string, len(products))
	for _, p := range products {
		categories[p.ID] = p.Category
	}

	byCategory := make(map[string]decimal.Decimal)
	for _, o := range orders {
		for _, item := range o.Items {
			category, ok := categories[item.ProductID]
			if !ok {
				continue
			}
			revenue := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
			byCategory[category] = byCategory[category].Add(revenue)
		}
	}

	result := make([]CategorySales, 0, len(byCategory))
	for category, revenue := range byCategory {
		result = append(result, CategorySales{Category: category, Revenue: revenue})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Category < result[j].Category })
	return result, nil
}

// StatusCounts counts orders per status over the range. Unlike the revenue
// reports this looks at all orders, paid or not.
func (s *Service) StatusCounts(ctx context.Context, r Range) ([]StatusCount, error) {
	orders, err := s.db.Orders.GetAll(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Error getting orders")
		return nil, err
	}
	orders = s.inRange(orders, r)

	counts := make(map[string]int)
	for _, o := range orders {
		counts[o.Status]++
	}
	result := make([]StatusCount, 0, len(counts))
	for status, n := range counts {
		result = append(result, StatusCount{Status: status, Count: n})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Status < result[j].Status })
	return result, nil
}

// SalesReport builds the per-day report table over paid orders.
func (s *Service) SalesReport(ctx context.Context, r Range) ([]ReportRow, error) {
	orders, err := s.paidInRange(ctx, r)
	if err != nil {
		return nil, err
	}

	rows := make(map[string]*ReportRow)
	for _, o := range orders {
		day := o.CreatedAt.UTC().Format("2006-01-02")
		row := rows[day]
		if row == nil {
			row = &ReportRow{Date: day, Revenue: decimal.Zero}
			rows[day] = row
		}
		row.Orders++
		for _, item := range o.Items {
			row.ItemsSold += item.Quantity
		}
		row.Revenue = row.Revenue.Add(o.Total)
	}

	result := make([]ReportRow, 0, len(rows))
	for _, row := range rows {
		result = append(result, *row)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date < result[j].Date })
	return result, nil
}

func (s *Service) paidInRange(ctx context.Context, r Range) ([]*entity.Order, error) {
	orders, err := s.db.Orders.GetAll(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Error getting orders")
		return nil, err
	}
	var paid []*entity.Order
	for _, o := range orders {
		if o.PaymentStatus == entity.PaymentPaid {
			paid = append(paid, o)
		}
	}
	return s.inRange(paid, r), nil
}

func (s *Service) inRange(orders []*entity.Order, r Range) []*entity.Order {
	start, end, ok := r.Bounds(s.now())
	if !ok {
		return orders
	}
	var matched []*entity.Order
	for _, o := range orders {
		if o.CreatedAt.Before(start) || o.CreatedAt.After(end) {
			continue
		}
		matched = append(matched, o)
	}
	return matched
}
