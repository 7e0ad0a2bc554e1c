package report

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abuind/ASIA-Mart-1/internal/entity"
	"github.com/abuind/ASIA-Mart-1/internal/storage"
)

var anchor = time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*storage.Handle, *Service) {
	t.Helper()
	db := storage.OpenMemory()
	svc := NewService(db)
	svc.now = func() time.Time { return anchor }
	return db, svc
}

func seedOrder(t *testing.T, db *storage.Handle, o *entity.Order) {
	t.Helper()
	if o.Status == "" {
		o.Status = entity.StatusPending
	}
	_, err := db.Orders.Add(context.Background(), o)
	require.NoError(t, err)
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestRangeBounds(t *testing.T) {
	start, end, ok := RangeToday.Bounds(anchor)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, anchor, end)

	start, _, ok = RangeWeek.Bounds(anchor)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 8, 8, 0, 0, 0, 0, time.UTC), start)

	start, _, ok = RangeMonth.Bounds(anchor)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC), start)

	_, _, ok = RangeAll.Bounds(anchor)
	assert.False(t, ok)
	_, _, ok = Range("bogus").Bounds(anchor)
	assert.False(t, ok)
}

// TestDashboard verifies that revenue only counts paid orders while the
// order count includes everything.
func TestDashboard(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()

	seedOrder(t, db, &entity.Order{Total: money("10.00"), PaymentStatus: entity.PaymentPaid, CreatedAt: anchor.Add(-time.Hour)})
	seedOrder(t, db, &entity.Order{Total: money("99.00"), PaymentStatus: entity.PaymentPending, CreatedAt: anchor.Add(-2 * time.Hour)})
	seedOrder(t, db, &entity.Order{Total: money("5.50"), PaymentStatus: entity.PaymentPaid, CreatedAt: anchor.Add(-3 * time.Hour)})

	_, err := db.Customers.Add(ctx, &entity.Customer{Email: "alice@example.com"})
	require.NoError(t, err)
	_, err = db.Products.Add(ctx, &entity.Product{Name: "Soap", Stock: 3})
	require.NoError(t, err)
	_, err = db.Products.Add(ctx, &entity.Product{Name: "Rice", Stock: 100})
	require.NoError(t, err)

	d, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.True(t, d.TotalRevenue.Equal(money("15.50")), "got revenue %s", d.TotalRevenue)
	assert.Equal(t, 3, d.OrderCount)
	assert.Equal(t, 1, d.CustomerCount)
	assert.Equal(t, 2, d.ProductCount)
	assert.Equal(t, 1, d.LowStockCount)
	require.NotEmpty(t, d.RecentOrders)
	assert.True(t, d.RecentOrders[0].Total.Equal(money("10.00")), "recent orders are newest first")
}

func TestSalesByDate(t *testing.T) {
	db, svc := newTestService(t)

	day1 := time.Date(2026, 8, 13, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 14, 9, 0, 0, 0, time.UTC)
	seedOrder(t, db, &entity.Order{Total: money("10.00"), PaymentStatus: entity.PaymentPaid, CreatedAt: day1})
	seedOrder(t, db, &entity.Order{Total: money("7.00"), PaymentStatus: entity.PaymentPaid, CreatedAt: day1.Add(time.Hour)})
	seedOrder(t, db, &entity.Order{Total: money("20.00"), PaymentStatus: entity.PaymentPaid, CreatedAt: day2})
	// Unpaid and out-of-range orders are excluded.
	seedOrder(t, db, &entity.Order{Total: money("99.00"), PaymentStatus: entity.PaymentPending, CreatedAt: day2})
	seedOrder(t, db, &entity.Order{Total: money("99.00"), PaymentStatus: entity.PaymentPaid, CreatedAt: anchor.AddDate(0, 0, -30)})

	points, err := svc.SalesByDate(context.Background(), RangeWeek)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "2026-08-13", points[0].Date)
	assert.True(t, points[0].Revenue.Equal(money("17.00")))
	assert.Equal(t, "2026-08-14", points[1].Date)
	assert.True(t, points[1].Revenue.Equal(money("20.00")))
}

func TestTopProducts(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()

	soap, err := db.Products.Add(ctx, &entity.Product{Name: "Soap", Category: entity.CategoryCosmetics})
	require.NoError(t, err)
	rice, err := db.Products.Add(ctx, &entity.Product{Name: "Rice", Category: entity.CategoryGroceries})
	require.NoError(t, err)

	seedOrder(t, db, &entity.Order{
		PaymentStatus: entity.PaymentPaid,
		CreatedAt:     anchor.Add(-time.Hour),
		Items: []entity.OrderItem{
			{ProductID: soap, Name: "Soap", Price: money("8.99"), Quantity: 2},
			{ProductID: rice, Name: "Rice", Price: money("5.00"), Quantity: 1},
		},
	})
	seedOrder(t, db, &entity.Order{
		PaymentStatus: entity.PaymentPaid,
		CreatedAt:     anchor.Add(-2 * time.Hour),
		Items: []entity.OrderItem{
			{ProductID: rice, Name: "Rice", Price: money("5.00"), Quantity: 10},
		},
	})

	ranked, err := svc.TopProducts(ctx, RangeAll, 5)
	require.NoError(t, err)
	require.Len(t, ranked, 2)

	assert.Equal(t, "Rice", ranked[0].Name)
	assert.Equal(t, 11, ranked[0].Quantity)
	assert.True(t, ranked[0].Revenue.Equal(money("55.00")))
	assert.Equal(t, "Soap", ranked[1].Name)
	assert.True(t, ranked[1].Revenue.Equal(money("17.98")))

	one, err := svc.TopProducts(ctx, RangeAll, 1)
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "Rice", one[0].Name)
}

func TestSalesByCategory(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()

	soap, err := db.Products.Add(ctx, &entity.Product{Name: "Soap", Category: entity.CategoryCosmetics})
	require.NoError(t, err)

	seedOrder(t, db, &entity.Order{
		PaymentStatus: entity.PaymentPaid,
		CreatedAt:     anchor.Add(-time.Hour),
		Items: []entity.OrderItem{
			{ProductID: soap, Price: money("8.99"), Quantity: 2},
			{ProductID: 999, Price: money("5.00"), Quantity: 1}, // deleted product
		},
	})

	sales, err := svc.SalesByCategory(ctx, RangeAll)
	require.NoError(t, err)
	require.Len(t, sales, 1, "items without a product are skipped")
	assert.Equal(t, entity.CategoryCosmetics, sales[0].Category)
	assert.True(t, sales[0].Revenue.Equal(money("17.98")))
}

// TestStatusCounts verifies that the status breakdown covers all orders,
// paid or not.
func TestStatusCounts(t *testing.T) {
	db, svc := newTestService(t)

	seedOrder(t, db, &entity.Order{Status: entity.StatusPending, PaymentStatus: entity.PaymentPending, CreatedAt: anchor.Add(-time.Hour)})
	seedOrder(t, db, &entity.Order{Status: entity.StatusPending, PaymentStatus: entity.PaymentPaid, CreatedAt: anchor.Add(-time.Hour)})
	seedOrder(t, db, &entity.Order{Status: entity.StatusShipped, PaymentStatus: entity.PaymentPaid, CreatedAt: anchor.Add(-time.Hour)})

	counts, err := svc.StatusCounts(context.Background(), RangeAll)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, StatusCount{Status: entity.StatusPending, Count: 2}, counts[0])
	assert.Equal(t, StatusCount{Status: entity.StatusShipped, Count: 1}, counts[1])
}

func TestSalesReport(t *testing.T) {
	db, svc := newTestService(t)

	day := time.Date(2026, 8, 14, 9, 0, 0, 0, time.UTC)
	seedOrder(t, db, &entity.Order{
		Total:         money("22.98"),
		PaymentStatus: entity.PaymentPaid,
		CreatedAt:     day,
		Items: []entity.OrderItem{
			{ProductID: 1, Price: money("8.99"), Quantity: 2},
			{ProductID: 2, Price: money("5.00"), Quantity: 1},
		},
	})
	seedOrder(t, db, &entity.Order{
		Total:         money("5.00"),
		PaymentStatus: entity.PaymentPaid,
		CreatedAt:     day.Add(time.Hour),
		Items: []entity.OrderItem{
			{ProductID: 2, Price: money("5.00"), Quantity: 1},
		},
	})

	rows, err := svc.SalesReport(context.Background(), RangeWeek)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2026-08-14", rows[0].Date)
	assert.Equal(t, 2, rows[0].Orders)
	assert.Equal(t, 4, rows[0].ItemsSold)
	assert.True(t, rows[0].Revenue.Equal(money("27.98")))
}
