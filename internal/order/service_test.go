package order

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abuind/ASIA-Mart-1/internal/cart"
	"github.com/abuind/ASIA-Mart-1/internal/catalog"
	"github.com/abuind/ASIA-Mart-1/internal/entity"
	"github.com/abuind/ASIA-Mart-1/internal/storage"
)

type fixture struct {
	db     *storage.Handle
	cat    *catalog.Service
	carts  *cart.Service
	orders *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := storage.OpenMemory()
	cat := catalog.NewService(db)
	carts := cart.NewService(db, cat)
	return &fixture{
		db:     db,
		cat:    cat,
		carts:  carts,
		orders: NewService(db, cat, carts, nil),
	}
}

func (f *fixture) product(t *testing.T, name, price string, stock int) int64 {
	t.Helper()
	id, err := f.cat.CreateProduct(context.Background(), &entity.Product{
		Name:     name,
		Category: entity.CategoryGroceries,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
	})
	require.NoError(t, err)
	return id
}

func TestPlace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor := cart.ForCustomer(1)

	soap := f.product(t, "Soap", "8.99", 50)
	rice := f.product(t, "Rice", "5.00", 20)
	require.NoError(t, f.carts.Add(ctx, actor, soap, 2))
	require.NoError(t, f.carts.Add(ctx, actor, rice, 1))

	order, err := f.orders.Place(ctx, actor, CheckoutInput{
		PaymentMethod: "card",
		ShippingAddress: entity.Address{
			Street: "1 Main St", City: "Springfield", State: "IL", Zip: "62701",
		},
	})
	require.NoError(t, err)

	assert.True(t, order.Total.Equal(decimal.RequireFromString("22.98")),
		"got total %s", order.Total)
	assert.Equal(t, entity.StatusPending, order.Status)
	assert.Equal(t, entity.PaymentPending, order.PaymentStatus)
	assert.True(t, strings.HasPrefix(order.Number, "ORD-"), "got number %s", order.Number)
	require.NotNil(t, order.CustomerID)
	assert.Equal(t, int64(1), *order.CustomerID)
	require.Len(t, order.Items, 2)

	// Stock is decremented per line and the cart is cleared.
	product, err := f.cat.Product(ctx, soap)
	require.NoError(t, err)
	assert.Equal(t, 48, product.Stock)
	product, err = f.cat.Product(ctx, rice)
	require.NoError(t, err)
	assert.Equal(t, 19, product.Stock)

	count, err := f.carts.Count(ctx, actor)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestPlaceEmptyCart(t *testing.T) {
	f := newFixture(t)

	_, err := f.orders.Place(context.Background(), cart.ForGuest("guest_a"), CheckoutInput{})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestPlaceGuestOrderHasNoCustomer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor := cart.ForGuest("guest_a")

	soap := f.product(t, "Soap", "8.99", 50)
	require.NoError(t, f.carts.Add(ctx, actor, soap, 1))

	order, err := f.orders.Place(ctx, actor, CheckoutInput{PaymentMethod: "cod"})
	require.NoError(t, err)
	assert.Nil(t, order.CustomerID)
}

// TestPlaceFreezesPrices verifies that order line items keep the price paid
// even after the catalog price changes.
func TestPlaceFreezesPrices(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor := cart.ForCustomer(1)

	soap := f.product(t, "Soap", "8.99", 50)
	require.NoError(t, f.carts.Add(ctx, actor, soap, 1))

	placed, err := f.orders.Place(ctx, actor, CheckoutInput{})
	require.NoError(t, err)

	product, err := f.cat.Product(ctx, soap)
	require.NoError(t, err)
	product.Price = decimal.RequireFromString("99.00")
	require.NoError(t, f.cat.UpdateProduct(ctx, product))

	got, err := f.orders.Get(ctx, placed.ID)
	require.NoError(t, err)
	assert.True(t, got.Items[0].Price.Equal(decimal.RequireFromString("8.99")))
	assert.True(t, got.Total.Equal(decimal.RequireFromString("8.99")))
}

func TestPlaceRejectsStaleCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor := cart.ForCustomer(1)

	soap := f.product(t, "Soap", "8.99", 5)
	require.NoError(t, f.carts.Add(ctx, actor, soap, 5))

	// Stock drops after the items went into the cart.
	require.NoError(t, f.cat.SetStock(ctx, soap, 2))

	_, err := f.orders.Place(ctx, actor, CheckoutInput{})
	var insufficient *catalog.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 2, insufficient.Available)
}

func TestSetStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor := cart.ForCustomer(1)

	soap := f.product(t, "Soap", "8.99", 50)
	require.NoError(t, f.carts.Add(ctx, actor, soap, 1))
	placed, err := f.orders.Place(ctx, actor, CheckoutInput{})
	require.NoError(t, err)

	// Any transition goes, including skipping straight to Shipped and
	// back to Pending.
	for _, status := range []string{
		entity.StatusShipped,
		entity.StatusPending,
		entity.StatusCancelled,
	} {
		updated, err := f.orders.SetStatus(ctx, placed.ID, status)
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)
		assert.False(t, updated.UpdatedAt.Before(placed.UpdatedAt))
	}
}

func TestMarkPaid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor := cart.ForCustomer(1)

	soap := f.product(t, "Soap", "8.99", 50)
	require.NoError(t, f.carts.Add(ctx, actor, soap, 1))
	placed, err := f.orders.Place(ctx, actor, CheckoutInput{})
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentPending, placed.PaymentStatus)

	paid, err := f.orders.MarkPaid(ctx, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentPaid, paid.PaymentStatus)
	assert.Equal(t, entity.StatusPending, paid.Status, "payment does not move the status")
}

func TestListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	old := &entity.Order{
		Number:        "ORD-1",
		Status:        entity.StatusDelivered,
		PaymentStatus: entity.PaymentPaid,
		Total:         decimal.RequireFromString("10.00"),
		CreatedAt:     time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC),
	}
	recent := &entity.Order{
		Number:        "ORD-2",
		Status:        entity.StatusPending,
		PaymentStatus: entity.PaymentPending,
		Total:         decimal.RequireFromString("20.00"),
		CreatedAt:     time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	for _, o := range []*entity.Order{old, recent} {
		_, err := f.db.Orders.Add(ctx, o)
		require.NoError(t, err)
	}

	all, err := f.orders.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "ORD-2", all[0].Number, "newest first")

	delivered, err := f.orders.List(ctx, Filter{Status: entity.StatusDelivered})
	require.NoError(t, err)
	require.Len(t, delivered, 1)
	assert.Equal(t, "ORD-1", delivered[0].Number)

	unpaid, err := f.orders.List(ctx, Filter{Payment: entity.PaymentPending})
	require.NoError(t, err)
	require.Len(t, unpaid, 1)
	assert.Equal(t, "ORD-2", unpaid[0].Number)

	windowed, err := f.orders.List(ctx, Filter{
		From: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, windowed, 1)
	assert.Equal(t, "ORD-2", windowed[0].Number)
}

func TestForCustomer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mine := int64(1)
	other := int64(2)
	for _, o := range []*entity.Order{
		{Number: "ORD-1", CustomerID: &mine, CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Number: "ORD-2", CustomerID: &other, CreatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
		{Number: "ORD-3", CustomerID: &mine, CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{Number: "ORD-4", CreatedAt: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)}, // guest
	} {
		_, err := f.db.Orders.Add(ctx, o)
		require.NoError(t, err)
	}

	orders, err := f.orders.ForCustomer(ctx, mine)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "ORD-3", orders[0].Number, "newest first")
	assert.Equal(t, "ORD-1", orders[1].Number)
}

func TestItemsTotal(t *testing.T) {
	items := []entity.OrderItem{
		{Price: decimal.RequireFromString("8.99"), Quantity: 2},
		{Price: decimal.RequireFromString("5.00"), Quantity: 1},
	}
	assert.True(t, entity.ItemsTotal(items).Equal(decimal.RequireFromString("22.98")))
	assert.True(t, entity.ItemsTotal(nil).Equal(decimal.Zero))
}
