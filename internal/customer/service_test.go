package customer

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abuind/ASIA-Mart-1/internal/entity"
	"github.com/abuind/ASIA-Mart-1/internal/storage"
	"github.com/abuind/ASIA-Mart-1/internal/store"
)

func seedCustomers(t *testing.T, db *storage.Handle) (alice, bob int64) {
	t.Helper()
	ctx := context.Background()

	alice, err := db.Customers.Add(ctx, &entity.Customer{
		Name:  "Alice",
		Email: "alice@example.com",
		Phone: "555-0101",
	})
	require.NoError(t, err)
	bob, err = db.Customers.Add(ctx, &entity.Customer{
		Name:  "Bob",
		Email: "bob@example.com",
		Phone: "555-0202",
	})
	require.NoError(t, err)
	return alice, bob
}

func addOrder(t *testing.T, db *storage.Handle, customerID int64, total string, payment string, created time.Time) {
	t.Helper()
	_, err := db.Orders.Add(context.Background(), &entity.Order{
		CustomerID:    &customerID,
		Total:         decimal.RequireFromString(total),
		Status:        entity.StatusPending,
		PaymentStatus: payment,
		CreatedAt:     created,
	})
	require.NoError(t, err)
}

// TestListAggregates verifies that order counts include unpaid orders while
// totals only include paid ones, and that big spenders come first.
func TestListAggregates(t *testing.T) {
	db := storage.OpenMemory()
	svc := NewService(db)
	ctx := context.Background()

	alice, bob := seedCustomers(t, db)
	day := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	addOrder(t, db, alice, "10.00", entity.PaymentPaid, day)
	addOrder(t, db, alice, "99.00", entity.PaymentPending, day.Add(time.Hour))
	addOrder(t, db, bob, "50.00", entity.PaymentPaid, day)

	views, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.Equal(t, "Bob", views[0].Name, "sorted by total spent")
	assert.True(t, views[0].TotalSpent.Equal(decimal.RequireFromString("50.00")))
	assert.Equal(t, 1, views[0].OrderCount)

	assert.Equal(t, "Alice", views[1].Name)
	assert.True(t, views[1].TotalSpent.Equal(decimal.RequireFromString("10.00")))
	assert.Equal(t, 2, views[1].OrderCount)
}

func TestViewOmitsPassword(t *testing.T) {
	db := storage.OpenMemory()
	svc := NewService(db)
	ctx := context.Background()

	_, err := db.Customers.Add(ctx, &entity.Customer{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "17862",
	})
	require.NoError(t, err)

	views, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1)
	// View has no password field at all; spot-check the visible ones.
	assert.Equal(t, "Alice", views[0].Name)
	assert.Equal(t, "alice@example.com", views[0].Email)
}

func TestSearch(t *testing.T) {
	db := storage.OpenMemory()
	svc := NewService(db)
	ctx := context.Background()

	seedCustomers(t, db)

	byName, err := svc.Search(ctx, "ALICE")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "Alice", byName[0].Name)

	byPhone, err := svc.Search(ctx, "555-0202")
	require.NoError(t, err)
	require.Len(t, byPhone, 1)
	assert.Equal(t, "Bob", byPhone[0].Name)

	all, err := svc.Search(ctx, "  ")
	require.NoError(t, err)
	assert.Len(t, all, 2, "blank query returns everyone")

	none, err := svc.Search(ctx, "zebra")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGet(t *testing.T) {
	db := storage.OpenMemory()
	svc := NewService(db)
	ctx := context.Background()

	alice, bob := seedCustomers(t, db)
	day := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	addOrder(t, db, alice, "10.00", entity.PaymentPaid, day)
	addOrder(t, db, alice, "25.00", entity.PaymentPaid, day.Add(time.Hour))
	addOrder(t, db, bob, "50.00", entity.PaymentPaid, day)

	details, err := svc.Get(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "Alice", details.Name)
	assert.Equal(t, 2, details.OrderCount)
	assert.True(t, details.TotalSpent.Equal(decimal.RequireFromString("35.00")))
	require.Len(t, details.Orders, 2)
	assert.True(t, details.Orders[0].CreatedAt.After(details.Orders[1].CreatedAt),
		"newest order first")

	_, err = svc.Get(ctx, 999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
