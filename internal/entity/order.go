package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses. Transitions are admin-driven and deliberately unrestricted:
// any status may be set from any other.
const (
	StatusPending    = "Pending"
	StatusProcessing = "Processing"
	StatusShipped    = "Shipped"
	StatusDelivered  = "Delivered"
	StatusCancelled  = "Cancelled"
)

// Payment statuses. One-directional: Pending -> Paid, no refund transition.
const (
	PaymentPending = "Pending"
	PaymentPaid    = "Paid"
)

type Address struct {
	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
	Email  string `json:"email,omitempty"`
	Phone  string `json:"phone,omitempty"`
}

// OrderItem is a frozen snapshot of a product at purchase time, never a live
// reference. Price changes after checkout do not touch existing orders.
type OrderItem struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

type Order struct {
	ID              int64           `json:"id"`
	Number          string          `json:"number"`
	CustomerID      *int64          `json:"customerId"` // nil for guest orders
	Items           []OrderItem     `json:"items"`
	Total           decimal.Decimal `json:"total"`
	Status          string          `json:"status"`
	PaymentStatus   string          `json:"paymentStatus"`
	PaymentMethod   string          `json:"paymentMethod"`
	ShippingAddress Address         `json:"shippingAddress"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func (o *Order) Key() int64      { return o.ID }
func (o *Order) SetKey(id int64) { o.ID = id }

// ItemsTotal sums price*quantity over the line items.
func ItemsTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}
