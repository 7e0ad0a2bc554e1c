package export

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/abuind/ASIA-Mart-1/internal/customer"
	"github.com/abuind/ASIA-Mart-1/internal/entity"
)

// OrderRow is one line of the orders export.
type OrderRow struct {
	ID            int64           `csv:"Order ID" json:"id"`
	Number        string          `csv:"Number" json:"number"`
	Customer      string          `csv:"Customer" json:"customer"`
	Items         int             `csv:"Items" json:"items"`
	Total         decimal.Decimal `csv:"Total" json:"total"`
	Status        string          `csv:"Status" json:"status"`
	PaymentStatus string          `csv:"Payment Status" json:"paymentStatus"`
	Date          string          `csv:"Date" json:"date"`
}

// OrderRows flattens orders for export; names maps customer ids to display
// names, guests show as "Guest".
func OrderRows(orders []*entity.Order, names map[int64]string) []OrderRow {
	rows := make([]OrderRow, 0, len(orders))
	for _, o := range orders {
		name := "Guest"
		if o.CustomerID != nil {
			if n, ok := names[*o.CustomerID]; ok {
				name = n
			}
		}
		rows = append(rows, OrderRow{
			ID:            o.ID,
			Number:        o.Number,
			Customer:      name,
			Items:         len(o.Items),
			Total:         o.Total,
			Status:        o.Status,
			PaymentStatus: o.PaymentStatus,
			Date:          o.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return rows
}

// CustomerRow is one line of the customers export.
type CustomerRow struct {
	ID         int64           `csv:"ID" json:"id"`
	Name       string          `csv:"Name" json:"name"`
	Email      string          `csv:"Email" json:"email"`
	Phone      string          `csv:"Phone" json:"phone"`
	Orders     int             `csv:"Orders" json:"orders"`
	TotalSpent decimal.Decimal `csv:"Total Spent" json:"totalSpent"`
	Joined     string          `csv:"Joined" json:"joined"`
}

func CustomerRows(views []customer.View) []CustomerRow {
	rows := make([]CustomerRow, 0, len(views))
	for _, v := range views {
		rows = append(rows, CustomerRow{
			ID:         v.ID,
			Name:       v.Name,
			Email:      v.Email,
			Phone:      v.Phone,
			Orders:     v.OrderCount,
			TotalSpent: v.TotalSpent,
			Joined:     v.CreatedAt,
		})
	}
	return rows
}

// InventoryRow is one line of the inventory export.
type InventoryRow struct {
	ID        int64           `csv:"ID" json:"id"`
	Name      string          `csv:"Name" json:"name"`
	Category  string          `csv:"Category" json:"category"`
	SKU       string          `csv:"SKU" json:"sku"`
	Price     decimal.Decimal `csv:"Price" json:"price"`
	Stock     int             `csv:"Stock" json:"stock"`
	Threshold int             `csv:"Low Stock Threshold" json:"lowStockThreshold"`
}

// InventoryRows flattens the catalog with each product's threshold; products
// without an inventory record fall back to the default.
func InventoryRows(products []*entity.Product, inventory []*entity.InventoryRecord) []InventoryRow {
	thresholds := make(map[int64]int, len(inventory))
	for _, inv := range inventory {
		thresholds[inv.ProductID] = inv.LowStockThreshold
	}
	rows := make([]InventoryRow, 0, len(products))
	for _, p := range products {
		threshold, ok := thresholds[p.ID]
		if !ok {
			threshold = entity.DefaultLowStockThreshold
		}
		rows = append(rows, InventoryRow{
			ID:        p.ID,
			Name:      p.Name,
			Category:  p.Category,
			SKU:       p.SKU,
			Price:     p.Price,
			Stock:     p.Stock,
			Threshold: threshold,
		})
	}
	return rows
}
