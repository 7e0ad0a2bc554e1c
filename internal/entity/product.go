package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product categories. The set is open; these are the ones the mart sells today.
const (
	CategoryCosmetics = "Cosmetics"
	CategoryGroceries = "Groceries"
)

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	SKU         string          `json:"sku"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Image       string          `json:"image"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func (p *Product) Key() int64      { return p.ID }
func (p *Product) SetKey(id int64) { p.ID = id }

// DefaultLowStockThreshold is applied to inventory records created without an
// explicit threshold.
const DefaultLowStockThreshold = 10

// InventoryRecord mirrors the stock count of exactly one product. Every code
// path that changes Product.Stock must write the mirror as well.
type InventoryRecord struct {
	ID                int64     `json:"id"`
	ProductID         int64     `json:"productId"`
	Quantity          int       `json:"quantity"`
	LowStockThreshold int       `json:"lowStockThreshold"`
	LastUpdated       time.Time `json:"lastUpdated"`
}

func (i *InventoryRecord) Key() int64      { return i.ID }
func (i *InventoryRecord) SetKey(id int64) { i.ID = id }
