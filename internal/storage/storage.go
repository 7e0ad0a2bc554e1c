// Package storage declares the mart's six collections and bundles their
// stores into a single handle that is constructed once at startup and passed
// to every service.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/abuind/ASIA-Mart-1/internal/entity"
	"github.com/abuind/ASIA-Mart-1/internal/store"
)

// SchemaVersion gates migrations. Bump it when collections or indexes change.
const SchemaVersion = 1

const ddlRetries = 3

// Handle is the explicit storage handle threaded through the services. No
// package-level state: tests build one over in-memory stores with OpenMemory.
type Handle struct {
	Products  store.Store[*entity.Product]
	Orders    store.Store[*entity.Order]
	Customers store.Store[*entity.Customer]
	Cart      store.Store[*entity.CartItem]
	Inventory store.Store[*entity.InventoryRecord]
	Admins    store.Store[*entity.Admin]
}

func products() store.Collection[*entity.Product] {
	return store.Collection[*entity.Product]{
		Definition: store.Definition{
			Name: "products",
			Indexes: []store.Index{
				{Name: "category"},
				{Name: "name"},
				{Name: "sku"},
			},
		},
		New: func() *entity.Product { return &entity.Product{} },
		Fields: func(p *entity.Product) map[string]any {
			return map[string]any{"category": p.Category, "name": p.Name, "sku": p.SKU}
		},
	}
}

func orders() store.Collection[*entity.Order] {
	return store.Collection[*entity.Order]{
		Definition: store.Definition{
			Name: "orders",
			Indexes: []store.Index{
				{Name: "customerId", SQLType: "BIGINT NOT NULL DEFAULT 0"},
				{Name: "status"},
				{Name: "createdAt"},
			},
		},
		New: func() *entity.Order { return &entity.Order{} },
		Fields: func(o *entity.Order) map[string]any {
			var customerID int64 // zero means guest
			if o.CustomerID != nil {
				customerID = *o.CustomerID
			}
			return map[string]any{
				"customerId": customerID,
				"status":     o.Status,
				"createdAt":  o.CreatedAt.UTC().Format(time.RFC3339),
			}
		},
	}
}

func customers() store.Collection[*entity.Customer] {
	return store.Collection[*entity.Customer]{
		Definition: store.Definition{
			Name:    "customers",
			Indexes: []store.Index{{Name: "email", Unique: true}},
		},
		New: func() *entity.Customer { return &entity.Customer{} },
		Fields: func(c *entity.Customer) map[string]any {
			return map[string]any{"email": c.Email}
		},
	}
}

func cart() store.Collection[*entity.CartItem] {
	return store.Collection[*entity.CartItem]{
		Definition: store.Definition{
			Name: "cart",
			Indexes: []store.Index{
				{Name: "productId", SQLType: "BIGINT NOT NULL"},
				{Name: "owner"},
			},
		},
		New: func() *entity.CartItem { return &entity.CartItem{} },
		Fields: func(c *entity.CartItem) map[string]any {
			return map[string]any{"productId": c.ProductID, "owner": c.Owner}
		},
	}
}

func inventory() store.Collection[*entity.InventoryRecord] {
	return store.Collection[*entity.InventoryRecord]{
		Definition: store.Definition{
			Name:    "inventory",
			Indexes: []store.Index{{Name: "productId", Unique: true, SQLType: "BIGINT NOT NULL"}},
		},
		New: func() *entity.InventoryRecord { return &entity.InventoryRecord{} },
		Fields: func(i *entity.InventoryRecord) map[string]any {
			return map[string]any{"productId": i.ProductID}
		},
	}
}

func admins() store.Collection[*entity.Admin] {
	return store.Collection[*entity.Admin]{
		Definition: store.Definition{
			Name:    "admins",
			Indexes: []store.Index{{Name: "username", Unique: true}},
		},
		New: func() *entity.Admin { return &entity.Admin{} },
		Fields: func(a *entity.Admin) map[string]any {
			return map[string]any{"username": a.Username}
		},
	}
}

func definitions() []store.Definition {
	return []store.Definition{
		products().Definition,
		orders().Definition,
		customers().Definition,
		cart().Definition,
		inventory().Definition,
		admins().Definition,
	}
}

// Open migrates the schema when needed and returns a MySQL-backed handle.
// Nothing can proceed without storage, so an unreachable database fails with
// store.ErrUnavailable and the caller is expected to treat that as fatal.
func Open(ctx context.Context, db *sql.DB) (*Handle, error) {
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	if err := migrate(ctx, db); err != nil {
		return nil, err
	}
	return &Handle{
		Products:  store.NewSQL(db, products()),
		Orders:    store.NewSQL(db, orders()),
		Customers: store.NewSQL(db, customers()),
		Cart:      store.NewSQL(db, cart()),
		Inventory: store.NewSQL(db, inventory()),
		Admins:    store.NewSQL(db, admins()),
	}, nil
}

// OpenMemory returns a handle over in-memory stores, for tests.
func OpenMemory() *Handle {
	return &Handle{
		Products:  store.NewMemory(products()),
		Orders:    store.NewMemory(orders()),
		Customers: store.NewMemory(customers()),
		Cart:      store.NewMemory(cart()),
		Inventory: store.NewMemory(inventory()),
		Admins:    store.NewMemory(admins()),
	}
}

func migrate(ctx context.Context, db *sql.DB) error {
	if err := execRetry(ctx, db,
		`CREATE TABLE IF NOT EXISTS schema_version (version INT NOT NULL)`); err != nil {
		return err
	}

	var version int
	err := db.QueryRowContext(ctx, `SELECT version FROM schema_version LIMIT 1`).Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: reading schema version: %v", store.ErrUnavailable, err)
	}
	if version >= SchemaVersion {
		return nil
	}

	for _, def := range definitions() {
		if err := execRetry(ctx, db, def.DDL()); err != nil {
			return err
		}
	}

	if version == 0 {
		_, err = db.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, SchemaVersion)
	} else {
		_, err = db.ExecContext(ctx, `UPDATE schema_version SET version = ?`, SchemaVersion)
	}
	if err != nil {
		return fmt.Errorf("%w: recording schema version: %v", store.ErrUnavailable, err)
	}
	return nil
}

func execRetry(ctx context.Context, db *sql.DB, query string) error {
	var err error
	for i := 0; i <= ddlRetries; i++ {
		if i > 0 {
			time.Sleep(time.Second)
		}
		if _, err = db.ExecContext(ctx, query); err == nil {
			return nil
		}
	}
	return fmt.Errorf("%w: migration failed: %v", store.ErrUnavailable, err)
}
