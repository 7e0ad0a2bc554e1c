package api

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/abuind/ASIA-Mart-1/internal/catalog"
	"github.com/abuind/ASIA-Mart-1/internal/customer"
	"github.com/abuind/ASIA-Mart-1/internal/entity"
	"github.com/abuind/ASIA-Mart-1/internal/export"
	"github.com/abuind/ASIA-Mart-1/internal/order"
	"github.com/abuind/ASIA-Mart-1/internal/report"
	"github.com/abuind/ASIA-Mart-1/internal/storage"
)

// AdminHandler serves the console: inventory management, the order desk,
// customer records, reports and exports. Routes using it sit behind the JWT
// middleware plus RequireAdmin.
type AdminHandler struct {
	db        *storage.Handle
	catalog   *catalog.Service
	orders    *order.Service
	customers *customer.Service
	reports   *report.Service
}

func NewAdminHandler(db *storage.Handle, cat *catalog.Service, orders *order.Service, customers *customer.Service, reports *report.Service) *AdminHandler {
	return &AdminHandler{db: db, catalog: cat, orders: orders, customers: customers, reports: reports}
}

// CreateProduct --> POST /admin/products
func (h *AdminHandler) CreateProduct(c echo.Context) error {
	product := entity.Product{}
	if err := c.Bind(&product); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}
	id, err := h.catalog.CreateProduct(c.Request().Context(), &product)
	if err != nil {
		return fail(c, err)
	}
	product.ID = id
	return c.JSON(201, product)
}

// UpdateProduct --> PUT /admin/products/:id
func (h *AdminHandler) UpdateProduct(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid product ID"})
	}
	product := entity.Product{}
	if err := c.Bind(&product); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}
	product.ID = id
	if err := h.catalog.UpdateProduct(c.Request().Context(), &product); err != nil {
		return fail(c, err)
	}
	return c.JSON(200, product)
}

// DeleteProduct --> DELETE /admin/products/:id
func (h *AdminHandler) DeleteProduct(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid product ID"})
	}
	if err := h.catalog.DeleteProduct(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(200, map[string]string{"message": "Product deleted"})
}

// SetStock --> PUT /admin/products/:id/stock
func (h *AdminHandler) SetStock(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid product ID"})
	}
	body := struct {
		Stock int `json:"stock"`
	}{}
	if err := c.Bind(&body); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}
	if err := h.catalog.SetStock(c.Request().Context(), id, body.Stock); err != nil {
		return fail(c, err)
	}
	return c.JSON(200, map[string]string{"message": "Stock updated"})
}

// ListOrders --> GET /admin/orders?status=&payment=&from=&to=
func (h *AdminHandler) ListOrders(c echo.Context) error {
	filter := order.Filter{
		Status:  c.QueryParam("status"),
		Payment: c.QueryParam("payment"),
	}
	if from := c.QueryParam("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return c.JSON(400, map[string]string{"error": "Invalid from date"})
		}
		filter.From = t
	}
	if to := c.QueryParam("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return c.JSON(400, map[string]string{"error": "Invalid to date"})
		}
		filter.To = t.Add(24*time.Hour - time.Nanosecond)
	}

	orders, err := h.orders.List(c.Request().Context(), filter)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(200, orders)
}

// SetOrderStatus --> PUT /admin/orders/:id/status
func (h *AdminHandler) SetOrderStatus(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid order ID"})
	}
	body := struct {
		Status string `json:"status"`
	}{}
	if err := c.Bind(&body); err != nil || body.Status == "" {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}
	o, err := h.orders.SetStatus(c.Request().Context(), id, body.Status)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(200, o)
}

// ConfirmPayment --> PUT /admin/orders/:id/payment
func (h *AdminHandler) ConfirmPayment(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid order ID"})
	}
	o, err := h.orders.MarkPaid(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(200, o)
}

// ListCustomers --> GET /admin/customers?q=
func (h *AdminHandler) ListCustomers(c echo.Context) error {
	views, err := h.customers.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(200, views)
}

// GetCustomer --> GET /admin/customers/:id
func (h *AdminHandler) GetCustomer(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid customer ID"})
	}
	details, err := h.customers.Get(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(200, details)
}

// Dashboard --> GET /admin/dashboard
func (h *AdminHandler) Dashboard(c echo.Context) error {
	d, err := h.reports.Dashboard(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(200, d)
}

// Report serves one named report --> GET /admin/reports/:name?range=
func (h *AdminHandler) Report(c echo.Context) error {
	ctx := c.Request().Context()
	r := report.Range(c.QueryParam("range"))
	if r == "" {
		r = report.RangeAll
	}

	switch c.Param("name") {
	case "sales":
		points, err := h.reports.SalesByDate(ctx, r)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(200, points)
	case "top-products":
		ranked, err := h.reports.TopProducts(ctx, r, 5)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(200, ranked)
	case "categories":
		sales, err := h.reports.SalesByCategory(ctx, r)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(200, sales)
	case "statuses":
		counts, err := h.reports.StatusCounts(ctx, r)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(200, counts)
	case "daily":
		rows, err := h.reports.SalesReport(ctx, r)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(200, rows)
	default:
		return c.JSON(404, map[string]string{"error": "unknown report"})
	}
}

// Export downloads a listing --> GET /admin/export/:name?format=csv|json
func (h *AdminHandler) Export(c echo.Context) error {
	ctx := c.Request().Context()
	name := c.Param("name")

	var rows any
	switch name {
	case "orders":
		orders, err := h.orders.List(ctx, order.Filter{})
		if err != nil {
			return fail(c, err)
		}
		customers, err := h.db.Customers.GetAll(ctx)
		if err != nil {
			return fail(c, err)
		}
		names := make(map[int64]string, len(customers))
		for _, cust := range customers {
			names[cust.ID] = cust.Name
		}
		rows = export.OrderRows(orders, names)
	case "customers":
		views, err := h.customers.List(ctx)
		if err != nil {
			return fail(c, err)
		}
		rows = export.CustomerRows(views)
	case "inventory":
		products, err := h.catalog.Products(ctx)
		if err != nil {
			return fail(c, err)
		}
		inventory, err := h.db.Inventory.GetAll(ctx)
		if err != nil {
			return fail(c, err)
		}
		rows = export.InventoryRows(products, inventory)
	default:
		return c.JSON(404, map[string]string{"error": "unknown export"})
	}

	format, contentType := "csv", "text/csv; charset=utf-8"
	if c.QueryParam("format") == "json" {
		format, contentType = "json", "application/json; charset=utf-8"
	}

	var buf bytes.Buffer
	var err error
	if format == "json" {
		err = export.WriteJSON(&buf, rows)
	} else {
		err = export.WriteCSV(&buf, rows)
	}
	if errors.Is(err, export.ErrNoData) {
		return c.JSON(404, map[string]string{"error": "no data to export"})
	}
	if err != nil {
		return fail(c, err)
	}

	filename := fmt.Sprintf("%s_%s.%s", name, time.Now().UTC().Format("2006-01-02"), format)
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Blob(200, contentType, buf.Bytes())
}
