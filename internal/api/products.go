package api

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/abuind/ASIA-Mart-1/internal/catalog"
)

type ProductHandler struct {
	catalog *catalog.Service
}

func NewProductHandler(cat *catalog.Service) *ProductHandler {
	return &ProductHandler{catalog: cat}
}

// List returns the catalog --> /products?q=...&category=...
func (h *ProductHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	if q := c.QueryParam("q"); q != "" {
		products, err := h.catalog.Search(ctx, q)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(200, products)
	}
	if category := c.QueryParam("category"); category != "" {
		products, err := h.catalog.ByCategory(ctx, category)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(200, products)
	}
	products, err := h.catalog.Products(ctx)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(200, products)
}

// Get returns one product --> /products/:id
func (h *ProductHandler) Get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid product ID"})
	}
	product, err := h.catalog.Product(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(200, product)
}

// Stock answers a stock check --> /products/:id/stock?quantity=N
func (h *ProductHandler) Stock(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid product ID"})
	}
	quantity, err := strconv.Atoi(c.QueryParam("quantity"))
	if err != nil || quantity < 1 {
		quantity = 1
	}
	return c.JSON(200, h.catalog.CheckStock(c.Request().Context(), id, quantity))
}
