package api

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/abuind/ASIA-Mart-1/internal/auth"
	"github.com/abuind/ASIA-Mart-1/internal/cart"
	"github.com/abuind/ASIA-Mart-1/internal/session"
)

type CartHandler struct {
	carts    *cart.Service
	resolver actorResolver
}

func NewCartHandler(carts *cart.Service, authSvc *auth.Service, sessions *session.Manager) *CartHandler {
	return &CartHandler{
		carts:    carts,
		resolver: actorResolver{auth: authSvc, sessions: sessions},
	}
}

// Get returns the actor's cart --> GET /cart
func (h *CartHandler) Get(c echo.Context) error {
	actor, err := h.resolver.actor(c)
	if err != nil {
		return fail(c, err)
	}
	contents, err := h.carts.Items(c.Request().Context(), actor)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(200, contents)
}

// Count returns the total quantity in the cart --> GET /cart/count
func (h *CartHandler) Count(c echo.Context) error {
	actor, err := h.resolver.actor(c)
	if err != nil {
		return fail(c, err)
	}
	count, err := h.carts.Count(c.Request().Context(), actor)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(200, map[string]int{"count": count})
}

// AddItem puts a product in the cart --> POST /cart/items
func (h *CartHandler) AddItem(c echo.Context) error {
	actor, err := h.resolver.actor(c)
	if err != nil {
		return fail(c, err)
	}

	item := struct {
		ProductID int64 `json:"productId"`
		Quantity  int   `json:"quantity"`
	}{}
	if err := c.Bind(&item); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}

	if err := h.carts.Add(c.Request().Context(), actor, item.ProductID, item.Quantity); err != nil {
		return fail(c, err)
	}
	return c.JSON(200, map[string]string{"message": "Added to cart"})
}

// UpdateItem sets a line's quantity; zero removes it --> PUT /cart/items/:id
func (h *CartHandler) UpdateItem(c echo.Context) error {
	actor, err := h.resolver.actor(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid cart item ID"})
	}

	body := struct {
		Quantity int `json:"quantity"`
	}{}
	if err := c.Bind(&body); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	if err := h.carts.UpdateQuantity(c.Request().Context(), actor, id, body.Quantity); err != nil {
		return fail(c, err)
	}
	return c.JSON(200, map[string]string{"message": "Cart updated"})
}

// RemoveItem deletes a line --> DELETE /cart/items/:id
func (h *CartHandler) RemoveItem(c echo.Context) error {
	actor, err := h.resolver.actor(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid cart item ID"})
	}
	if err := h.carts.Remove(c.Request().Context(), actor, id); err != nil {
		return fail(c, err)
	}
	return c.JSON(200, map[string]string{"message": "Item removed from cart"})
}

// Clear empties the actor's cart --> DELETE /cart
func (h *CartHandler) Clear(c echo.Context) error {
	actor, err := h.resolver.actor(c)
	if err != nil {
		return fail(c, err)
	}
	if err := h.carts.Clear(c.Request().Context(), actor); err != nil {
		return fail(c, err)
	}
	return c.JSON(200, map[string]string{"message": "Cart cleared"})
}
