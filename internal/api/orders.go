package api

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/abuind/ASIA-Mart-1/internal/auth"
	"github.com/abuind/ASIA-Mart-1/internal/order"
	"github.com/abuind/ASIA-Mart-1/internal/session"
)

type OrderHandler struct {
	orders   *order.Service
	auth     *auth.Service
	resolver actorResolver
}

func NewOrderHandler(orders *order.Service, authSvc *auth.Service, sessions *session.Manager) *OrderHandler {
	return &OrderHandler{
		orders:   orders,
		auth:     authSvc,
		resolver: actorResolver{auth: authSvc, sessions: sessions},
	}
}

// Checkout converts the cart into an order --> POST /checkout
func (h *OrderHandler) Checkout(c echo.Context) error {
	actor, err := h.resolver.actor(c)
	if err != nil {
		return fail(c, err)
	}

	input := order.CheckoutInput{}
	if err := c.Bind(&input); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	placed, err := h.orders.Place(c.Request().Context(), actor, input)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(201, placed)
}

// Get returns one order --> GET /orders/:id, also reachable as
// GET /orders?orderId=N for deep links from notification emails and the
// admin order table.
func (h *OrderHandler) Get(c echo.Context) error {
	raw := c.Param("id")
	if raw == "" {
		raw = c.QueryParam("orderId")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid order ID"})
	}
	o, err := h.orders.Get(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(200, o)
}

// Mine returns the logged-in customer's order history --> GET /orders
func (h *OrderHandler) Mine(c echo.Context) error {
	if raw := c.QueryParam("orderId"); raw != "" {
		return h.Get(c)
	}

	token := bearerToken(c)
	if token == "" {
		return c.JSON(401, map[string]string{"error": "unauthorized"})
	}
	identity, err := h.auth.CurrentCustomer(c.Request().Context(), token)
	if err != nil {
		return c.JSON(401, map[string]string{"error": "unauthorized"})
	}

	orders, err := h.orders.ForCustomer(c.Request().Context(), identity.ID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(200, orders)
}
