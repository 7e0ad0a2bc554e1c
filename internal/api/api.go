// Package api wires the storefront and admin services to HTTP. Handlers are
// thin: bind, call the service, translate the error taxonomy to a status
// code. Raw storage errors never reach a response body.
package api

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/abuind/ASIA-Mart-1/internal/auth"
	"github.com/abuind/ASIA-Mart-1/internal/cart"
	"github.com/abuind/ASIA-Mart-1/internal/catalog"
	"github.com/abuind/ASIA-Mart-1/internal/order"
	"github.com/abuind/ASIA-Mart-1/internal/session"
	"github.com/abuind/ASIA-Mart-1/internal/store"
)

// SessionTokenHeader carries the guest session token. When a request
// arrives without one, a fresh token is minted and echoed back in the
// response under the same header.
const SessionTokenHeader = "X-Session-Token"

func fail(c echo.Context, err error) error {
	var insufficient *catalog.InsufficientStockError
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, cart.ErrItemNotFound):
		return c.JSON(404, map[string]string{"error": "not found"})
	case errors.Is(err, auth.ErrInvalidCredentials):
		return c.JSON(401, map[string]string{"error": err.Error()})
	case errors.Is(err, auth.ErrEmailTaken),
		errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, order.ErrEmptyCart),
		errors.As(err, &insufficient):
		return c.JSON(400, map[string]string{"error": err.Error()})
	case errors.Is(err, store.ErrConstraint):
		return c.JSON(409, map[string]string{"error": "conflict"})
	default:
		return c.JSON(500, map[string]string{"error": "internal error"})
	}
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// RequireAdmin gates a route group on the role claim of an admin token. It
// runs after the JWT middleware has verified the signature.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := c.Get("user").(*jwt.Token)
		if !ok {
			return c.JSON(401, map[string]string{"error": "unauthorized"})
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || claims["sub"] != "admin" || claims["role"] != "admin" {
			return c.JSON(403, map[string]string{"error": "admin access required"})
		}
		return next(c)
	}
}

// actorResolver maps a request to the cart actor it acts as: the logged-in
// customer when a valid bearer token is present, otherwise a guest session.
type actorResolver struct {
	auth     *auth.Service
	sessions *session.Manager
}

func (r *actorResolver) actor(c echo.Context) (cart.Actor, error) {
	ctx := c.Request().Context()
	if token := bearerToken(c); token != "" {
		if id, err := r.auth.CurrentCustomer(ctx, token); err == nil {
			return cart.ForCustomer(id.ID), nil
		}
	}

	token := c.Request().Header.Get(SessionTokenHeader)
	if token == "" {
		var err error
		token, err = r.sessions.NewGuestToken(ctx)
		if err != nil {
			return cart.Actor{}, err
		}
		c.Response().Header().Set(SessionTokenHeader, token)
	}
	return cart.ForGuest(token), nil
}
