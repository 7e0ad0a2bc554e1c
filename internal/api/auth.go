package api

import (
	"github.com/labstack/echo/v4"

	"github.com/abuind/ASIA-Mart-1/internal/auth"
)

type AuthHandler struct {
	auth *auth.Service
}

func NewAuthHandler(authSvc *auth.Service) *AuthHandler {
	return &AuthHandler{auth: authSvc}
}

// Register creates a customer account --> POST /register
func (h *AuthHandler) Register(c echo.Context) error {
	input := auth.RegisterInput{}
	if err := c.Bind(&input); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	customer, err := h.auth.Register(c.Request().Context(), input)
	if err != nil {
		return fail(c, err)
	}

	// Auto login after registration, matching the storefront flow.
	token, _, err := h.auth.LoginCustomer(c.Request().Context(), customer.Email, input.Password)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(201, map[string]any{
		"token": token,
		"user":  map[string]any{"id": customer.ID, "name": customer.Name, "email": customer.Email},
	})
}

// Login authenticates a customer, or an admin when ?admin=true --> POST /login
func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()

	if c.QueryParam("admin") == "true" {
		login := struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}{}
		if err := c.Bind(&login); err != nil {
			return c.JSON(400, map[string]string{"error": "Invalid request payload"})
		}
		token, admin, err := h.auth.LoginAdmin(ctx, login.Username, login.Password)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(200, map[string]any{
			"token": token,
			"admin": map[string]any{"id": admin.ID, "username": admin.Username, "role": admin.Role},
		})
	}

	login := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{}
	if err := c.Bind(&login); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}
	token, customer, err := h.auth.LoginCustomer(ctx, login.Email, login.Password)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(200, map[string]any{
		"token": token,
		"user":  map[string]any{"id": customer.ID, "name": customer.Name, "email": customer.Email},
	})
}

// Logout ends the session for the presented token --> POST /logout
func (h *AuthHandler) Logout(c echo.Context) error {
	token := bearerToken(c)
	if token == "" {
		return c.JSON(401, map[string]string{"error": "unauthorized"})
	}
	isAdmin := c.QueryParam("admin") == "true"
	if err := h.auth.Logout(c.Request().Context(), token, isAdmin); err != nil {
		return fail(c, err)
	}
	return c.JSON(200, map[string]string{"message": "Logged out"})
}
