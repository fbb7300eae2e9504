package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/storefront/orders-api/internal/api/middleware"
	"github.com/storefront/orders-api/internal/core/domain"
)

// principal returns the caller attached by the Auth middleware. A route
// reached without it was wired without the gate; fail closed.
func principal(c echo.Context) (domain.Principal, error) {
	p, ok := middleware.Principal(c)
	if !ok || p.ID == "" {
		return domain.Principal{}, domain.ErrNoCredential
	}
	return p, nil
}
