package middleware

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/storefront/orders-api/internal/core/domain"
)

const principalKey = "principal"

type principalContextKey struct{}

// WithPrincipal stores the verified principal on a context.
func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext retrieves the principal stored by WithPrincipal.
func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(domain.Principal)
	return p, ok
}

// Principal returns the principal the Auth middleware attached to c.
func Principal(c echo.Context) (domain.Principal, bool) {
	p, ok := c.Get(principalKey).(domain.Principal)
	return p, ok
}

func setPrincipal(c echo.Context, p domain.Principal) {
	c.Set(principalKey, p)
	c.SetRequest(c.Request().WithContext(WithPrincipal(c.Request().Context(), p)))
}
