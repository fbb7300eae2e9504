package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/storefront/orders-api/internal/api/metrics"
	"github.com/storefront/orders-api/internal/core/domain"
	"github.com/storefront/orders-api/internal/core/ports"
	"github.com/storefront/orders-api/internal/core/token"
)

// CredentialVerifier validates a raw bearer credential without any I/O.
type CredentialVerifier interface {
	Verify(raw string) (token.Claims, error)
}

// Gate turns an Authorization header into a verified principal. The steps run
// in a fixed order and the first failure ends the request: header present,
// credential verified, identity still stored, identity record sound.
type Gate struct {
	verifier CredentialVerifier
	users    ports.IdentityStore
	log      zerolog.Logger
}

func NewGate(verifier CredentialVerifier, users ports.IdentityStore, log zerolog.Logger) *Gate {
	return &Gate{verifier: verifier, users: users, log: log}
}

// Authenticate resolves the principal for an Authorization header value.
func (g *Gate) Authenticate(ctx context.Context, header string) (domain.Principal, error) {
	if strings.TrimSpace(header) == "" {
		return domain.Principal{}, domain.ErrNoCredential
	}

	raw, err := token.ParseBearer(header)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: %v", domain.ErrInvalidCredential, err)
	}
	claims, err := g.verifier.Verify(raw)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: %v", domain.ErrInvalidCredential, err)
	}

	user, err := g.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.Principal{}, fmt.Errorf("%w: %s", domain.ErrUnknownIdentity, claims.Subject)
		}
		return domain.Principal{}, fmt.Errorf("resolve identity: %w", err)
	}

	if !user.Role.Valid() {
		return domain.Principal{}, fmt.Errorf("%w: user %s has role %q", domain.ErrIntegrityFault, user.ID, user.Role)
	}

	return domain.Principal{ID: claims.Subject, Role: user.Role}, nil
}

// Auth authenticates every request and attaches the principal to the context.
func Auth(g *Gate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			p, err := g.Authenticate(req.Context(), req.Header.Get(echo.HeaderAuthorization))
			if err != nil {
				result := authResult(err)
				metrics.AuthAttemptsTotal.WithLabelValues(result).Inc()
				g.logFailure(c, result, err)
				return err
			}

			metrics.AuthAttemptsTotal.WithLabelValues("ok").Inc()
			setPrincipal(c, p)
			return next(c)
		}
	}
}

func (g *Gate) logFailure(c echo.Context, result string, err error) {
	ev := g.log.Debug()
	switch result {
	case "integrity_fault", "store_error":
		ev = g.log.Error()
	case "invalid_credential", "unknown_identity":
		ev = g.log.Warn()
	}
	ev.Err(err).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Str("path", c.Path()).
		Str("result", result).
		Msg("authentication failed")
}

func authResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoCredential):
		return "no_credential"
	case errors.Is(err, domain.ErrInvalidCredential):
		return "invalid_credential"
	case errors.Is(err, domain.ErrUnknownIdentity):
		return "unknown_identity"
	case errors.Is(err, domain.ErrIntegrityFault):
		return "integrity_fault"
	default:
		return "store_error"
	}
}
