package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/storefront/shop-api/internal/api/metrics"
	"github.com/storefront/shop-api/internal/core/domain"
)

const claimsKey = "auth_claims"

// Authorizer validates an Authorization header value.
type Authorizer interface {
	Authorize(ctx context.Context, authHeader string) (domain.Claims, error)
}

// Auth runs the authorization check and stores the resulting claims on the
// echo context for downstream handlers.
func Auth(authorizer Authorizer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := authorizer.Authorize(c.Request().Context(), c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				reason, msg := rejection(err)
				metrics.AuthorizationFailuresTotal.WithLabelValues(reason).Inc()
				if reason == "error" {
					return err
				}
				return echo.NewHTTPError(http.StatusUnauthorized, msg).SetInternal(err)
			}

			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

// ClaimsFrom returns the claims stored by Auth.
func ClaimsFrom(c echo.Context) (domain.Claims, bool) {
	claims, ok := c.Get(claimsKey).(domain.Claims)
	return claims, ok
}

// SetClaims stores claims on c. Used by tests and internal routing.
func SetClaims(c echo.Context, claims domain.Claims) {
	c.Set(claimsKey, claims)
}

func rejection(err error) (reason, msg string) {
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired", "token expired"
	case errors.Is(err, domain.ErrTokenRevoked):
		return "revoked", "unauthenticated"
	case errors.Is(err, domain.ErrTokenMalformed):
		return "malformed", "unauthenticated"
	case errors.Is(err, domain.ErrTokenInvalid):
		return "invalid", "unauthenticated"
	case errors.Is(err, domain.ErrUnauthenticated):
		return "missing", "missing authorization header"
	default:
		return "error", ""
	}
}
