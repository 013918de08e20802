package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"qontrolla/internal/auth"
	"qontrolla/internal/model"
	"qontrolla/pkg/logger"
	"qontrolla/prometheus"
)

const userContextKey = "user"

// Authenticate returns a middleware that validates the bearer token from the
// Authorization header against the tenant already resolved for this request
// and stores the acting user in the request context. It must run after
// ResolveTenant.
func Authenticate(authenticator *auth.Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			tenant := CurrentTenant(c)
			if tenant == nil {
				log.Error("Tenant not resolved before authentication")
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
			}

			tokenString, ok := bearerToken(c)
			if !ok {
				log.Warn("Missing or malformed Authorization header")
				prometheus.RecordAuthError("missing_token")
				return unauthorized(c)
			}

			user, err := authenticator.Authenticate(tenant, tokenString)
			if err != nil {
				switch {
				case errors.Is(err, auth.ErrTenantMismatch):
					log.Warn("Token tenant mismatch",
						zap.String("tenant_domain", tenant.Domain))
					prometheus.RecordAuthError("tenant_mismatch")
					return c.JSON(http.StatusForbidden, echo.Map{"error": auth.ErrTenantMismatch.Error()})
				case errors.Is(err, auth.ErrUnauthorized):
					log.Warn("Token validation failed")
					prometheus.RecordAuthError("invalid_token")
					return unauthorized(c)
				default:
					log.Error("Authentication failed", zap.Error(err))
					return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
				}
			}

			c.Set(userContextKey, user)
			log.Debug("Request authenticated",
				zap.String("email", user.Email),
				zap.String("tenant_id", tenant.ID.String()))

			return next(c)
		}
	}
}

// RequireSuperuser returns a middleware that rejects non-superusers with a
// 403. It must run after Authenticate.
func RequireSuperuser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil {
				return unauthorized(c)
			}

			if _, err := auth.RequireSuperuser(user); err != nil {
				logger.FromEcho(c).Warn("Superuser privilege required",
					zap.String("email", user.Email))
				prometheus.RecordAuthError("insufficient_privileges")
				return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
			}

			return next(c)
		}
	}
}

// CurrentUser returns the user resolved by Authenticate, or nil when the
// middleware did not run.
func CurrentUser(c echo.Context) *model.User {
	user, ok := c.Get(userContextKey).(*model.User)
	if !ok {
		return nil
	}
	return user
}

// bearerToken extracts the token from a "Bearer <token>" Authorization
// header.
func bearerToken(c echo.Context) (string, bool) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}

	return parts[1], true
}

// unauthorized writes the uniform 401 response. The message is deliberately
// uninformative to prevent user and tenant enumeration.
func unauthorized(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": auth.ErrUnauthorized.Error()})
}
