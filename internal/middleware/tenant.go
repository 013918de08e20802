package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"qontrolla/internal/auth"
	"qontrolla/internal/model"
	"qontrolla/pkg/logger"
	"qontrolla/prometheus"
)

// TenantHeader is the request header carrying the tenant's domain. It is
// required on every tenant-scoped endpoint including login.
const TenantHeader = "X-Tenant-Domain"

const tenantContextKey = "tenant"

// ResolveTenant returns a middleware that resolves the X-Tenant-Domain
// header to an active tenant and stores it in the request context. A
// missing header is a 400, an unknown or inactive tenant a 404.
func ResolveTenant(resolver *auth.TenantResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			tenant, err := resolver.Resolve(c.Request().Header.Get(TenantHeader))
			if err != nil {
				switch {
				case errors.Is(err, auth.ErrMissingTenantHeader):
					log.Warn("Missing tenant header")
					prometheus.RecordAuthError("missing_tenant_header")
					return c.JSON(http.StatusBadRequest, echo.Map{"error": auth.ErrMissingTenantHeader.Error()})
				case errors.Is(err, auth.ErrTenantNotFound):
					log.Warn("Tenant not found or inactive",
						zap.String("domain", c.Request().Header.Get(TenantHeader)))
					prometheus.RecordAuthError("tenant_not_found")
					return c.JSON(http.StatusNotFound, echo.Map{"error": auth.ErrTenantNotFound.Error()})
				default:
					log.Error("Tenant resolution failed", zap.Error(err))
					return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
				}
			}

			c.Set(tenantContextKey, tenant)
			return next(c)
		}
	}
}

// CurrentTenant returns the tenant resolved by ResolveTenant, or nil when
// the middleware did not run.
func CurrentTenant(c echo.Context) *model.Tenant {
	tenant, ok := c.Get(tenantContextKey).(*model.Tenant)
	if !ok {
		return nil
	}
	return tenant
}
