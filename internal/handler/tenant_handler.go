package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"qontrolla/internal/auth"
	"qontrolla/internal/middleware"
	"qontrolla/internal/model"
	"qontrolla/pkg/logger"
	"qontrolla/prometheus"
)

// TenantHandler serves tenant registration and tenant self-management.
type TenantHandler struct {
	db        *gorm.DB
	registrar *auth.TenantRegistrar
}

// NewTenantHandler creates a tenant handler.
func NewTenantHandler(db *gorm.DB, registrar *auth.TenantRegistrar) *TenantHandler {
	return &TenantHandler{db: db, registrar: registrar}
}

// Register handles POST /tenants/register. The endpoint is public: it
// onboards a tenant and its first superuser in one transaction.
func (h *TenantHandler) Register(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.TenantRegistrationCounter.Inc()
	prometheus.RecordTenantOperation("register")

	var req struct {
		Name      string `json:"name"`
		Domain    string `json:"domain"`
		AdminUser struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		} `json:"admin_user"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse tenant registration request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Name == "" || req.Domain == "" || req.AdminUser.Email == "" || req.AdminUser.Password == "" {
		log.Warn("Incomplete tenant registration", zap.String("name", req.Name))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, domain and admin_user are required"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	tenant, err := h.registrar.Register(req.Name, req.Domain, req.AdminUser.Email, req.AdminUser.Password)
	if err != nil {
		if errors.Is(err, auth.ErrDomainTaken) {
			log.Warn("Domain already in use", zap.String("domain", req.Domain))
			prometheus.RecordAuthError("domain_taken")
			return c.JSON(http.StatusBadRequest, echo.Map{"error": auth.ErrDomainTaken.Error()})
		}
		log.Error("Tenant registration failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant registration failed"})
	}

	log.Info("Tenant registered",
		zap.String("name", tenant.Name),
		zap.String("domain", tenant.Domain),
		zap.String("id", tenant.ID.String()))

	return c.JSON(http.StatusCreated, tenant)
}

// UpdateCurrent handles PUT /tenants/current. Superuser-only; updates the
// tenant resolved for this request.
func (h *TenantHandler) UpdateCurrent(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordTenantOperation("update")

	tenant := middleware.CurrentTenant(c)
	if tenant == nil {
		log.Error("Tenant not resolved before update")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	var req struct {
		Name     *string `json:"name"`
		Domain   *string `json:"domain"`
		IsActive *bool   `json:"is_active"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse tenant update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Name != nil {
		tenant.Name = *req.Name
	}

	if req.Domain != nil {
		normalized := model.NormalizeDomain(*req.Domain)
		if normalized != tenant.Domain {
			var existing model.Tenant
			err := h.db.Where("domain = ?", normalized).First(&existing).Error
			if err == nil {
				log.Warn("Domain already in use", zap.String("domain", normalized))
				prometheus.RecordAuthError("domain_taken")
				return c.JSON(http.StatusBadRequest, echo.Map{"error": auth.ErrDomainTaken.Error()})
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				log.Error("Domain availability check failed", zap.Error(err))
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
			}
			tenant.Domain = normalized
		}
	}

	if req.IsActive != nil {
		tenant.IsActive = *req.IsActive
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := h.db.Save(tenant).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": auth.ErrDomainTaken.Error()})
		}
		log.Error("Tenant update failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant update failed"})
	}

	log.Info("Tenant updated", zap.String("id", tenant.ID.String()))
	return c.JSON(http.StatusOK, tenant)
}
