package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"qontrolla/internal/middleware"
	"qontrolla/internal/model"
	"qontrolla/pkg/logger"
	"qontrolla/prometheus"
)

// CategoryHandler serves tenant-scoped category management.
type CategoryHandler struct {
	db *gorm.DB
}

// NewCategoryHandler creates a category handler.
func NewCategoryHandler(db *gorm.DB) *CategoryHandler {
	return &CategoryHandler{db: db}
}

// getOrCreateCategory returns the active category with the given name in
// the tenant, creating it when absent. Names are trimmed to avoid
// whitespace duplicates.
func getOrCreateCategory(db *gorm.DB, name string, tenantID uuid.UUID) (*model.Category, error) {
	normalized := strings.TrimSpace(name)
	if normalized == "" {
		return nil, errors.New("category name is empty")
	}

	var category model.Category
	err := db.Where("name = ? AND tenant_id = ? AND is_active = ?", normalized, tenantID, true).
		First(&category).Error
	if err == nil {
		return &category, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	category = model.Category{
		Name:     normalized,
		IsActive: true,
		TenantID: tenantID,
	}
	if err := db.Create(&category).Error; err != nil {
		return nil, err
	}

	return &category, nil
}

// Create handles POST /categories.
func (h *CategoryHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)
	tenant := middleware.CurrentTenant(c)

	var req struct {
		Name string `json:"name"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse category creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	normalized := strings.TrimSpace(req.Name)
	if normalized == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var existing model.Category
	err := h.db.Where("name = ? AND tenant_id = ?", normalized, tenant.ID).First(&existing).Error
	if err == nil {
		log.Warn("Category already exists", zap.String("name", normalized))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Category already exists"})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Error("Category lookup failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	category := model.Category{
		Name:     normalized,
		IsActive: true,
		TenantID: tenant.ID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.db.Create(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Category already exists"})
		}
		log.Error("Failed to create category", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "category creation failed"})
	}

	log.Info("Category created", zap.String("name", category.Name), zap.String("tenant_id", tenant.ID.String()))
	return c.JSON(http.StatusCreated, category)
}

// List handles GET /categories: active categories within the current tenant.
func (h *CategoryHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)
	tenant := middleware.CurrentTenant(c)

	defer prometheus.TrackDBOperation("query")(time.Now())
	var categories []model.Category
	err := h.db.Where("tenant_id = ? AND is_active = ?", tenant.ID, true).Find(&categories).Error
	if err != nil {
		log.Error("Failed to list categories", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, echo.Map{"categories": categories})
}

// GetByID handles GET /categories/:id.
func (h *CategoryHandler) GetByID(c echo.Context) error {
	log := logger.FromEcho(c)
	tenant := middleware.CurrentTenant(c)

	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var category model.Category
	err = h.db.Where("id = ? AND tenant_id = ?", categoryID, tenant.ID).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Category doesn't exist"})
		}
		log.Error("Category lookup failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, category)
}

// Delete handles DELETE /categories/:id (soft delete).
func (h *CategoryHandler) Delete(c echo.Context) error {
	log := logger.FromEcho(c)
	tenant := middleware.CurrentTenant(c)

	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category ID"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	var category model.Category
	err = h.db.Where("id = ? AND tenant_id = ?", categoryID, tenant.ID).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Category doesn't exist"})
		}
		log.Error("Category lookup failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	category.IsActive = false
	if err := h.db.Save(&category).Error; err != nil {
		log.Error("Failed to deactivate category", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "category deletion failed"})
	}

	log.Info("Category deactivated", zap.String("id", category.ID.String()))
	return c.JSON(http.StatusOK, echo.Map{"message": "Category deleted"})
}
