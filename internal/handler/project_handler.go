package handler

import (
	"errors"
	"net/http"
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

// ProjectHandler serves tenant-scoped project management.
type ProjectHandler struct {
	db *gorm.DB
}

// NewProjectHandler creates a project handler.
func NewProjectHandler(db *gorm.DB) *ProjectHandler {
	return &ProjectHandler{db: db}
}

// Create handles POST /projects. The project is stamped with the acting
// user as creator.
func (h *ProjectHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)
	tenant := middleware.CurrentTenant(c)
	user := middleware.CurrentUser(c)

	var req struct {
		Name         string     `json:"name"`
		StatusState  *string    `json:"status_state"`
		ProjectValue *float64   `json:"project_value"`
		TargetDate   *time.Time `json:"target_date"`
		CategoryName string     `json:"category,omitempty"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse project creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var existing model.Project
	err := h.db.Where("name = ? AND tenant_id = ?", req.Name, tenant.ID).First(&existing).Error
	if err == nil {
		log.Warn("Project already exists", zap.String("name", req.Name))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Project already exists"})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Error("Project lookup failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	project := model.Project{
		Name:         req.Name,
		StatusState:  req.StatusState,
		ProjectValue: req.ProjectValue,
		TargetDate:   req.TargetDate,
		CreatedBy:    user.ID,
		IsActive:     true,
		TenantID:     tenant.ID,
	}

	if req.CategoryName != "" {
		category, err := getOrCreateCategory(h.db, req.CategoryName, tenant.ID)
		if err != nil {
			log.Error("Failed to resolve category", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "project creation failed"})
		}
		project.CategoryID = &category.ID
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.db.Create(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Project already exists"})
		}
		log.Error("Failed to create project", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "project creation failed"})
	}

	log.Info("Project created", zap.String("name", project.Name), zap.String("tenant_id", tenant.ID.String()))
	return c.JSON(http.StatusCreated, project)
}

// List handles GET /projects: all projects within the current tenant.
func (h *ProjectHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)
	tenant := middleware.CurrentTenant(c)

	defer prometheus.TrackDBOperation("query")(time.Now())
	var projects []model.Project
	if err := h.db.Where("tenant_id = ?", tenant.ID).Find(&projects).Error; err != nil {
		log.Error("Failed to list projects", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, echo.Map{"projects": projects})
}

// GetByID handles GET /projects/:id.
func (h *ProjectHandler) GetByID(c echo.Context) error {
	log := logger.FromEcho(c)
	tenant := middleware.CurrentTenant(c)

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid project ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var project model.Project
	err = h.db.Where("id = ? AND tenant_id = ?", projectID, tenant.ID).First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Project doesn't exist"})
		}
		log.Error("Project lookup failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, project)
}

// Update handles PATCH /projects/:id, stamping the acting user as updater.
func (h *ProjectHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)
	tenant := middleware.CurrentTenant(c)
	user := middleware.CurrentUser(c)

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid project ID"})
	}

	var req struct {
		Name         *string    `json:"name"`
		StatusState  *string    `json:"status_state"`
		ProjectValue *float64   `json:"project_value"`
		TargetDate   *time.Time `json:"target_date"`
		IsActive     *bool      `json:"is_active"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse project update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var project model.Project
	err = h.db.Where("id = ? AND tenant_id = ?", projectID, tenant.ID).First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Project doesn't exist"})
		}
		log.Error("Project lookup failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.StatusState != nil {
		project.StatusState = req.StatusState
	}
	if req.ProjectValue != nil {
		project.ProjectValue = req.ProjectValue
	}
	if req.TargetDate != nil {
		project.TargetDate = req.TargetDate
	}
	if req.IsActive != nil {
		project.IsActive = *req.IsActive
	}
	project.UpdatedBy = &user.ID

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := h.db.Save(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "Project already exists"})
		}
		log.Error("Failed to update project", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "project update failed"})
	}

	return c.JSON(http.StatusOK, project)
}

// Delete handles DELETE /projects/:id (soft delete).
func (h *ProjectHandler) Delete(c echo.Context) error {
	log := logger.FromEcho(c)
	tenant := middleware.CurrentTenant(c)
	user := middleware.CurrentUser(c)

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid project ID"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	var project model.Project
	err = h.db.Where("id = ? AND tenant_id = ?", projectID, tenant.ID).First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Project doesn't exist"})
		}
		log.Error("Project lookup failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	project.IsActive = false
	project.UpdatedBy = &user.ID
	if err := h.db.Save(&project).Error; err != nil {
		log.Error("Failed to deactivate project", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "project deletion failed"})
	}

	log.Info("Project deactivated", zap.String("id", project.ID.String()))
	return c.JSON(http.StatusOK, echo.Map{"message": "Project deleted"})
}
