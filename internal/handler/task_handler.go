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

// TaskHandler serves tenant-scoped task management.
type TaskHandler struct {
	db *gorm.DB
}

// NewTaskHandler creates a task handler.
func NewTaskHandler(db *gorm.DB) *TaskHandler {
	return &TaskHandler{db: db}
}

// Create handles POST /tasks. The referenced project must exist in the
// current tenant; an optional category name is resolved get-or-create.
func (h *TaskHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)
	tenant := middleware.CurrentTenant(c)
	user := middleware.CurrentUser(c)

	var req struct {
		Title        string     `json:"title"`
		Description  *string    `json:"description"`
		Status       string     `json:"status"`
		Priority     string     `json:"priority"`
		DueDate      *time.Time `json:"due_date"`
		ProjectID    uuid.UUID  `json:"project_id"`
		CategoryName string     `json:"category,omitempty"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse task creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Title == "" || req.ProjectID == uuid.Nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and project_id are required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var project model.Project
	err := h.db.Where("id = ? AND tenant_id = ?", req.ProjectID, tenant.ID).First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Project doesn't exist"})
		}
		log.Error("Project lookup failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	task := model.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      model.TaskStatusToDo,
		Priority:    model.TaskPriorityMedium,
		DueDate:     req.DueDate,
		ProjectID:   project.ID,
		CreatedBy:   user.ID,
		IsActive:    true,
		TenantID:    tenant.ID,
	}

	if req.Status != "" {
		task.Status = req.Status
	}
	if req.Priority != "" {
		task.Priority = req.Priority
	}

	if req.CategoryName != "" {
		category, err := getOrCreateCategory(h.db, req.CategoryName, tenant.ID)
		if err != nil {
			log.Error("Failed to resolve category", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "task creation failed"})
		}
		task.CategoryID = &category.ID
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.db.Create(&task).Error; err != nil {
		log.Error("Failed to create task", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "task creation failed"})
	}

	log.Info("Task created", zap.String("title", task.Title), zap.String("tenant_id", tenant.ID.String()))
	return c.JSON(http.StatusCreated, task)
}

// List handles GET /tasks, optionally filtered by ?project_id.
func (h *TaskHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)
	tenant := middleware.CurrentTenant(c)

	query := h.db.Where("tenant_id = ?", tenant.ID)

	if projectParam := c.QueryParam("project_id"); projectParam != "" {
		projectID, err := uuid.Parse(projectParam)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid project_id"})
		}
		query = query.Where("project_id = ?", projectID)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var tasks []model.Task
	if err := query.Find(&tasks).Error; err != nil {
		log.Error("Failed to list tasks", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, echo.Map{"tasks": tasks})
}

// GetByID handles GET /tasks/:id.
func (h *TaskHandler) GetByID(c echo.Context) error {
	log := logger.FromEcho(c)
	tenant := middleware.CurrentTenant(c)

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid task ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var task model.Task
	err = h.db.Where("id = ? AND tenant_id = ?", taskID, tenant.ID).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Task doesn't exist"})
		}
		log.Error("Task lookup failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, task)
}

// Update handles PATCH /tasks/:id. A new project_id is re-checked against
// the current tenant before being applied.
func (h *TaskHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)
	tenant := middleware.CurrentTenant(c)
	user := middleware.CurrentUser(c)

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid task ID"})
	}

	var req struct {
		Title       *string    `json:"title"`
		Description *string    `json:"description"`
		Status      *string    `json:"status"`
		Priority    *string    `json:"priority"`
		DueDate     *time.Time `json:"due_date"`
		ProjectID   *uuid.UUID `json:"project_id"`
		IsActive    *bool      `json:"is_active"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse task update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var task model.Task
	err = h.db.Where("id = ? AND tenant_id = ?", taskID, tenant.ID).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Task doesn't exist"})
		}
		log.Error("Task lookup failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	if req.ProjectID != nil {
		var project model.Project
		err := h.db.Where("id = ? AND tenant_id = ?", *req.ProjectID, tenant.ID).First(&project).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "Project doesn't exist"})
			}
			log.Error("Project lookup failed", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
		}
		task.ProjectID = project.ID
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = req.Description
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.IsActive != nil {
		task.IsActive = *req.IsActive
	}
	task.UpdatedBy = &user.ID

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := h.db.Save(&task).Error; err != nil {
		log.Error("Failed to update task", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "task update failed"})
	}

	return c.JSON(http.StatusOK, task)
}

// Delete handles DELETE /tasks/:id (soft delete, stamps the acting user).
func (h *TaskHandler) Delete(c echo.Context) error {
	log := logger.FromEcho(c)
	tenant := middleware.CurrentTenant(c)
	user := middleware.CurrentUser(c)

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid task ID"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	var task model.Task
	err = h.db.Where("id = ? AND tenant_id = ?", taskID, tenant.ID).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Task doesn't exist"})
		}
		log.Error("Task lookup failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	task.IsActive = false
	task.UpdatedBy = &user.ID
	if err := h.db.Save(&task).Error; err != nil {
		log.Error("Failed to deactivate task", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "task deletion failed"})
	}

	log.Info("Task deactivated", zap.String("id", task.ID.String()))
	return c.JSON(http.StatusOK, echo.Map{"message": "Task deleted"})
}
