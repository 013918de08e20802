package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"qontrolla/internal/auth"
	"qontrolla/internal/middleware"
	"qontrolla/internal/model"
	"qontrolla/pkg/hash"
	"qontrolla/pkg/logger"
	"qontrolla/prometheus"
)

// UserHandler serves tenant-scoped user management. Creation, listing,
// update and deletion are superuser-only; reading a single user honors the
// self-or-superuser policy.
type UserHandler struct {
	db *gorm.DB
}

// NewUserHandler creates a user handler.
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

// Create handles POST /users.
func (h *UserHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)

	tenant := middleware.CurrentTenant(c)

	var req struct {
		Email       string  `json:"email"`
		Password    string  `json:"password"`
		FullName    *string `json:"full_name"`
		IsSuperuser bool    `json:"is_superuser"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse user creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var existing model.User
	err := h.db.Where("email = ? AND tenant_id = ?", req.Email, tenant.ID).First(&existing).Error
	if err == nil {
		log.Warn("User already exists", zap.String("email", req.Email))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "User already exists"})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Error("User lookup failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	hashedPassword, err := hash.Password(req.Password)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "user creation failed"})
	}

	user := model.User{
		Email:       req.Email,
		Password:    hashedPassword,
		FullName:    req.FullName,
		IsSuperuser: req.IsSuperuser,
		IsActive:    true,
		TenantID:    tenant.ID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "User already exists"})
		}
		log.Error("Failed to create user", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "user creation failed"})
	}

	log.Info("User created", zap.String("email", user.Email), zap.String("tenant_id", tenant.ID.String()))
	return c.JSON(http.StatusCreated, user)
}

// List handles GET /users: all users within the current tenant.
func (h *UserHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)
	tenant := middleware.CurrentTenant(c)

	defer prometheus.TrackDBOperation("query")(time.Now())
	var users []model.User
	if err := h.db.Where("tenant_id = ?", tenant.ID).Find(&users).Error; err != nil {
		log.Error("Failed to list users", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, echo.Map{"users": users})
}

// GetByID handles GET /users/:id. Non-superusers may only read themselves.
func (h *UserHandler) GetByID(c echo.Context) error {
	log := logger.FromEcho(c)
	tenant := middleware.CurrentTenant(c)
	actingUser := middleware.CurrentUser(c)

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user ID"})
	}

	if _, err := auth.AuthorizeSelfOrSuperuser(actingUser, userID); err != nil {
		log.Warn("User access denied",
			zap.String("acting_user", actingUser.Email),
			zap.String("target_id", userID.String()))
		prometheus.RecordAuthError("access_denied")
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	err = h.db.Where("id = ? AND tenant_id = ?", userID, tenant.ID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "User Not Found"})
		}
		log.Error("User lookup failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, user)
}

// Update handles PATCH /users/:id.
func (h *UserHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)
	tenant := middleware.CurrentTenant(c)

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user ID"})
	}

	var req struct {
		Email       *string `json:"email"`
		Password    *string `json:"password"`
		FullName    *string `json:"full_name"`
		IsSuperuser *bool   `json:"is_superuser"`
		IsActive    *bool   `json:"is_active"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse user update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	err = h.db.Where("id = ? AND tenant_id = ?", userID, tenant.ID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "User Not Found"})
		}
		log.Error("User lookup failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Password != nil {
		hashedPassword, err := hash.Password(*req.Password)
		if err != nil {
			log.Error("Failed to hash password", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "user update failed"})
		}
		user.Password = hashedPassword
	}
	if req.FullName != nil {
		user.FullName = req.FullName
	}
	if req.IsSuperuser != nil {
		user.IsSuperuser = *req.IsSuperuser
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := h.db.Save(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "User email already exists"})
		}
		log.Error("Failed to update user", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "user update failed"})
	}

	return c.JSON(http.StatusOK, user)
}

// Delete handles DELETE /users/:id as a soft delete: the account is marked
// inactive, not removed.
func (h *UserHandler) Delete(c echo.Context) error {
	log := logger.FromEcho(c)
	tenant := middleware.CurrentTenant(c)

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user ID"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	var user model.User
	err = h.db.Where("id = ? AND tenant_id = ?", userID, tenant.ID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "User Not Found"})
		}
		log.Error("User lookup failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	user.IsActive = false
	if err := h.db.Save(&user).Error; err != nil {
		log.Error("Failed to deactivate user", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "user deletion failed"})
	}

	log.Info("User deactivated", zap.String("email", user.Email))
	return c.JSON(http.StatusOK, echo.Map{"message": "User deleted"})
}
