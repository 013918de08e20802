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

// ClientHandler serves tenant-scoped client management.
type ClientHandler struct {
	db *gorm.DB
}

// NewClientHandler creates a client handler.
func NewClientHandler(db *gorm.DB) *ClientHandler {
	return &ClientHandler{db: db}
}

// Create handles POST /clients.
func (h *ClientHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)
	tenant := middleware.CurrentTenant(c)

	var req struct {
		Name           string `json:"name"`
		ClientType     string `json:"client_type"`
		TypeIdentifier string `json:"type_identifier"`
		Identifier     string `json:"identifier"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse client creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Name == "" || req.Identifier == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and identifier are required"})
	}

	if req.TypeIdentifier != model.IdentifierCPF && req.TypeIdentifier != model.IdentifierCNPJ {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "type_identifier must be cpf or cnpj"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var existing model.Client
	err := h.db.Where("identifier = ? AND tenant_id = ?", req.Identifier, tenant.ID).First(&existing).Error
	if err == nil {
		log.Warn("Client already exists", zap.String("identifier", req.Identifier))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Client already exists"})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Error("Client lookup failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	client := model.Client{
		Name:           req.Name,
		ClientType:     req.ClientType,
		TypeIdentifier: req.TypeIdentifier,
		Identifier:     req.Identifier,
		IsActive:       true,
		TenantID:       tenant.ID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.db.Create(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Client already exists"})
		}
		log.Error("Failed to create client", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "client creation failed"})
	}

	log.Info("Client created", zap.String("name", client.Name), zap.String("tenant_id", tenant.ID.String()))
	return c.JSON(http.StatusCreated, client)
}

// List handles GET /clients: all clients within the current tenant.
func (h *ClientHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)
	tenant := middleware.CurrentTenant(c)

	defer prometheus.TrackDBOperation("query")(time.Now())
	var clients []model.Client
	if err := h.db.Where("tenant_id = ?", tenant.ID).Find(&clients).Error; err != nil {
		log.Error("Failed to list clients", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, echo.Map{"clients": clients})
}

// GetByID handles GET /clients/:id.
func (h *ClientHandler) GetByID(c echo.Context) error {
	log := logger.FromEcho(c)
	tenant := middleware.CurrentTenant(c)

	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid client ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var client model.Client
	err = h.db.Where("id = ? AND tenant_id = ?", clientID, tenant.ID).First(&client).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Client not found"})
		}
		log.Error("Client lookup failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, client)
}

// Update handles PATCH /clients/:id.
func (h *ClientHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)
	tenant := middleware.CurrentTenant(c)

	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid client ID"})
	}

	var req struct {
		Name           *string `json:"name"`
		ClientType     *string `json:"client_type"`
		TypeIdentifier *string `json:"type_identifier"`
		Identifier     *string `json:"identifier"`
		IsActive       *bool   `json:"is_active"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse client update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var client model.Client
	err = h.db.Where("id = ? AND tenant_id = ?", clientID, tenant.ID).First(&client).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Client not found"})
		}
		log.Error("Client lookup failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	if req.Name != nil {
		client.Name = *req.Name
	}
	if req.ClientType != nil {
		client.ClientType = *req.ClientType
	}
	if req.TypeIdentifier != nil {
		client.TypeIdentifier = *req.TypeIdentifier
	}
	if req.Identifier != nil {
		client.Identifier = *req.Identifier
	}
	if req.IsActive != nil {
		client.IsActive = *req.IsActive
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := h.db.Save(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "Client already exists"})
		}
		log.Error("Failed to update client", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "client update failed"})
	}

	return c.JSON(http.StatusOK, client)
}

// Delete handles DELETE /clients/:id (soft delete, superuser-only).
func (h *ClientHandler) Delete(c echo.Context) error {
	log := logger.FromEcho(c)
	tenant := middleware.CurrentTenant(c)

	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid client ID"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	var client model.Client
	err = h.db.Where("id = ? AND tenant_id = ?", clientID, tenant.ID).First(&client).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Client doesn't exist"})
		}
		log.Error("Client lookup failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	client.IsActive = false
	if err := h.db.Save(&client).Error; err != nil {
		log.Error("Failed to deactivate client", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "client deletion failed"})
	}

	log.Info("Client deactivated", zap.String("id", client.ID.String()))
	return c.JSON(http.StatusOK, echo.Map{"message": "Client deleted"})
}
