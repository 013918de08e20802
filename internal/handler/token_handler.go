package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"qontrolla/internal/middleware"
	"qontrolla/internal/model"
	"qontrolla/pkg/hash"
	"qontrolla/pkg/jwtutil"
	"qontrolla/pkg/logger"
	"qontrolla/prometheus"
)

// TokenHandler serves the login and refresh endpoints.
type TokenHandler struct {
	db    *gorm.DB
	codec *jwtutil.TokenCodec
}

// NewTokenHandler creates a token handler.
func NewTokenHandler(db *gorm.DB, codec *jwtutil.TokenCodec) *TokenHandler {
	return &TokenHandler{db: db, codec: codec}
}

// tokenResponse is the body returned by login and refresh.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login handles POST /token. Credentials arrive as form fields (username,
// password) and are checked against the tenant resolved from the
// X-Tenant-Domain header. The lookup is tenant-scoped, so valid credentials
// presented under the wrong tenant legitimately find no user.
func (h *TokenHandler) Login(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.LoginCounter.Inc()

	tenant := middleware.CurrentTenant(c)
	if tenant == nil {
		log.Error("Tenant not resolved before login")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	email := c.FormValue("username")
	password := c.FormValue("password")

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	err := h.db.Where("email = ? AND tenant_id = ? AND is_active = ?",
		email, tenant.ID, true).First(&user).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Error("Login lookup failed", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
		}
		log.Warn("Login with unknown user", zap.String("tenant_domain", tenant.Domain))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Incorrect email or password"})
	}

	if !hash.Verify(password, user.Password) {
		log.Warn("Login with wrong password", zap.String("email", user.Email))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Incorrect email or password"})
	}

	token, err := h.codec.Issue(user.Email, tenant.ID, user.IsSuperuser)
	if err != nil {
		log.Error("Failed to issue token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	prometheus.IncreaseActiveTokens()
	log.Info("User logged in",
		zap.String("email", user.Email),
		zap.String("tenant_id", tenant.ID.String()))

	return c.JSON(http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Refresh handles POST /token/refresh_token. The route is guarded by the
// authentication middleware, so an expired token cannot be refreshed; a new
// token is issued for the already-authenticated user.
func (h *TokenHandler) Refresh(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.TokenRefreshCounter.Inc()

	tenant := middleware.CurrentTenant(c)
	user := middleware.CurrentUser(c)
	if tenant == nil || user == nil {
		log.Error("Refresh reached without authenticated session")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	token, err := h.codec.Issue(user.Email, tenant.ID, user.IsSuperuser)
	if err != nil {
		log.Error("Failed to issue refreshed token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	log.Info("Token refreshed", zap.String("email", user.Email))
	return c.JSON(http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}
