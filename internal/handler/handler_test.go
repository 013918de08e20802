package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"qontrolla/internal/auth"
	"qontrolla/internal/middleware"
	"qontrolla/internal/model"
	"qontrolla/pkg/config"
	"qontrolla/pkg/hash"
	"qontrolla/pkg/jwtutil"
)

// testApp wires the handlers behind the same middleware chain and routes the
// server mounts, backed by an in-memory SQLite database.
type testApp struct {
	db    *gorm.DB
	codec *jwtutil.TokenCodec
	e     *echo.Echo
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	if err := db.AutoMigrate(
		&model.Tenant{},
		&model.User{},
		&model.Client{},
		&model.Category{},
		&model.Project{},
		&model.Task{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	codec, err := jwtutil.NewTokenCodec(&config.JWTConfig{
		SigningKey:    "test-signing-key",
		Algorithm:     "HS256",
		ExpireMinutes: 30,
	})
	if err != nil {
		t.Fatalf("failed to create token codec: %v", err)
	}

	resolveTenant := middleware.ResolveTenant(auth.NewTenantResolver(db))
	authenticate := middleware.Authenticate(auth.NewAuthenticator(db, codec))
	requireSuperuser := middleware.RequireSuperuser()

	tokenHandler := NewTokenHandler(db, codec)
	tenantHandler := NewTenantHandler(db, auth.NewTenantRegistrar(db))
	userHandler := NewUserHandler(db)
	clientHandler := NewClientHandler(db)
	projectHandler := NewProjectHandler(db)
	taskHandler := NewTaskHandler(db)
	categoryHandler := NewCategoryHandler(db)

	e := echo.New()

	e.GET("/health", HealthCheck)

	e.POST("/tenants/register", tenantHandler.Register)
	e.PUT("/tenants/current", tenantHandler.UpdateCurrent, resolveTenant, authenticate, requireSuperuser)

	token := e.Group("/token", resolveTenant)
	token.POST("", tokenHandler.Login)
	token.POST("/refresh_token", tokenHandler.Refresh, authenticate)

	api := e.Group("", resolveTenant, authenticate)

	users := api.Group("/users")
	users.POST("", userHandler.Create, requireSuperuser)
	users.GET("", userHandler.List, requireSuperuser)
	users.GET("/:id", userHandler.GetByID)
	users.PATCH("/:id", userHandler.Update, requireSuperuser)
	users.DELETE("/:id", userHandler.Delete, requireSuperuser)

	clients := api.Group("/clients")
	clients.POST("", clientHandler.Create)
	clients.GET("", clientHandler.List)
	clients.GET("/:id", clientHandler.GetByID)
	clients.PATCH("/:id", clientHandler.Update)
	clients.DELETE("/:id", clientHandler.Delete, requireSuperuser)

	projects := api.Group("/projects")
	projects.POST("", projectHandler.Create)
	projects.GET("", projectHandler.List)
	projects.GET("/:id", projectHandler.GetByID)
	projects.PATCH("/:id", projectHandler.Update)
	projects.DELETE("/:id", projectHandler.Delete)

	tasks := api.Group("/tasks")
	tasks.POST("", taskHandler.Create)
	tasks.GET("", taskHandler.List)
	tasks.GET("/:id", taskHandler.GetByID)
	tasks.PATCH("/:id", taskHandler.Update)
	tasks.DELETE("/:id", taskHandler.Delete)

	categories := api.Group("/categories")
	categories.POST("", categoryHandler.Create)
	categories.GET("", categoryHandler.List)
	categories.GET("/:id", categoryHandler.GetByID)
	categories.DELETE("/:id", categoryHandler.Delete)

	return &testApp{db: db, codec: codec, e: e}
}

func (a *testApp) createTenant(t *testing.T, name, domain string) *model.Tenant {
	t.Helper()
	tenant := model.Tenant{Name: name, Domain: domain, IsActive: true}
	if err := a.db.Create(&tenant).Error; err != nil {
		t.Fatalf("failed to create tenant %s: %v", domain, err)
	}
	return &tenant
}

func (a *testApp) createUser(t *testing.T, tenant *model.Tenant, email, password string, superuser bool) *model.User {
	t.Helper()
	hashed, err := hash.Password(password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := model.User{
		Email:       email,
		Password:    hashed,
		IsSuperuser: superuser,
		IsActive:    true,
		TenantID:    tenant.ID,
	}
	if err := a.db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", email, err)
	}
	return &user
}

func (a *testApp) token(t *testing.T, user *model.User, tenant *model.Tenant) string {
	t.Helper()
	token, err := a.codec.Issue(user.Email, tenant.ID, user.IsSuperuser)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	return token
}

// doJSON performs a JSON request against the app. Empty domain or token
// leaves the corresponding header unset.
func (a *testApp) doJSON(t *testing.T, method, path, domain, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if domain != "" {
		req.Header.Set(middleware.TenantHeader, domain)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

// doLogin posts the form-encoded credentials to /token.
func (a *testApp) doLogin(t *testing.T, domain, email, password string) *httptest.ResponseRecorder {
	t.Helper()

	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	if domain != "" {
		req.Header.Set(middleware.TenantHeader, domain)
	}

	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response body %q: %v", rec.Body.String(), err)
	}
	return body
}
