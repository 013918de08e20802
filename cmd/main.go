package main

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"qontrolla/internal/auth"
	"qontrolla/internal/handler"
	"qontrolla/internal/middleware"
	"qontrolla/internal/model"
	"qontrolla/pkg/config"
	"qontrolla/pkg/database"
	"qontrolla/pkg/jwtutil"
	"qontrolla/pkg/logger"
	"qontrolla/prometheus"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting qontrolla...", zap.String("environment", cfg.Server.Env))

	// Initialize database
	db, err := database.InitDB(&cfg.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	if err := database.MigrateModels(
		&model.Tenant{},
		&model.User{},
		&model.Client{},
		&model.Category{},
		&model.Project{},
		&model.Task{},
	); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Token codec
	codec, err := jwtutil.NewTokenCodec(&cfg.JWT)
	if err != nil {
		log.Fatal("Failed to initialize token codec", zap.Error(err))
	}

	// Authentication pipeline
	resolver := auth.NewTenantResolver(db)
	authenticator := auth.NewAuthenticator(db, codec)
	registrar := auth.NewTenantRegistrar(db)

	resolveTenant := middleware.ResolveTenant(resolver)
	authenticate := middleware.Authenticate(authenticator)
	requireSuperuser := middleware.RequireSuperuser()

	// Handlers
	tokenHandler := handler.NewTokenHandler(db, codec)
	tenantHandler := handler.NewTenantHandler(db, registrar)
	userHandler := handler.NewUserHandler(db)
	clientHandler := handler.NewClientHandler(db)
	projectHandler := handler.NewProjectHandler(db)
	taskHandler := handler.NewTaskHandler(db)
	categoryHandler := handler.NewCategoryHandler(db)

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestID)
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.Metrics)

	// Tenant onboarding - public; the domain travels in the body
	e.POST("/tenants/register", tenantHandler.Register)
	e.PUT("/tenants/current", tenantHandler.UpdateCurrent, resolveTenant, authenticate, requireSuperuser)

	// Token routes - tenant header required, login issues the bearer token
	token := e.Group("/token", resolveTenant)
	token.POST("", tokenHandler.Login)
	token.POST("/refresh_token", tokenHandler.Refresh, authenticate)

	// Tenant-scoped API - every route below needs the tenant header and a
	// valid bearer token for that tenant
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

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
