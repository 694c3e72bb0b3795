package main

import (
	"net/http"
	"os"

	_ "fintrack/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"fintrack/internal/auth"
	"fintrack/internal/cache"
	"fintrack/internal/config"
	"fintrack/internal/db"
	"fintrack/internal/handler"
	"fintrack/internal/logger"
	"fintrack/internal/model"
	"fintrack/internal/repository"
	"fintrack/internal/router"
	"fintrack/internal/service"
)

// @title Fintrack API
// @version 1.0
// @description Personal finance tracker with ownership-scoped transactions, profiles and delegated login.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	log := logger.New(cfg.IsProduction())
	defer func() { _ = log.Sync() }()

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatal("database init", zap.Error(err))
	}

	// Drop tables if RESET_DB environment variable is set
	if os.Getenv("RESET_DB") == "true" {
		log.Info("RESET_DB=true detected, dropping all tables")
		tables := []interface{}{
			&model.Transaction{},
			&model.Profile{},
			&model.User{},
		}
		for _, table := range tables {
			if err := gormDB.Migrator().DropTable(table); err != nil {
				log.Warn("failed to drop table (may not exist)", zap.Error(err))
			}
		}
		log.Info("tables dropped")
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Profile{},
		&model.Transaction{},
	); err != nil {
		log.Fatal("auto-migrate", zap.Error(err))
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	profileRepo := repository.NewProfileRepository(gormDB)
	transactionRepo := repository.NewTransactionRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	sessionStore := auth.NewSessionStore(cacheClient)
	oauthRegistry := auth.NewOAuthRegistry(auth.OAuthCredentials{
		GitHubClientID:     cfg.GitHubClientID,
		GitHubClientSecret: cfg.GitHubClientSecret,
		GoogleClientID:     cfg.GoogleClientID,
		GoogleClientSecret: cfg.GoogleClientSecret,
		RedirectBase:       cfg.OAuthRedirectBase,
	})

	// Initialize services
	profileService := service.NewProfileService(profileRepo, cacheClient, cfg.UploadDir, log)
	authService := service.NewAuthService(userRepo, profileService, jwtService, sessionStore)
	userService := service.NewUserService(userRepo)
	transactionService := service.NewTransactionService(transactionRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	oauthHandler := handler.NewOAuthHandler(oauthRegistry, authService, sessionStore)
	userHandler := handler.NewUserHandler(userService)
	profileHandler := handler.NewProfileHandler(profileService, cfg.UploadDir)
	transactionHandler := handler.NewTransactionHandler(transactionService)

	// Register routes
	router.Register(
		e,
		cfg,
		jwtService,
		sessionStore,
		authHandler,
		oauthHandler,
		userHandler,
		profileHandler,
		transactionHandler,
	)

	addr := ":" + cfg.ServerPort
	log.Info("starting server", zap.String("addr", addr))
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatal("server start", zap.Error(err))
	}
}
