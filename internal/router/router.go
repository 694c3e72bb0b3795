package router

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"fintrack/internal/auth"
	"fintrack/internal/config"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/handler"
	"fintrack/internal/model"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	jwtService *auth.JWTService,
	sessionStore auth.SessionStoreInterface,
	authHandler *handler.AuthHandler,
	oauthHandler *handler.OAuthHandler,
	userHandler *handler.UserHandler,
	profileHandler *handler.ProfileHandler,
	transactionHandler *handler.TransactionHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Stored avatars are served as static files.
	e.Static("/media/avatars", cfg.UploadDir)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.GET("/auth/oauth/:provider", oauthHandler.Start)
	api.GET("/auth/oauth/:provider/callback", oauthHandler.Callback)

	// Secured routes (require a live, non-revoked access token)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		ParseTokenFunc: parseToken(jwtService, sessionStore),
	}))

	secured.POST("/auth/logout", authHandler.Logout)
	secured.GET("/me", userHandler.Me)

	// Ledger routes
	secured.GET("/transactions", transactionHandler.List)
	secured.POST("/transactions", transactionHandler.Create)
	secured.PUT("/transactions/:id", transactionHandler.Update)
	secured.DELETE("/transactions/:id", transactionHandler.Delete)
	secured.GET("/summary", transactionHandler.Summary)

	// Profile routes
	secured.GET("/profile", profileHandler.Get)
	secured.PUT("/profile", profileHandler.Update)

	// Admin routes
	admin := secured.Group("/users", requireAdmin)
	admin.GET("", userHandler.ListUsers)
	admin.DELETE("/:id", userHandler.DeleteUser)
}

// parseToken validates the access token and rejects tokens revoked by logout.
// The returned claims land in the echo context under the default "user" key.
func parseToken(jwtService *auth.JWTService, sessions auth.SessionStoreInterface) func(c echo.Context, tokenString string) (interface{}, error) {
	return func(c echo.Context, tokenString string) (interface{}, error) {
		claims, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			return nil, err
		}
		if claims.ID != "" {
			if blacklisted, _ := sessions.IsAccessTokenBlacklisted(c.Request().Context(), claims.ID); blacklisted {
				return nil, errors.New("token has been revoked")
			}
		}
		return claims, nil
	}
}

// requireAdmin gates administrative routes on the admin role.
func requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := c.Get("user").(*auth.Claims)
		if !ok || claims.Role != model.RoleAdmin {
			httpErr := apperrors.MapErrorToHTTP(apperrors.ErrAdminOnly)
			return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
		}
		return next(c)
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
