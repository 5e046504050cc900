package auth

import (
	"dateplanner-api/core/cache"
	"dateplanner-api/core/config"
	"dateplanner-api/core/database"
	"dateplanner-api/core/logger"
	"dateplanner-api/core/middleware"
	"dateplanner-api/modules/auth/controller"
	"dateplanner-api/modules/auth/repository"
	"dateplanner-api/modules/auth/router"
	"dateplanner-api/modules/auth/service"
	calendarProvider "dateplanner-api/modules/calendar/provider"

	"github.com/labstack/echo/v4"
)

func Init(public *echo.Group, private *echo.Group, db database.IDatabase, cache cache.Cache, mw *middleware.Middleware, cfg *config.Config, calendar service.CalendarConnector) *service.AuthService {
	repo := repository.NewUserRepository(db)

	if cfg.GoogleAPI.ClientID == "" || cfg.GoogleAPI.RedirectURI == "" {
		logger.Info("Auth:Init:GoogleOAuthDisabled", "reason", "Google OAuth credentials not configured in env")
	}
	authService := service.NewAuthService(repo, cache, calendar, calendarProvider.GoogleOAuthConfig(cfg.GoogleAPI))
	ctrl := controller.NewAuthController(authService)

	router.NewAuthRouter(ctrl).Register(public, private, mw)

	return authService
}
