package calendar

import (
	"dateplanner-api/core/config"
	"dateplanner-api/core/database"
	"dateplanner-api/core/logger"
	"dateplanner-api/core/metrics"
	"dateplanner-api/core/middleware"
	"dateplanner-api/modules/calendar/controller"
	"dateplanner-api/modules/calendar/provider"
	"dateplanner-api/modules/calendar/repository"
	"dateplanner-api/modules/calendar/router"
	"dateplanner-api/modules/calendar/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Group, db database.IDatabase, mw *middleware.Middleware, cfg *config.Config, m *metrics.Metrics) *service.CalendarService {
	repo := repository.NewCalendarRepository(db)

	var p provider.Provider
	if cfg.Providers.UseRealCalendar {
		tokens := provider.NewTokenManager(provider.GoogleOAuthConfig(cfg.GoogleAPI), repo)
		p = provider.NewGoogleProvider(tokens)
	} else {
		p = provider.NewFixtureProvider(cfg.Providers.CalendarFixture, provider.NewSourceFetcher(cfg.Storage))
	}
	logger.Info("Calendar:Init", "provider", p.Name())

	svc := service.NewCalendarService(repo, p, m, cfg.Planner.ExternalCallTimeout)
	ctrl := controller.NewCalendarController(svc, cfg.Planner.MinSlotHours)

	router.NewCalendarRouter(ctrl).Register(e, mw)

	return svc
}
