package dateplan

import (
	"dateplanner-api/core/config"
	"dateplanner-api/core/logger"
	"dateplanner-api/core/metrics"
	"dateplanner-api/core/middleware"
	"dateplanner-api/modules/dateplan/client"
	"dateplanner-api/modules/dateplan/controller"
	"dateplanner-api/modules/dateplan/router"
	"dateplanner-api/modules/dateplan/service"

	"github.com/labstack/echo/v4"
)

// Init picks real or mock providers from configuration and mounts the
// planner routes.
func Init(public, private *echo.Group, mw *middleware.Middleware, cfg *config.Config, m *metrics.Metrics,
	couples service.CoupleLookup, calendar service.ScheduleFetcher, notifier service.Notifier) *service.DatePlanService {
	var weather client.WeatherProvider = client.NewMockWeatherClient()
	if cfg.Providers.UseRealWeather {
		weather = client.NewOpenWeatherClient(cfg.Weather.APIKey, cfg.Weather.BaseURL)
	}

	var places client.PlacesProvider = client.NewMockPlacesClient()
	if cfg.Providers.UseRealPlaces {
		places = client.NewGooglePlacesClient(cfg.GoogleAPI.MapsAPIKey)
	}

	var llm client.LLMProvider = client.NewMockLLMClient()
	if cfg.Providers.UseRealLLM {
		llm = client.NewOpenAIClient(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.BaseURL)
	}

	logger.Info("DatePlan:Init", "weather", weather.Name(), "places", places.Name(), "llm", llm.Name())

	svc := service.NewDatePlanService(couples, calendar, weather, llm, places, notifier, m, cfg.Planner)
	ctrl := controller.NewDatePlanController(svc)

	router.NewDatePlanRouter(ctrl).Register(public, private, mw)

	return svc
}
