package router

import (
	"dateplanner-api/core/middleware"
	"dateplanner-api/modules/calendar/controller"

	"github.com/labstack/echo/v4"
)

type CalendarRouter struct {
	controller *controller.CalendarController
}

func NewCalendarRouter(controller *controller.CalendarController) *CalendarRouter {
	return &CalendarRouter{controller: controller}
}

func (r *CalendarRouter) Register(e *echo.Group, mw *middleware.Middleware) {
	group := e.Group("/calendar", mw.AuthMiddleware())

	group.GET("/connections", r.controller.GetConnections)
	group.DELETE("/connections/:provider", r.controller.DisconnectCalendar)

	group.GET("/events", r.controller.GetEvents)
	group.GET("/free-slots", r.controller.GetFreeSlots)
	group.POST("/add-event", r.controller.AddEvent)
}
