package router

import (
	"dateplanner-api/core/middleware"
	"dateplanner-api/modules/dateplan/controller"

	"github.com/labstack/echo/v4"
)

type DatePlanRouter struct {
	controller *controller.DatePlanController
}

func NewDatePlanRouter(controller *controller.DatePlanController) *DatePlanRouter {
	return &DatePlanRouter{controller: controller}
}

func (r *DatePlanRouter) Register(public, private *echo.Group, mw *middleware.Middleware) {
	public.Group("/dates").POST("/generate-date-plan", r.controller.GenerateDatePlan)

	private.Group("/dates", mw.AuthMiddleware()).POST("/generate-couple-date-plan", r.controller.GenerateCoupleDatePlan)
}
