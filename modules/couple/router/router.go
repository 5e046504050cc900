package router

import (
	"dateplanner-api/core/middleware"
	"dateplanner-api/modules/couple/controller"

	"github.com/labstack/echo/v4"
)

type CoupleRouter struct {
	controller *controller.CoupleController
}

func NewCoupleRouter(controller *controller.CoupleController) *CoupleRouter {
	return &CoupleRouter{controller: controller}
}

func (r *CoupleRouter) Register(e *echo.Group, mw *middleware.Middleware) {
	group := e.Group("/couples", mw.AuthMiddleware())

	group.POST("/invite", r.controller.CreateInvitation)
	group.POST("/accept", r.controller.AcceptInvitation)
	group.GET("/partner", r.controller.GetPartner)
}
