package router

import (
	"dateplanner-api/core/middleware"
	"dateplanner-api/modules/auth/controller"

	"github.com/labstack/echo/v4"
)

type AuthRouter struct {
	controller *controller.AuthController
}

func NewAuthRouter(controller *controller.AuthController) *AuthRouter {
	return &AuthRouter{controller: controller}
}

// Register mounts public routes on public and authenticated ones on private.
func (r *AuthRouter) Register(public *echo.Group, private *echo.Group, mw *middleware.Middleware) {
	auth := public.Group("/auth")
	auth.POST("/register", r.controller.Register)
	auth.POST("/login", r.controller.Login)
	auth.POST("/refresh-token", r.controller.RefreshToken)
	auth.GET("/google/login", r.controller.GoogleLogin)
	auth.GET("/google/callback", r.controller.GoogleCallback)

	me := private.Group("/auth", mw.AuthMiddleware())
	me.GET("/me", r.controller.Me)
	me.POST("/logout", r.controller.Logout)
	me.GET("/google/url", r.controller.GoogleConnectURL)
}
