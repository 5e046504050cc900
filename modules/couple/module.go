package couple

import (
	"dateplanner-api/core/database"
	"dateplanner-api/core/middleware"
	authRepository "dateplanner-api/modules/auth/repository"
	"dateplanner-api/modules/couple/controller"
	"dateplanner-api/modules/couple/repository"
	"dateplanner-api/modules/couple/router"
	"dateplanner-api/modules/couple/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Group, db database.IDatabase, mw *middleware.Middleware, notifier service.Notifier) *service.CoupleService {
	repo := repository.NewCoupleRepository(db)
	users := authRepository.NewUserRepository(db)
	svc := service.NewCoupleService(repo, users, notifier)
	ctrl := controller.NewCoupleController(svc)

	router.NewCoupleRouter(ctrl).Register(e, mw)

	return svc
}
