package notification

import (
	"dateplanner-api/core/database"
	"dateplanner-api/core/middleware"
	"dateplanner-api/core/queue"
	"dateplanner-api/modules/notification/controller"
	"dateplanner-api/modules/notification/repository"
	"dateplanner-api/modules/notification/router"
	"dateplanner-api/modules/notification/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Group, db database.IDatabase, mw *middleware.Middleware, enqueuer queue.Enqueuer) *service.NotificationService {
	repo := repository.NewNotificationRepository(db)
	svc := service.NewNotificationService(repo, enqueuer)
	ctrl := controller.NewNotificationController(svc)

	router.NewNotificationRouter(ctrl).Register(e, mw)

	return svc
}
