package controller

import (
	"dateplanner-api/core/controller"
	"dateplanner-api/core/errors"
	"dateplanner-api/modules/dateplan/dto"
	"dateplanner-api/modules/dateplan/service"

	"github.com/labstack/echo/v4"
)

type DatePlanController struct {
	controller.BaseController
	DatePlanService *service.DatePlanService
}

func NewDatePlanController(svc *service.DatePlanService) *DatePlanController {
	return &DatePlanController{
		BaseController:  controller.NewBaseController(),
		DatePlanService: svc,
	}
}

// GenerateDatePlan is the unauthenticated, calendar-free planner.
// POST /api/v1/public/dates/generate-date-plan
func (controller *DatePlanController) GenerateDatePlan(c echo.Context) error {
	requestData := new(dto.DatePlanRequest)
	if err := c.Bind(requestData); err != nil {
		return controller.BadRequest(errors.ErrInvalidRequestData, "Invalid request data")
	}

	result, err := controller.DatePlanService.GeneratePlan(c.Request().Context(), requestData)
	if err != nil {
		return controller.ErrorResponse(c, err)
	}

	return controller.SuccessResponse(c, result, "Date plan generated")
}

// GenerateCoupleDatePlan plans around both partners' calendars.
// POST /api/v1/private/dates/generate-couple-date-plan
func (controller *DatePlanController) GenerateCoupleDatePlan(c echo.Context) error {
	userID, err := controller.UserID(c)
	if err != nil {
		return controller.ErrorResponse(c, err)
	}

	requestData := new(dto.CoupleDatePlanRequest)
	if err := c.Bind(requestData); err != nil {
		return controller.BadRequest(errors.ErrInvalidRequestData, "Invalid request data")
	}

	result, err := controller.DatePlanService.GenerateCoupleDatePlan(c.Request().Context(), userID, requestData)
	if err != nil {
		return controller.ErrorResponse(c, err)
	}

	return controller.SuccessResponse(c, result, "Date plan generated")
}
