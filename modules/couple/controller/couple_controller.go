package controller

import (
	"dateplanner-api/core/controller"
	"dateplanner-api/core/errors"
	"dateplanner-api/modules/couple/dto"
	"dateplanner-api/modules/couple/service"

	"github.com/labstack/echo/v4"
)

type CoupleController struct {
	controller.BaseController
	service *service.CoupleService
}

func NewCoupleController(service *service.CoupleService) *CoupleController {
	return &CoupleController{
		BaseController: controller.NewBaseController(),
		service:        service,
	}
}

// POST /api/v1/private/couples/invite
func (c *CoupleController) CreateInvitation(ctx echo.Context) error {
	userID, err := c.UserID(ctx)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	req := new(dto.CreateInvitationRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	result, err := c.service.CreateInvitation(ctx.Request().Context(), userID, req)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	return c.CreatedResponse(ctx, result, "Invitation created")
}

// POST /api/v1/private/couples/accept
func (c *CoupleController) AcceptInvitation(ctx echo.Context) error {
	userID, err := c.UserID(ctx)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	req := new(dto.AcceptInvitationRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	result, err := c.service.AcceptInvitation(ctx.Request().Context(), userID, req.Token)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	return c.SuccessResponse(ctx, result, "Invitation accepted")
}

// GET /api/v1/private/couples/partner
func (c *CoupleController) GetPartner(ctx echo.Context) error {
	userID, err := c.UserID(ctx)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	result, err := c.service.GetPartner(ctx.Request().Context(), userID)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	return c.SuccessResponse(ctx, result, "get partner success")
}
