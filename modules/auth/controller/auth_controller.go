package controller

import (
	"net/http"

	"dateplanner-api/core/controller"
	"dateplanner-api/core/errors"
	"dateplanner-api/core/logger"
	"dateplanner-api/core/utils"
	"dateplanner-api/modules/auth/dto"
	"dateplanner-api/modules/auth/service"
	"dateplanner-api/modules/auth/validator"

	"github.com/labstack/echo/v4"
)

type AuthController struct {
	controller.BaseController
	AuthService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{
		BaseController: controller.NewBaseController(),
		AuthService:    authService,
	}
}

func (controller *AuthController) Register(c echo.Context) error {
	ctx := c.Request().Context()

	requestData := new(dto.RegisterRequest)
	if err := c.Bind(requestData); err != nil {
		return controller.BadRequest(errors.ErrInvalidRequestData, "Invalid request data", nil)
	}

	validationResult := validator.ValidateRegisterRequest(requestData)
	if validationResult.HasError() {
		return controller.BadRequest(errors.ErrInvalidInput, "Invalid request data", validationResult)
	}

	registerResponse, err := controller.AuthService.Register(ctx, requestData)
	if err != nil {
		return controller.ErrorResponse(c, err)
	}

	return controller.CreatedResponse(c, registerResponse, "Register success")
}

func (controller *AuthController) Login(c echo.Context) error {
	ctx := c.Request().Context()

	requestData := new(dto.LoginRequest)
	if err := c.Bind(requestData); err != nil {
		return controller.BadRequest(errors.ErrInvalidRequestData, "Invalid request data", nil)
	}

	validationResult := validator.ValidateLoginRequest(requestData)
	if validationResult.HasError() {
		return controller.BadRequest(errors.ErrInvalidInput, "Invalid request data", validationResult)
	}

	loginResponse, err := controller.AuthService.Login(ctx, requestData)
	if err != nil {
		return controller.ErrorResponse(c, err)
	}

	return controller.SuccessResponse(c, loginResponse, "Login success")
}

func (controller *AuthController) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	token, ok := utils.GetTokenFromHeader(c.Request().Header.Get(echo.HeaderAuthorization))
	if !ok {
		return controller.BadRequest(errors.ErrInvalidRequestData, "Invalid request data", nil)
	}

	if errLogout := controller.AuthService.Logout(ctx, token); errLogout != nil {
		logger.Error("AuthController:Logout:Error", "error", errLogout)
		return controller.ErrorResponse(c, errLogout)
	}

	return controller.SuccessResponse(c, nil, "Logout success")
}

func (controller *AuthController) RefreshToken(c echo.Context) error {
	ctx := c.Request().Context()

	token, ok := utils.GetTokenFromHeader(c.Request().Header.Get(echo.HeaderAuthorization))
	if !ok {
		return controller.BadRequest(errors.ErrInvalidRequestData, "Invalid token", nil)
	}

	refreshTokenResponse, errRefresh := controller.AuthService.RefreshToken(ctx, token)
	if errRefresh != nil {
		return controller.ErrorResponse(c, errRefresh)
	}

	return controller.SuccessResponse(c, refreshTokenResponse, "Refresh token success")
}

func (controller *AuthController) Me(c echo.Context) error {
	userID, err := controller.UserID(c)
	if err != nil {
		return controller.ErrorResponse(c, err)
	}

	user, errGet := controller.AuthService.Me(c.Request().Context(), userID)
	if errGet != nil {
		return controller.ErrorResponse(c, errGet)
	}

	return controller.SuccessResponse(c, user, "get user success")
}

// GoogleLogin starts the sign-in flow for an anonymous visitor.
func (controller *AuthController) GoogleLogin(c echo.Context) error {
	authURL, err := controller.AuthService.GetGoogleAuthURL(c.Request().Context(), nil, c.QueryParam("platform"), c.QueryParam("redirect_uri"))
	if err != nil {
		return controller.ErrorResponse(c, err)
	}

	if c.QueryParam("redirect") == "true" {
		return c.Redirect(http.StatusFound, authURL)
	}
	return controller.SuccessResponse(c, dto.GoogleAuthURLResponse{AuthURL: authURL}, "Google auth url")
}

// GoogleConnectURL starts the calendar connect flow for the signed-in user.
func (controller *AuthController) GoogleConnectURL(c echo.Context) error {
	userID, err := controller.UserID(c)
	if err != nil {
		return controller.ErrorResponse(c, err)
	}

	authURL, errURL := controller.AuthService.GetGoogleAuthURL(c.Request().Context(), &userID, c.QueryParam("platform"), c.QueryParam("redirect_uri"))
	if errURL != nil {
		return controller.ErrorResponse(c, errURL)
	}

	return controller.SuccessResponse(c, dto.GoogleAuthURLResponse{AuthURL: authURL}, "Google auth url")
}

// GoogleCallback handles the OAuth callback from Google
func (controller *AuthController) GoogleCallback(c echo.Context) error {
	ctx := c.Request().Context()

	code := c.QueryParam("code")
	state := c.QueryParam("state")

	if errorParam := c.QueryParam("error"); errorParam != "" {
		logger.Error("AuthController:GoogleCallback:OAuthError", "error", errorParam, "description", c.QueryParam("error_description"))
		return controller.BadRequest(errors.ErrInvalidRequestData, "Google OAuth error: "+errorParam)
	}

	if code == "" {
		return controller.BadRequest(errors.ErrInvalidRequestData, "authorization code is required")
	}
	if state == "" {
		return controller.BadRequest(errors.ErrInvalidRequestData, "state parameter is required")
	}

	result, err := controller.AuthService.HandleGoogleCallback(ctx, code, state)
	if err != nil {
		return controller.ErrorResponse(c, err)
	}

	return controller.SuccessResponse(c, result, "Google callback success")
}
