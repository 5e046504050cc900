package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"dateplanner-api/core/cache"
	"dateplanner-api/core/constants"
	"dateplanner-api/core/errors"
	"dateplanner-api/core/logger"
	"dateplanner-api/core/utils"
	"dateplanner-api/modules/auth/dto"
	"dateplanner-api/modules/auth/entity"
	"dateplanner-api/modules/auth/mapper"
	"dateplanner-api/modules/auth/repository"
	calendarEntity "dateplanner-api/modules/calendar/entity"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// CalendarConnector stores the Google credentials obtained during the OAuth
// callback.
type CalendarConnector interface {
	SaveGoogleConnection(ctx context.Context, userID uuid.UUID, accessToken, refreshToken string, expiresAt time.Time, email string) (*calendarEntity.CalendarConnection, error)
}

type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}

type AuthService struct {
	repo        repository.UserRepository
	cache       cache.Cache
	calendar    CalendarConnector
	oauth       *oauth2.Config
	userInfoURL string
	httpClient  *http.Client
}

func NewAuthService(repo repository.UserRepository, cache cache.Cache, calendar CalendarConnector, oauth *oauth2.Config) *AuthService {
	return &AuthService{
		repo:        repo,
		cache:       cache,
		calendar:    calendar,
		oauth:       oauth,
		userInfoURL: googleUserInfoURL,
		httpClient:  &http.Client{Timeout: constants.DefaultTimeout},
	}
}

// WithUserInfoURL points the Google profile lookup at another endpoint.
func (service *AuthService) WithUserInfoURL(url string) *AuthService {
	service.userInfoURL = url
	return service
}

func (service *AuthService) Register(ctx context.Context, requestData *dto.RegisterRequest) (*dto.RegisterResponse, *errors.AppError) {
	existing, err := service.repo.GetUserByEmail(ctx, requestData.Email)
	if err != nil {
		logger.Error("AuthService:Register:GetUserByEmail:Error", "error", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get user", err)
	}
	if existing != nil {
		return nil, errors.NewAppError(errors.ErrAlreadyExists, "user with email already exists", nil)
	}

	hashedPassword, err := utils.HashPassword(requestData.Password)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to hash password", err)
	}

	user := &entity.User{
		Email:    requestData.Email,
		Password: hashedPassword,
		IsActive: true,
	}
	if name := strings.TrimSpace(requestData.FullName); name != "" {
		user.FullName = &name
	}

	created, err := service.repo.CreateUser(ctx, user)
	if err != nil {
		logger.Error("AuthService:Register:CreateUser:Error", "error", err)
		return nil, errors.NewAppError(errors.ErrCreateFailed, "failed to create user", err)
	}

	logger.Info("AuthService:Register:Success", "user_id", created.ID)
	return service.issueTokens(created)
}

// Login checks the password and locks the account for a while after too
// many failed attempts.
func (service *AuthService) Login(ctx context.Context, requestData *dto.LoginRequest) (*dto.LoginResponse, *errors.AppError) {
	loginKey := strings.ToLower(requestData.Email)

	attempts, found, err := service.cache.Get(ctx, constants.RedisKeyLoginAttempt+loginKey)
	if err != nil {
		logger.Error("AuthService:Login:GetLoginAttempt:Error", "error", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get login attempt", err)
	}
	if found {
		if n, _ := strconv.Atoi(attempts); n >= constants.MaxLoginAttempts {
			return nil, errors.NewAppError(errors.ErrUnauthorized, "too many failed login attempts, try again later", nil)
		}
	}

	user, err := service.repo.GetUserByEmail(ctx, requestData.Email)
	if err != nil {
		logger.Error("AuthService:Login:GetUserByEmail:Error", "error", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get user", err)
	}

	if user == nil || !user.IsActive || !utils.ComparePassword(user.Password, requestData.Password) {
		if _, errIncrement := service.cache.IncrementLoginAttempt(ctx, loginKey); errIncrement != nil {
			logger.Error("AuthService:Login:IncrementLoginAttempt:Error", "error", errIncrement)
			return nil, errors.NewAppError(errors.ErrInternalServer, "failed to increment login attempt", errIncrement)
		}
		return nil, errors.NewAppError(errors.ErrInvalidCredentials, "invalid email or password", nil)
	}

	if err := service.cache.Del(ctx, constants.RedisKeyLoginAttempt+loginKey); err != nil {
		logger.Warn("AuthService:Login:ClearLoginAttempt:Error", "error", err)
	}

	return service.issueTokens(user)
}

// Logout revokes token for the rest of its lifetime.
func (service *AuthService) Logout(ctx context.Context, token string) *errors.AppError {
	ttl := time.Hour
	if claims, appErr := utils.ValidateAndParseToken(token); appErr == nil && claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return nil
	}

	if err := service.cache.AddToTokenBlacklist(ctx, token, ttl); err != nil {
		logger.Error("AuthService:Logout:AddToBlacklist:Error", "error", err)
		return errors.NewAppError(errors.ErrInternalServer, "failed to add token to blacklist", err)
	}
	return nil
}

// RefreshToken rotates a refresh token: the presented one is revoked and a
// new pair is issued.
func (service *AuthService) RefreshToken(ctx context.Context, token string) (*dto.RefreshTokenResponse, *errors.AppError) {
	blacklisted, err := service.cache.IsTokenBlacklisted(ctx, token)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to check token", err)
	}
	if blacklisted {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "token is blacklisted", nil)
	}

	claims, appErr := utils.ValidateAndParseToken(token)
	if appErr != nil {
		return nil, appErr
	}
	if claims.Scope != constants.ScopeTokenRefresh {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "refresh token required", nil)
	}

	user, err := service.repo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get user", err)
	}
	if user == nil || !user.IsActive {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "user not active", nil)
	}

	if appErr := service.Logout(ctx, token); appErr != nil {
		return nil, appErr
	}

	pair, appErr := service.issueTokens(user)
	if appErr != nil {
		return nil, appErr
	}
	return &dto.RefreshTokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

func (service *AuthService) Me(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, *errors.AppError) {
	user, err := service.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get user", err)
	}
	if user == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "user not found", nil)
	}
	return mapper.ToUserDTO(user), nil
}

// GetGoogleAuthURL builds the consent URL. userID is set when an
// authenticated user is connecting a calendar and nil for the login flow.
func (service *AuthService) GetGoogleAuthURL(ctx context.Context, userID *uuid.UUID, platform, redirectURI string) (string, *errors.AppError) {
	if service.oauth == nil || service.oauth.ClientID == "" || service.oauth.ClientSecret == "" {
		return "", errors.NewAppError(errors.ErrInternalServer, "Google OAuth configuration is missing", nil)
	}

	nonce := utils.GenerateRandomString(32)
	if err := service.cache.SaveOAuthNonce(ctx, nonce); err != nil {
		logger.Error("AuthService:GetGoogleAuthURL:SaveOAuthNonce:Error", "error", err)
		return "", errors.NewAppError(errors.ErrInternalServer, "failed to store oauth state", err)
	}

	state, err := utils.SignOAuthState(utils.OAuthStateClaims{
		UserID:      userID,
		Platform:    platform,
		RedirectURI: redirectURI,
		Nonce:       nonce,
	})
	if err != nil {
		return "", errors.NewAppError(errors.ErrInternalServer, "failed to sign oauth state", err)
	}

	return service.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}

// HandleGoogleCallback validates the state, exchanges the code and stores the
// calendar credential. Without a user in the state it also signs the Google
// account in, creating the user on first visit.
func (service *AuthService) HandleGoogleCallback(ctx context.Context, code, state string) (*dto.GoogleCallbackResponse, *errors.AppError) {
	claims, err := utils.ParseOAuthState(state)
	if err != nil {
		logger.Warn("AuthService:HandleGoogleCallback:InvalidState", "error", err)
		return nil, errors.NewAppError(errors.ErrUnauthorized, "invalid or expired state", err)
	}

	fresh, err := service.cache.ConsumeOAuthNonce(ctx, claims.Nonce)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to validate oauth state", err)
	}
	if !fresh {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "oauth state already used", nil)
	}

	token, err := service.oauth.Exchange(ctx, code)
	if err != nil {
		logger.Error("AuthService:HandleGoogleCallback:Exchange:Error", "error", err)
		return nil, errors.NewAppError(errors.ErrInvalidInput, "failed to authenticate with Google", err)
	}

	info, err := service.getGoogleUserInfo(ctx, token.AccessToken)
	if err != nil {
		logger.Error("AuthService:HandleGoogleCallback:GetGoogleUserInfo:Error", "error", err)
		return nil, errors.Upstream("google_userinfo", err)
	}

	user, appErr := service.resolveCallbackUser(ctx, claims.UserID, info)
	if appErr != nil {
		return nil, appErr
	}

	if _, err := service.calendar.SaveGoogleConnection(ctx, user.ID, token.AccessToken, token.RefreshToken, token.Expiry, info.Email); err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			return nil, appErr
		}
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to save Google tokens", err)
	}

	logger.Info("AuthService:HandleGoogleCallback:CalendarConnected",
		"user_id", user.ID,
		"has_refresh_token", token.RefreshToken != "",
		"platform", claims.Platform,
	)

	response := &dto.GoogleCallbackResponse{CalendarConnected: true, RedirectURI: claims.RedirectURI}
	if claims.UserID == nil {
		pair, appErr := service.issueTokens(user)
		if appErr != nil {
			return nil, appErr
		}
		response.LoginResponse = pair
	}
	return response, nil
}

func (service *AuthService) resolveCallbackUser(ctx context.Context, userID *uuid.UUID, info *GoogleUserInfo) (*entity.User, *errors.AppError) {
	if userID != nil {
		user, err := service.repo.GetUserByID(ctx, *userID)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get user", err)
		}
		if user == nil {
			return nil, errors.NewAppError(errors.ErrNotFound, "user not found", nil)
		}
		return user, nil
	}

	if info.Email == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Google account has no email", nil)
	}

	user, err := service.repo.GetUserByEmail(ctx, info.Email)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get user", err)
	}
	if user != nil {
		if info.VerifiedEmail && user.EmailVerifiedAt == nil {
			if err := service.repo.MarkEmailVerified(ctx, user.ID); err != nil {
				logger.Warn("AuthService:HandleGoogleCallback:MarkEmailVerified:Error", "user_id", user.ID, "error", err)
			}
		}
		return user, nil
	}

	hashedPassword, err := utils.HashPassword(utils.GenerateRandomString(32))
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to hash password", err)
	}
	newUser := &entity.User{
		Email:    info.Email,
		Password: hashedPassword,
		IsActive: true,
	}
	if info.Name != "" {
		name := info.Name
		newUser.FullName = &name
	}
	if info.VerifiedEmail {
		now := time.Now()
		newUser.EmailVerifiedAt = &now
	}

	created, err := service.repo.CreateUser(ctx, newUser)
	if err != nil {
		logger.Error("AuthService:HandleGoogleCallback:CreateUser:Error", "error", err)
		return nil, errors.NewAppError(errors.ErrCreateFailed, "failed to create user", err)
	}
	return created, nil
}

func (service *AuthService) getGoogleUserInfo(ctx context.Context, accessToken string) (*GoogleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, service.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := service.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo status %d: %s", resp.StatusCode, string(body))
	}

	var info GoogleUserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (service *AuthService) issueTokens(user *entity.User) (*dto.LoginResponse, *errors.AppError) {
	accessToken, err := utils.GenerateToken(user.ID, user.Email, constants.ScopeTokenAccess)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to generate access token", err)
	}

	refreshToken, err := utils.GenerateToken(user.ID, user.Email, constants.ScopeTokenRefresh)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to generate refresh token", err)
	}

	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		User:         mapper.ToUserDTO(user),
	}, nil
}
