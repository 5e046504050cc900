package dto

import (
	"time"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	TokenType    string        `json:"token_type"`
	User         *UserResponse `json:"user,omitempty"`
}

type RegisterResponse = LoginResponse

type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  *string   `json:"full_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type GoogleAuthURLResponse struct {
	AuthURL string `json:"auth_url"`
}

// GoogleCallbackResponse carries session tokens for the login flow; the
// connect flow only reports that the calendar was linked.
type GoogleCallbackResponse struct {
	*LoginResponse
	CalendarConnected bool   `json:"calendar_connected"`
	RedirectURI       string `json:"redirect_uri,omitempty"`
}
