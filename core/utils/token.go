package utils

import (
	stdErrors "errors"
	"fmt"
	"strings"
	"time"

	"dateplanner-api/core/config"
	"dateplanner-api/core/constants"
	"dateplanner-api/core/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email,omitempty"`
	Scope  string    `json:"scope"`
	jwt.RegisteredClaims
}

// OAuthStateClaims is the signed payload carried through the OAuth round
// trip in the state parameter.
type OAuthStateClaims struct {
	UserID      *uuid.UUID `json:"user_id,omitempty"`
	Platform    string     `json:"platform,omitempty"`
	RedirectURI string     `json:"redirect_uri,omitempty"`
	Nonce       string     `json:"nonce"`
	jwt.RegisteredClaims
}

func secret() ([]byte, error) {
	cfg, ok := config.GetSafe()
	if !ok || cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt secret not configured")
	}
	return []byte(cfg.JWT.Secret), nil
}

func expirationFor(scope string) time.Duration {
	cfg, _ := config.GetSafe()
	switch scope {
	case constants.ScopeTokenRefresh:
		if cfg != nil && cfg.JWT.RefreshExpiration > 0 {
			return cfg.JWT.RefreshExpiration
		}
		return 30 * 24 * time.Hour
	case constants.ScopeOAuthState:
		return constants.OAuthStateTTL
	default:
		if cfg != nil && cfg.JWT.AccessExpiration > 0 {
			return cfg.JWT.AccessExpiration
		}
		return time.Hour
	}
}

// GenerateToken signs an HS256 token whose subject is the user id.
func GenerateToken(userID uuid.UUID, email string, scope string) (string, error) {
	key, err := secret()
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := TokenClaims{
		UserID: userID,
		Email:  email,
		Scope:  scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expirationFor(scope))),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

func ValidateAndParseToken(tokenString string) (*TokenClaims, *errors.AppError) {
	key, err := secret()
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "token validation unavailable", err)
	}

	claims := &TokenClaims{}
	_, err = jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if stdErrors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.NewAppError(errors.ErrTokenExpired, "token expired", err)
		}
		return nil, errors.NewAppError(errors.ErrInvalidTokenFormat, "invalid token", err)
	}
	return claims, nil
}

func SignOAuthState(state OAuthStateClaims) (string, error) {
	key, err := secret()
	if err != nil {
		return "", err
	}
	now := time.Now()
	state.IssuedAt = jwt.NewNumericDate(now)
	state.ExpiresAt = jwt.NewNumericDate(now.Add(expirationFor(constants.ScopeOAuthState)))
	state.Subject = constants.ScopeOAuthState
	return jwt.NewWithClaims(jwt.SigningMethodHS256, state).SignedString(key)
}

func ParseOAuthState(raw string) (*OAuthStateClaims, error) {
	key, err := secret()
	if err != nil {
		return nil, err
	}
	claims := &OAuthStateClaims{}
	_, err = jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithSubject(constants.ScopeOAuthState))
	if err != nil {
		return nil, err
	}
	if claims.Nonce == "" {
		return nil, fmt.Errorf("oauth state missing nonce")
	}
	return claims, nil
}

// GetTokenFromHeader extracts the bearer token from an Authorization header value.
func GetTokenFromHeader(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}
