package provider

import (
	"context"
	"fmt"
	"time"

	"dateplanner-api/core/constants"
	"dateplanner-api/core/logger"
	"dateplanner-api/modules/calendar/entity"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// TokenStore persists refreshed credentials.
type TokenStore interface {
	UpdateConnection(ctx context.Context, conn *entity.CalendarConnection) error
}

// TokenManager hands out valid access tokens, refreshing through the OAuth
// token endpoint when the stored one is near expiry. Refreshes for the same
// user are collapsed into a single request.
type TokenManager struct {
	oauth *oauth2.Config
	store TokenStore
	group singleflight.Group
	now   func() time.Time
}

func NewTokenManager(oauth *oauth2.Config, store TokenStore) *TokenManager {
	return &TokenManager{oauth: oauth, store: store, now: time.Now}
}

func (m *TokenManager) Token(ctx context.Context, conn *entity.CalendarConnection) (*oauth2.Token, error) {
	if conn.TokenValid(m.now(), constants.CalendarTokenRefreshSkew) {
		return &oauth2.Token{AccessToken: conn.AccessToken, Expiry: conn.TokenExpiresAt, TokenType: "Bearer"}, nil
	}
	if conn.RefreshToken == "" {
		return nil, fmt.Errorf("calendar connection for user %s has no refresh token", conn.UserID)
	}

	v, err, shared := m.group.Do(conn.UserID.String(), func() (any, error) {
		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.DefaultTimeout)
		defer cancel()

		logger.Info("TokenManager:Refresh:Start", "user_id", conn.UserID)
		tok, err := m.oauth.TokenSource(refreshCtx, &oauth2.Token{RefreshToken: conn.RefreshToken}).Token()
		if err != nil {
			logger.Error("TokenManager:Refresh:Error", "user_id", conn.UserID, "error", err)
			return nil, err
		}

		updated := *conn
		updated.AccessToken = tok.AccessToken
		updated.TokenExpiresAt = tok.Expiry
		if tok.RefreshToken != "" {
			updated.RefreshToken = tok.RefreshToken
		}
		if err := m.store.UpdateConnection(refreshCtx, &updated); err != nil {
			logger.Error("TokenManager:Refresh:Persist:Error", "user_id", conn.UserID, "error", err)
		}
		return tok, nil
	})
	if err != nil {
		return nil, fmt.Errorf("refresh calendar token: %w", err)
	}

	tok := v.(*oauth2.Token)
	conn.AccessToken = tok.AccessToken
	conn.TokenExpiresAt = tok.Expiry
	if tok.RefreshToken != "" {
		conn.RefreshToken = tok.RefreshToken
	}
	logger.Debug("TokenManager:Refresh:Done", "user_id", conn.UserID, "shared", shared)
	return tok, nil
}
