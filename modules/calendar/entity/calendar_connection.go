package entity

import (
	"time"

	"dateplanner-api/core/entity"

	"github.com/google/uuid"
)

// CalendarConnection is a user's stored calendar credential.
type CalendarConnection struct {
	entity.BaseEntity
	UserID         uuid.UUID `db:"user_id" json:"user_id"`
	Provider       string    `db:"provider" json:"provider"`
	AccessToken    string    `db:"access_token" json:"-"`
	RefreshToken   string    `db:"refresh_token" json:"-"`
	TokenExpiresAt time.Time `db:"token_expires_at" json:"token_expires_at"`
	CalendarEmail  string    `db:"calendar_email" json:"calendar_email"`
	IsActive       bool      `db:"is_active" json:"is_active"`
}

// TokenValid reports whether the access token is usable for at least skew more.
func (c *CalendarConnection) TokenValid(now time.Time, skew time.Duration) bool {
	return c.AccessToken != "" && now.Before(c.TokenExpiresAt.Add(-skew))
}
