package entity

import (
	"time"

	"dateplanner-api/core/entity"
)

type User struct {
	entity.BaseEntity
	Email           string     `db:"email" json:"email"`
	Username        *string    `db:"username" json:"username,omitempty"`
	FullName        *string    `db:"full_name" json:"full_name,omitempty"`
	Password        string     `db:"password" json:"-"`
	IsActive        bool       `db:"is_active" json:"is_active"`
	EmailVerifiedAt *time.Time `db:"email_verified_at" json:"email_verified_at,omitempty"`
}
