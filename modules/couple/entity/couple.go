package entity

import (
	"time"

	"dateplanner-api/core/entity"

	"github.com/google/uuid"
)

type Couple struct {
	entity.BaseEntity
	Partner1ID uuid.UUID `db:"partner1_id" json:"partner1_id"`
	Partner2ID uuid.UUID `db:"partner2_id" json:"partner2_id"`
}

// PartnerOf returns the other member of the couple.
func (c *Couple) PartnerOf(userID uuid.UUID) uuid.UUID {
	if c.Partner1ID == userID {
		return c.Partner2ID
	}
	return c.Partner1ID
}

type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusExpired  InvitationStatus = "expired"
)

type Invitation struct {
	entity.BaseEntity
	InviterID    uuid.UUID        `db:"inviter_id" json:"inviter_id"`
	InviteeEmail string           `db:"invitee_email" json:"invitee_email"`
	Token        string           `db:"token" json:"token"`
	Status       InvitationStatus `db:"status" json:"status"`
	ExpiresAt    time.Time        `db:"expires_at" json:"expires_at"`
}

func (i *Invitation) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
