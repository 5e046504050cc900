package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateInvitationRequest struct {
	InviteeEmail string `json:"invitee_email"`
}

type InvitationResponse struct {
	InvitationID uuid.UUID `json:"invitation_id"`
	InviteeEmail string    `json:"invitee_email"`
	Token        string    `json:"token"`
	Status       string    `json:"status"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type AcceptInvitationRequest struct {
	Token string `json:"token"`
}

type PartnerResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  *string   `json:"full_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type CoupleResponse struct {
	CoupleID  uuid.UUID       `json:"couple_id"`
	Partner   PartnerResponse `json:"partner"`
	CreatedAt time.Time       `json:"created_at"`
}
