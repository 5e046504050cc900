package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"dateplanner-api/core/constants"
	"dateplanner-api/core/errors"
	"dateplanner-api/core/logger"
	"dateplanner-api/core/utils"
	authRepository "dateplanner-api/modules/auth/repository"
	"dateplanner-api/modules/couple/dto"
	"dateplanner-api/modules/couple/entity"
	"dateplanner-api/modules/couple/repository"
	notificationDto "dateplanner-api/modules/notification/dto"

	"github.com/google/uuid"
)

// Notifier delivers in-app notifications.
type Notifier interface {
	Notify(ctx context.Context, req *notificationDto.CreateNotificationRequest) error
}

type CoupleService struct {
	repo     repository.CoupleRepository
	users    authRepository.UserRepository
	notifier Notifier
	now      func() time.Time
}

func NewCoupleService(repo repository.CoupleRepository, users authRepository.UserRepository, notifier Notifier) *CoupleService {
	return &CoupleService{
		repo:     repo,
		users:    users,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateInvitation invites inviteeEmail to form a couple with inviterID. A
// pending invitation to the same address is returned unchanged.
func (s *CoupleService) CreateInvitation(ctx context.Context, inviterID uuid.UUID, req *dto.CreateInvitationRequest) (*dto.InvitationResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.InviteeEmail))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "invitee_email must be a valid email", err)
	}

	couple, err := s.repo.GetCoupleByUserID(ctx, inviterID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to check couple", err)
	}
	if couple != nil {
		return nil, errors.NewAppError(errors.ErrAlreadyInCouple, "You are already in a couple", nil)
	}

	inviter, err := s.users.GetUserByID(ctx, inviterID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to get user", err)
	}
	if inviter == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "User not found", nil)
	}
	if strings.EqualFold(inviter.Email, email) {
		return nil, errors.NewAppError(errors.ErrSelfInvitation, "You cannot invite yourself", nil)
	}

	existing, err := s.repo.GetPendingInvitation(ctx, inviterID, email)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to check invitations", err)
	}
	if existing != nil && !existing.Expired(s.now()) {
		return toInvitationResponse(existing), nil
	}

	invitation := &entity.Invitation{
		InviterID:    inviterID,
		InviteeEmail: email,
		Token:        utils.GenerateRandomString(constants.CoupleInvitationTokenLength),
		Status:       entity.InvitationStatusPending,
		ExpiresAt:    s.now().Add(constants.CoupleInvitationTTL),
	}
	if err := s.repo.CreateInvitation(ctx, invitation); err != nil {
		logger.Error("CoupleService:CreateInvitation:Error", "inviter_id", inviterID, "error", err)
		return nil, errors.NewAppError(errors.ErrCreateFailed, "failed to create invitation", err)
	}

	s.notifyInvitee(ctx, inviter.Email, invitation)

	return toInvitationResponse(invitation), nil
}

// AcceptInvitation joins userID with the inviter behind token.
func (s *CoupleService) AcceptInvitation(ctx context.Context, userID uuid.UUID, token string) (*dto.CoupleResponse, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "token is required", nil)
	}

	invitation, err := s.repo.GetInvitationByToken(ctx, token)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to get invitation", err)
	}
	if invitation == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Invitation not found", nil)
	}
	if invitation.Status != entity.InvitationStatusPending {
		return nil, errors.NewAppError(errors.ErrInvitationInvalid, "This invitation has already been used", nil)
	}
	if invitation.Expired(s.now()) {
		if err := s.repo.UpdateInvitationStatus(ctx, invitation.ID, entity.InvitationStatusExpired); err != nil {
			logger.Error("CoupleService:AcceptInvitation:Expire:Error", "invitation_id", invitation.ID, "error", err)
		}
		return nil, errors.NewAppError(errors.ErrInvitationExpired, "This invitation has expired", nil)
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to get user", err)
	}
	if user == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "User not found", nil)
	}
	if !strings.EqualFold(user.Email, invitation.InviteeEmail) {
		return nil, errors.NewAppError(errors.ErrInvitationMismatch, "This invitation was sent to a different email address", nil)
	}

	for _, id := range []uuid.UUID{userID, invitation.InviterID} {
		couple, err := s.repo.GetCoupleByUserID(ctx, id)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrGetFailed, "failed to check couple", err)
		}
		if couple != nil {
			return nil, errors.NewAppError(errors.ErrAlreadyInCouple, "One of the users is already in a couple", nil)
		}
	}

	inviter, err := s.users.GetUserByID(ctx, invitation.InviterID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to get inviter", err)
	}
	if inviter == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Inviter not found", nil)
	}

	couple, err := s.repo.CreateCouple(ctx, invitation, userID)
	if err != nil {
		logger.Error("CoupleService:AcceptInvitation:CreateCouple:Error", "invitation_id", invitation.ID, "error", err)
		return nil, errors.NewAppError(errors.ErrCreateFailed, "failed to create couple", err)
	}
	logger.Info("CoupleService:AcceptInvitation:Linked", "couple_id", couple.ID)

	s.notify(ctx, &notificationDto.CreateNotificationRequest{
		UserID:  inviter.ID,
		Title:   "Invitation accepted",
		Message: fmt.Sprintf("%s accepted your invitation", user.Email),
		Type:    constants.NotificationTypeCoupleAccepted,
		Data:    map[string]any{"couple_id": couple.ID.String()},
	})

	return &dto.CoupleResponse{
		CoupleID: couple.ID,
		Partner: dto.PartnerResponse{
			ID:        inviter.ID,
			Email:     inviter.Email,
			FullName:  inviter.FullName,
			CreatedAt: inviter.CreatedAt,
		},
		CreatedAt: couple.CreatedAt,
	}, nil
}

// GetPartner returns the couple of userID viewed from their side.
func (s *CoupleService) GetPartner(ctx context.Context, userID uuid.UUID) (*dto.CoupleResponse, error) {
	couple, err := s.repo.GetCoupleByUserID(ctx, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to get couple", err)
	}
	if couple == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "You are not currently in a couple", nil)
	}

	partnerID := couple.PartnerOf(userID)
	partner, err := s.users.GetUserByID(ctx, partnerID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to get partner", err)
	}
	if partner == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Partner not found", nil)
	}

	return &dto.CoupleResponse{
		CoupleID: couple.ID,
		Partner: dto.PartnerResponse{
			ID:        partner.ID,
			Email:     partner.Email,
			FullName:  partner.FullName,
			CreatedAt: partner.CreatedAt,
		},
		CreatedAt: couple.CreatedAt,
	}, nil
}

// GetCoupleByUserID fails with ErrNotInCouple when userID has no partner.
func (s *CoupleService) GetCoupleByUserID(ctx context.Context, userID uuid.UUID) (*entity.Couple, error) {
	couple, err := s.repo.GetCoupleByUserID(ctx, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to get couple", err)
	}
	if couple == nil {
		return nil, errors.NewAppError(errors.ErrNotInCouple, "You are not currently in a couple", nil)
	}
	return couple, nil
}

// ExpireStaleInvitations flips overdue pending invitations to expired.
func (s *CoupleService) ExpireStaleInvitations(ctx context.Context) error {
	count, err := s.repo.ExpireInvitations(ctx, s.now())
	if err != nil {
		return fmt.Errorf("expire invitations: %w", err)
	}
	if count > 0 {
		logger.Info("CoupleService:ExpireStaleInvitations", "expired", count)
	}
	return nil
}

func (s *CoupleService) notifyInvitee(ctx context.Context, inviterEmail string, invitation *entity.Invitation) {
	invitee, err := s.users.GetUserByEmail(ctx, invitation.InviteeEmail)
	if err != nil {
		logger.Warn("CoupleService:notifyInvitee:LookupFailed", "error", err)
		return
	}
	if invitee == nil {
		return
	}
	s.notify(ctx, &notificationDto.CreateNotificationRequest{
		UserID:  invitee.ID,
		Title:   "New couple invitation",
		Message: fmt.Sprintf("%s invited you to plan dates together", inviterEmail),
		Type:    constants.NotificationTypeCoupleInvitation,
		Data: map[string]any{
			"invitation_id": invitation.ID.String(),
			"token":         invitation.Token,
		},
	})
}

func (s *CoupleService) notify(ctx context.Context, req *notificationDto.CreateNotificationRequest) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, req); err != nil {
		logger.Error("CoupleService:notify:Error", "user_id", req.UserID, "type", req.Type, "error", err)
	}
}

func toInvitationResponse(invitation *entity.Invitation) *dto.InvitationResponse {
	return &dto.InvitationResponse{
		InvitationID: invitation.ID,
		InviteeEmail: invitation.InviteeEmail,
		Token:        invitation.Token,
		Status:       string(invitation.Status),
		ExpiresAt:    invitation.ExpiresAt,
	}
}
