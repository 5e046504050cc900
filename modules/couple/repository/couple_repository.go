package repository

import (
	"context"
	"database/sql"
	stdErrors "errors"
	"strings"
	"time"

	"dateplanner-api/core/database"
	"dateplanner-api/core/logger"
	"dateplanner-api/modules/couple/entity"

	"github.com/google/uuid"
)

// CoupleRepository persists couples and their invitations. Lookups return
// nil, nil when nothing matches.
type CoupleRepository interface {
	GetCoupleByUserID(ctx context.Context, userID uuid.UUID) (*entity.Couple, error)
	// CreateCouple links the inviter and accepter and marks the invitation
	// accepted in one transaction.
	CreateCouple(ctx context.Context, invitation *entity.Invitation, accepterID uuid.UUID) (*entity.Couple, error)

	CreateInvitation(ctx context.Context, invitation *entity.Invitation) error
	GetPendingInvitation(ctx context.Context, inviterID uuid.UUID, inviteeEmail string) (*entity.Invitation, error)
	GetInvitationByToken(ctx context.Context, token string) (*entity.Invitation, error)
	UpdateInvitationStatus(ctx context.Context, id uuid.UUID, status entity.InvitationStatus) error
	ExpireInvitations(ctx context.Context, before time.Time) (int64, error)
}

type coupleRepository struct {
	db database.IDatabase
}

func NewCoupleRepository(db database.IDatabase) CoupleRepository {
	return &coupleRepository{db: db}
}

const invitationColumns = `id, inviter_id, invitee_email, token, status, expires_at, created_at, updated_at`

func (r *coupleRepository) GetCoupleByUserID(ctx context.Context, userID uuid.UUID) (*entity.Couple, error) {
	var couple entity.Couple
	query := `
		SELECT id, partner1_id, partner2_id, created_at, updated_at
		FROM couples
		WHERE partner1_id = $1 OR partner2_id = $1
		LIMIT 1
	`
	err := r.db.GetContext(ctx, &couple, query, userID)
	if stdErrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &couple, nil
}

func (r *coupleRepository) CreateCouple(ctx context.Context, invitation *entity.Invitation, accepterID uuid.UUID) (*entity.Couple, error) {
	tx, err := r.db.SQLx().BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("CoupleRepository:CreateCouple:Rollback:Error", "error", rbErr)
			}
		}
	}()

	couple := &entity.Couple{Partner1ID: invitation.InviterID, Partner2ID: accepterID}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO couples (partner1_id, partner2_id) VALUES ($1, $2) RETURNING id, created_at, updated_at`,
		couple.Partner1ID, couple.Partner2ID,
	).Scan(&couple.ID, &couple.CreatedAt, &couple.UpdatedAt)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE couple_invitations SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		entity.InvitationStatusAccepted, invitation.ID, entity.InvitationStatusPending,
	)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return couple, nil
}

func (r *coupleRepository) CreateInvitation(ctx context.Context, invitation *entity.Invitation) error {
	query := `
		INSERT INTO couple_invitations (inviter_id, invitee_email, token, status, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	if invitation.Status == "" {
		invitation.Status = entity.InvitationStatusPending
	}
	return r.db.QueryRowContext(ctx, query,
		invitation.InviterID, strings.ToLower(invitation.InviteeEmail), invitation.Token, invitation.Status, invitation.ExpiresAt,
	).Scan(&invitation.ID, &invitation.CreatedAt, &invitation.UpdatedAt)
}

func (r *coupleRepository) GetPendingInvitation(ctx context.Context, inviterID uuid.UUID, inviteeEmail string) (*entity.Invitation, error) {
	var invitation entity.Invitation
	query := `SELECT ` + invitationColumns + `
		FROM couple_invitations
		WHERE inviter_id = $1 AND invitee_email = $2 AND status = $3
		ORDER BY created_at DESC
		LIMIT 1`
	err := r.db.GetContext(ctx, &invitation, query, inviterID, strings.ToLower(inviteeEmail), entity.InvitationStatusPending)
	if stdErrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (r *coupleRepository) GetInvitationByToken(ctx context.Context, token string) (*entity.Invitation, error) {
	var invitation entity.Invitation
	err := r.db.GetContext(ctx, &invitation, `SELECT `+invitationColumns+` FROM couple_invitations WHERE token = $1`, token)
	if stdErrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (r *coupleRepository) UpdateInvitationStatus(ctx context.Context, id uuid.UUID, status entity.InvitationStatus) error {
	return r.db.ExecContext(ctx, `UPDATE couple_invitations SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
}

func (r *coupleRepository) ExpireInvitations(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.SQLx().ExecContext(ctx,
		`UPDATE couple_invitations SET status = $1, updated_at = NOW() WHERE status = $2 AND expires_at < $3`,
		entity.InvitationStatusExpired, entity.InvitationStatusPending, before,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
