package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"dateplanner-api/core/constants"
	"dateplanner-api/core/errors"
	authEntity "dateplanner-api/modules/auth/entity"
	"dateplanner-api/modules/couple/dto"
	"dateplanner-api/modules/couple/entity"
	notificationDto "dateplanner-api/modules/notification/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	byID map[uuid.UUID]*authEntity.User
}

func newFakeUsers(users ...*authEntity.User) *fakeUsers {
	f := &fakeUsers{byID: map[uuid.UUID]*authEntity.User{}}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) GetUserByID(_ context.Context, id uuid.UUID) (*authEntity.User, error) {
	return f.byID[id], nil
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (*authEntity.User, error) {
	for _, u := range f.byID {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) CreateUser(_ context.Context, user *authEntity.User) (*authEntity.User, error) {
	f.byID[user.ID] = user
	return user, nil
}

func (f *fakeUsers) MarkEmailVerified(context.Context, uuid.UUID) error { return nil }

type fakeCouples struct {
	mu          sync.Mutex
	couples     []*entity.Couple
	invitations map[uuid.UUID]*entity.Invitation
}

func newFakeCouples() *fakeCouples {
	return &fakeCouples{invitations: map[uuid.UUID]*entity.Invitation{}}
}

func (f *fakeCouples) GetCoupleByUserID(_ context.Context, userID uuid.UUID) (*entity.Couple, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.couples {
		if c.Partner1ID == userID || c.Partner2ID == userID {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeCouples) CreateCouple(_ context.Context, invitation *entity.Invitation, accepterID uuid.UUID) (*entity.Couple, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	couple := &entity.Couple{Partner1ID: invitation.InviterID, Partner2ID: accepterID}
	couple.ID = uuid.New()
	couple.CreatedAt = time.Now().UTC()
	f.couples = append(f.couples, couple)
	f.invitations[invitation.ID].Status = entity.InvitationStatusAccepted
	return couple, nil
}

func (f *fakeCouples) CreateInvitation(_ context.Context, invitation *entity.Invitation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	invitation.ID = uuid.New()
	f.invitations[invitation.ID] = invitation
	return nil
}

func (f *fakeCouples) GetPendingInvitation(_ context.Context, inviterID uuid.UUID, email string) (*entity.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, inv := range f.invitations {
		if inv.InviterID == inviterID && inv.InviteeEmail == email && inv.Status == entity.InvitationStatusPending {
			return inv, nil
		}
	}
	return nil, nil
}

func (f *fakeCouples) GetInvitationByToken(_ context.Context, token string) (*entity.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, inv := range f.invitations {
		if inv.Token == token {
			return inv, nil
		}
	}
	return nil, nil
}

func (f *fakeCouples) UpdateInvitationStatus(_ context.Context, id uuid.UUID, status entity.InvitationStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invitations[id].Status = status
	return nil
}

func (f *fakeCouples) ExpireInvitations(_ context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, inv := range f.invitations {
		if inv.Status == entity.InvitationStatusPending && inv.ExpiresAt.Before(before) {
			inv.Status = entity.InvitationStatusExpired
			n++
		}
	}
	return n, nil
}

type recordingNotifier struct {
	sent []*notificationDto.CreateNotificationRequest
}

func (r *recordingNotifier) Notify(_ context.Context, req *notificationDto.CreateNotificationRequest) error {
	r.sent = append(r.sent, req)
	return nil
}

func newUser(email string) *authEntity.User {
	u := &authEntity.User{Email: email}
	u.ID = uuid.New()
	u.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return u
}

type coupleFixture struct {
	svc      *CoupleService
	repo     *fakeCouples
	notifier *recordingNotifier
	alice    *authEntity.User
	bob      *authEntity.User
	carol    *authEntity.User
}

func setup() *coupleFixture {
	f := &coupleFixture{
		repo:     newFakeCouples(),
		notifier: &recordingNotifier{},
		alice:    newUser("alice@example.com"),
		bob:      newUser("bob@example.com"),
		carol:    newUser("carol@example.com"),
	}
	f.svc = NewCoupleService(f.repo, newFakeUsers(f.alice, f.bob, f.carol), f.notifier)
	return f
}

func assertCode(t *testing.T, err error, code errors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, code), "got %v", err)
}

func TestCoupleService_InviteAndAccept(t *testing.T) {
	f := setup()
	ctx := context.Background()

	inv, err := f.svc.CreateInvitation(ctx, f.alice.ID, &dto.CreateInvitationRequest{InviteeEmail: "Bob@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", inv.InviteeEmail)
	assert.Len(t, inv.Token, constants.CoupleInvitationTokenLength)
	assert.Equal(t, "pending", inv.Status)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, f.bob.ID, f.notifier.sent[0].UserID)
	assert.Equal(t, constants.NotificationTypeCoupleInvitation, f.notifier.sent[0].Type)

	again, err := f.svc.CreateInvitation(ctx, f.alice.ID, &dto.CreateInvitationRequest{InviteeEmail: "bob@example.com"})
	require.NoError(t, err)
	assert.Equal(t, inv.InvitationID, again.InvitationID)
	assert.Equal(t, inv.Token, again.Token)

	couple, err := f.svc.AcceptInvitation(ctx, f.bob.ID, inv.Token)
	require.NoError(t, err)
	assert.Equal(t, f.alice.ID, couple.Partner.ID)
	assert.Equal(t, "alice@example.com", couple.Partner.Email)

	require.Len(t, f.notifier.sent, 2)
	assert.Equal(t, f.alice.ID, f.notifier.sent[1].UserID)
	assert.Equal(t, constants.NotificationTypeCoupleAccepted, f.notifier.sent[1].Type)

	fromAlice, err := f.svc.GetPartner(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, f.bob.ID, fromAlice.Partner.ID)
	assert.Equal(t, couple.CoupleID, fromAlice.CoupleID)

	_, err = f.svc.AcceptInvitation(ctx, f.bob.ID, inv.Token)
	assertCode(t, err, errors.ErrInvitationInvalid)
}

func TestCoupleService_CreateInvitationRejections(t *testing.T) {
	f := setup()
	ctx := context.Background()

	_, err := f.svc.CreateInvitation(ctx, f.alice.ID, &dto.CreateInvitationRequest{InviteeEmail: "not-an-email"})
	assertCode(t, err, errors.ErrInvalidInput)

	_, err = f.svc.CreateInvitation(ctx, f.alice.ID, &dto.CreateInvitationRequest{InviteeEmail: "ALICE@example.com"})
	assertCode(t, err, errors.ErrSelfInvitation)

	f.repo.couples = append(f.repo.couples, &entity.Couple{Partner1ID: f.alice.ID, Partner2ID: f.bob.ID})
	_, err = f.svc.CreateInvitation(ctx, f.alice.ID, &dto.CreateInvitationRequest{InviteeEmail: "carol@example.com"})
	assertCode(t, err, errors.ErrAlreadyInCouple)
}

func TestCoupleService_InviteUnknownEmailSkipsNotification(t *testing.T) {
	f := setup()

	_, err := f.svc.CreateInvitation(context.Background(), f.alice.ID, &dto.CreateInvitationRequest{InviteeEmail: "dave@example.com"})
	require.NoError(t, err)
	assert.Empty(t, f.notifier.sent)
}

func TestCoupleService_AcceptRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown token", func(t *testing.T) {
		f := setup()
		_, err := f.svc.AcceptInvitation(ctx, f.bob.ID, "missing")
		assertCode(t, err, errors.ErrNotFound)
	})

	t.Run("empty token", func(t *testing.T) {
		f := setup()
		_, err := f.svc.AcceptInvitation(ctx, f.bob.ID, " ")
		assertCode(t, err, errors.ErrInvalidInput)
	})

	t.Run("expired invitation is marked expired", func(t *testing.T) {
		f := setup()
		inv, err := f.svc.CreateInvitation(ctx, f.alice.ID, &dto.CreateInvitationRequest{InviteeEmail: "bob@example.com"})
		require.NoError(t, err)

		f.svc.now = func() time.Time { return time.Now().UTC().Add(constants.CoupleInvitationTTL + time.Hour) }
		_, err = f.svc.AcceptInvitation(ctx, f.bob.ID, inv.Token)
		assertCode(t, err, errors.ErrInvitationExpired)
		assert.Equal(t, entity.InvitationStatusExpired, f.repo.invitations[inv.InvitationID].Status)
	})

	t.Run("different email", func(t *testing.T) {
		f := setup()
		inv, err := f.svc.CreateInvitation(ctx, f.alice.ID, &dto.CreateInvitationRequest{InviteeEmail: "bob@example.com"})
		require.NoError(t, err)

		_, err = f.svc.AcceptInvitation(ctx, f.carol.ID, inv.Token)
		assertCode(t, err, errors.ErrInvitationMismatch)
	})

	t.Run("inviter already coupled", func(t *testing.T) {
		f := setup()
		inv, err := f.svc.CreateInvitation(ctx, f.alice.ID, &dto.CreateInvitationRequest{InviteeEmail: "bob@example.com"})
		require.NoError(t, err)

		f.repo.couples = append(f.repo.couples, &entity.Couple{Partner1ID: f.alice.ID, Partner2ID: f.carol.ID})
		_, err = f.svc.AcceptInvitation(ctx, f.bob.ID, inv.Token)
		assertCode(t, err, errors.ErrAlreadyInCouple)
	})
}

func TestCoupleService_GetPartnerNotInCouple(t *testing.T) {
	f := setup()

	_, err := f.svc.GetPartner(context.Background(), f.alice.ID)
	assertCode(t, err, errors.ErrNotFound)

	_, err = f.svc.GetCoupleByUserID(context.Background(), f.alice.ID)
	assertCode(t, err, errors.ErrNotInCouple)
}

func TestCoupleService_ExpireStaleInvitations(t *testing.T) {
	f := setup()
	ctx := context.Background()

	inv, err := f.svc.CreateInvitation(ctx, f.alice.ID, &dto.CreateInvitationRequest{InviteeEmail: "bob@example.com"})
	require.NoError(t, err)

	require.NoError(t, f.svc.ExpireStaleInvitations(ctx))
	assert.Equal(t, entity.InvitationStatusPending, f.repo.invitations[inv.InvitationID].Status)

	f.svc.now = func() time.Time { return time.Now().UTC().Add(constants.CoupleInvitationTTL + time.Minute) }
	require.NoError(t, f.svc.ExpireStaleInvitations(ctx))
	assert.Equal(t, entity.InvitationStatusExpired, f.repo.invitations[inv.InvitationID].Status)
}
