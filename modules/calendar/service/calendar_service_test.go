package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"dateplanner-api/core/constants"
	"dateplanner-api/core/errors"
	"dateplanner-api/modules/calendar/dto"
	"dateplanner-api/modules/calendar/entity"
	"dateplanner-api/modules/calendar/provider"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	mu    sync.Mutex
	conns map[uuid.UUID]*entity.CalendarConnection
	err   error
}

func newFakeRepo(users ...uuid.UUID) *fakeRepo {
	r := &fakeRepo{conns: map[uuid.UUID]*entity.CalendarConnection{}}
	for _, id := range users {
		r.conns[id] = &entity.CalendarConnection{UserID: id, Provider: constants.ProviderGoogle, RefreshToken: "refresh", IsActive: true}
	}
	return r
}

func (r *fakeRepo) UpsertConnection(ctx context.Context, conn *entity.CalendarConnection) (*entity.CalendarConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[conn.UserID] = conn
	return conn, nil
}

func (r *fakeRepo) GetConnectionByUserAndProvider(ctx context.Context, userID uuid.UUID, p string) (*entity.CalendarConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	conn, ok := r.conns[userID]
	if !ok {
		return nil, nil
	}
	copied := *conn
	return &copied, nil
}

func (r *fakeRepo) GetConnectionsByUserID(ctx context.Context, userID uuid.UUID) ([]entity.CalendarConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if conn, ok := r.conns[userID]; ok {
		return []entity.CalendarConnection{*conn}, nil
	}
	return nil, nil
}

func (r *fakeRepo) UpdateConnection(ctx context.Context, conn *entity.CalendarConnection) error {
	return nil
}

func (r *fakeRepo) DeleteConnection(ctx context.Context, userID uuid.UUID, p string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, userID)
	return nil
}

type fakeProvider struct {
	events  map[uuid.UUID][]entity.BusyInterval
	err     error
	calls   int32
	lastMin time.Time
	lastMax time.Time
	mu      sync.Mutex
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) ListEvents(ctx context.Context, conn *entity.CalendarConnection, timeMin, timeMax time.Time) ([]entity.BusyInterval, error) {
	atomic.AddInt32(&p.calls, 1)
	p.mu.Lock()
	p.lastMin, p.lastMax = timeMin, timeMax
	p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	return append([]entity.BusyInterval{}, p.events[conn.UserID]...), nil
}

func (p *fakeProvider) InsertEvent(ctx context.Context, conn *entity.CalendarConnection, event provider.NewEvent) (*provider.CreatedEvent, error) {
	atomic.AddInt32(&p.calls, 1)
	if p.err != nil {
		return nil, p.err
	}
	return &provider.CreatedEvent{ID: "evt-1"}, nil
}

var (
	partnerA = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	partnerB = uuid.MustParse("00000000-0000-0000-0000-00000000000b")
)

func TestGetEventsNotConnected(t *testing.T) {
	p := &fakeProvider{}
	svc := NewCalendarService(newFakeRepo(), p, nil, time.Second)

	_, err := svc.GetEvents(context.Background(), partnerA, at(9), at(18))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCalendarNotConnected))
	assert.Equal(t, int32(0), p.calls)
}

func TestGetEventsProviderFailure(t *testing.T) {
	p := &fakeProvider{err: fmt.Errorf("503 from upstream")}
	svc := NewCalendarService(newFakeRepo(partnerA), p, nil, time.Second)

	_, err := svc.GetEvents(context.Background(), partnerA, at(9), at(18))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCalendarUnavailable))
}

func TestGetEventsNormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	p := &fakeProvider{events: map[uuid.UUID][]entity.BusyInterval{
		partnerA: {
			{Start: at(15).In(loc), End: at(16).In(loc), Summary: "late"},
			{Start: at(10).In(loc), End: at(11).In(loc), Summary: "early"},
		},
	}}
	svc := NewCalendarService(newFakeRepo(partnerA), p, nil, time.Second)

	events, err := svc.GetEvents(context.Background(), partnerA, at(9).In(loc), at(18).In(loc))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "early", events[0].Summary)
	assert.Equal(t, time.UTC, events[0].Start.Location())
	assert.Equal(t, time.UTC, p.lastMin.Location())
	assert.Equal(t, time.UTC, p.lastMax.Location())
}

func TestFindFreeSlotsAcrossPartners(t *testing.T) {
	p := &fakeProvider{events: map[uuid.UUID][]entity.BusyInterval{
		partnerA: {busy(10, 11)},
		partnerB: {busy(14, 15)},
	}}
	svc := NewCalendarService(newFakeRepo(partnerA, partnerB), p, nil, time.Second)

	slots, err := svc.FindFreeSlots(context.Background(), partnerA, partnerB, at(9), at(18), 2.0)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, at(11), slots[0].Start)
	assert.Equal(t, at(15), slots[1].Start)
	assert.Equal(t, int32(2), p.calls)
}

func TestFindFreeSlotsInvalidFrameSkipsCalendars(t *testing.T) {
	p := &fakeProvider{}
	svc := NewCalendarService(newFakeRepo(partnerA, partnerB), p, nil, time.Second)

	slots, err := svc.FindFreeSlots(context.Background(), partnerA, partnerB, at(18), at(9), 2.0)
	require.NoError(t, err)
	assert.Empty(t, slots)
	assert.Equal(t, int32(0), p.calls)
}

func TestFetchCoupleScheduleReportsMissingPartner(t *testing.T) {
	p := &fakeProvider{}
	svc := NewCalendarService(newFakeRepo(partnerA), p, nil, time.Second)

	_, err := svc.FetchCoupleSchedule(context.Background(), partnerA, partnerB, at(9), at(18))
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCalendarNotConnected, appErr.Code)
	assert.Equal(t, "partner2", appErr.Details.(map[string]string)["partner"])
	assert.Equal(t, int32(0), p.calls)
}

func TestDescribeEvents(t *testing.T) {
	assert.Equal(t, "No scheduled events in this time period.", DescribeEvents(nil))

	text := DescribeEvents([]entity.BusyInterval{
		{Start: at(10), End: at(11), Summary: "Standup", Description: "Daily sync"},
		{Start: at(14), End: at(15)},
	})
	assert.Equal(t, "Scheduled events:\n- 2024-06-01T10:00:00Z: Standup (Daily sync)\n- 2024-06-01T14:00:00Z: Busy", text)
}

func TestGetEventsContext(t *testing.T) {
	p := &fakeProvider{events: map[uuid.UUID][]entity.BusyInterval{
		partnerA: {{Start: at(10), End: at(11), Summary: "Standup"}},
	}}
	svc := NewCalendarService(newFakeRepo(partnerA), p, nil, time.Second)

	text, err := svc.GetEventsContext(context.Background(), partnerA, at(9), at(18))
	require.NoError(t, err)
	assert.Equal(t, "Scheduled events:\n- 2024-06-01T10:00:00Z: Standup", text)
}

func TestCreateEventRequiresConnection(t *testing.T) {
	p := &fakeProvider{}
	svc := NewCalendarService(newFakeRepo(), p, nil, time.Second)

	_, err := svc.CreateEvent(context.Background(), partnerA, &dto.CreateEventRequest{
		Title:     "Dinner",
		StartTime: "2024-06-01T19:00:00Z",
		EndTime:   "2024-06-01T21:00:00Z",
	})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCalendarNotConnected))
	assert.Equal(t, int32(0), p.calls)
}

func TestCreateEventValidatesRange(t *testing.T) {
	svc := NewCalendarService(newFakeRepo(partnerA), &fakeProvider{}, nil, time.Second)

	_, err := svc.CreateEvent(context.Background(), partnerA, &dto.CreateEventRequest{
		Title:     "Dinner",
		StartTime: "2024-06-01T21:00:00Z",
		EndTime:   "2024-06-01T19:00:00Z",
	})
	assert.True(t, errors.HasCode(err, errors.ErrInvalidTimeRange))
}

func TestCreateEventSuccess(t *testing.T) {
	svc := NewCalendarService(newFakeRepo(partnerA), &fakeProvider{}, nil, time.Second)

	resp, err := svc.CreateEvent(context.Background(), partnerA, &dto.CreateEventRequest{
		Title:     "Dinner",
		StartTime: "2024-06-01T19:00:00",
		EndTime:   "2024-06-01T21:00:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "evt-1", resp.EventID)
	assert.Equal(t, "2024-06-01T19:00:00Z", resp.Start)
}
