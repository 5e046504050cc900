package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"dateplanner-api/core/constants"
	"dateplanner-api/core/errors"
	"dateplanner-api/core/logger"
	"dateplanner-api/core/metrics"
	"dateplanner-api/core/utils"
	"dateplanner-api/modules/calendar/dto"
	"dateplanner-api/modules/calendar/entity"
	"dateplanner-api/modules/calendar/provider"
	"dateplanner-api/modules/calendar/repository"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const noEventsContext = "No scheduled events in this time period."

type CalendarService struct {
	repo     repository.CalendarRepository
	provider provider.Provider
	metrics  *metrics.Metrics
	timeout  time.Duration
}

func NewCalendarService(repo repository.CalendarRepository, p provider.Provider, m *metrics.Metrics, timeout time.Duration) *CalendarService {
	if timeout <= 0 {
		timeout = constants.DefaultTimeout
	}
	return &CalendarService{repo: repo, provider: p, metrics: m, timeout: timeout}
}

// SaveGoogleConnection stores tokens obtained from the OAuth callback.
func (s *CalendarService) SaveGoogleConnection(ctx context.Context, userID uuid.UUID, accessToken, refreshToken string, expiresAt time.Time, email string) (*entity.CalendarConnection, error) {
	conn := &entity.CalendarConnection{
		UserID:         userID,
		Provider:       constants.ProviderGoogle,
		AccessToken:    accessToken,
		RefreshToken:   refreshToken,
		TokenExpiresAt: expiresAt,
		CalendarEmail:  email,
		IsActive:       true,
	}
	saved, err := s.repo.UpsertConnection(ctx, conn)
	if err != nil {
		logger.Error("CalendarService:SaveGoogleConnection:Error", "user_id", userID, "error", err)
		return nil, errors.NewAppError(errors.ErrCreateFailed, "failed to save calendar connection", err)
	}
	return saved, nil
}

func (s *CalendarService) GetConnections(ctx context.Context, userID uuid.UUID) ([]dto.CalendarConnectionResponse, error) {
	connections, err := s.repo.GetConnectionsByUserID(ctx, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to get connections", err)
	}

	result := make([]dto.CalendarConnectionResponse, 0, len(connections))
	for _, conn := range connections {
		result = append(result, dto.CalendarConnectionResponse{
			ID:            conn.ID.String(),
			Provider:      conn.Provider,
			CalendarEmail: conn.CalendarEmail,
			IsActive:      conn.IsActive,
			ConnectedAt:   conn.CreatedAt.Format(time.RFC3339),
		})
	}
	return result, nil
}

func (s *CalendarService) DisconnectCalendar(ctx context.Context, userID uuid.UUID, providerName string) error {
	if err := s.repo.DeleteConnection(ctx, userID, providerName); err != nil {
		return errors.NewAppError(errors.ErrDeleteFailed, "failed to disconnect calendar", err)
	}
	return nil
}

// HasCredential reports whether the user has a stored refresh credential.
func (s *CalendarService) HasCredential(ctx context.Context, userID uuid.UUID) (bool, error) {
	conn, err := s.repo.GetConnectionByUserAndProvider(ctx, userID, constants.ProviderGoogle)
	if err != nil {
		return false, errors.NewAppError(errors.ErrGetFailed, "failed to read calendar credentials", err)
	}
	return conn != nil, nil
}

func (s *CalendarService) credential(ctx context.Context, userID uuid.UUID) (*entity.CalendarConnection, error) {
	conn, err := s.repo.GetConnectionByUserAndProvider(ctx, userID, constants.ProviderGoogle)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to read calendar credentials", err)
	}
	if conn == nil {
		return nil, errors.NewAppError(errors.ErrCalendarNotConnected, "Google Calendar not connected", nil).
			WithDetails(map[string]string{"user_id": userID.String()})
	}
	return conn, nil
}

// GetEvents returns the user's events overlapping [timeMin, timeMax),
// sorted by start, with every timestamp in UTC.
func (s *CalendarService) GetEvents(ctx context.Context, userID uuid.UUID, timeMin, timeMax time.Time) ([]entity.BusyInterval, error) {
	conn, err := s.credential(ctx, userID)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	events, err := s.provider.ListEvents(callCtx, conn, timeMin.UTC(), timeMax.UTC())
	s.metrics.ObserveProvider(s.provider.Name(), "list_events", start, err)
	if err != nil {
		logger.Error("CalendarService:GetEvents:Error", "user_id", userID, "error", err)
		return nil, errors.NewAppError(errors.ErrCalendarUnavailable, "calendar service unavailable", err)
	}

	for i := range events {
		events[i].Start = events[i].Start.UTC()
		events[i].End = events[i].End.UTC()
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})

	logger.Debug("CalendarService:GetEvents:Done", "user_id", userID, "count", len(events))
	return events, nil
}

// FetchCoupleSchedule reads both calendars concurrently. Credentials for
// both partners are checked before any provider call is made.
func (s *CalendarService) FetchCoupleSchedule(ctx context.Context, partner1, partner2 uuid.UUID, timeMin, timeMax time.Time) (*entity.CoupleSchedule, error) {
	for i, id := range []uuid.UUID{partner1, partner2} {
		ok, err := s.HasCredential(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.NewAppError(errors.ErrCalendarNotConnected,
				fmt.Sprintf("partner%d has not connected Google Calendar", i+1), nil).
				WithDetails(map[string]string{"partner": fmt.Sprintf("partner%d", i+1), "user_id": id.String()})
		}
	}

	schedule := &entity.CoupleSchedule{Partner1ID: partner1, Partner2ID: partner2}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		events, err := s.GetEvents(gctx, partner1, timeMin, timeMax)
		schedule.Partner1Events = events
		return err
	})
	g.Go(func() error {
		events, err := s.GetEvents(gctx, partner2, timeMin, timeMax)
		schedule.Partner2Events = events
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return schedule, nil
}

// FindFreeSlots returns the mutual free slots of two users within the frame.
func (s *CalendarService) FindFreeSlots(ctx context.Context, partner1, partner2 uuid.UUID, frameStart, frameEnd time.Time, minDurationHours float64) ([]entity.FreeSlot, error) {
	if !frameEnd.After(frameStart) {
		return []entity.FreeSlot{}, nil
	}
	schedule, err := s.FetchCoupleSchedule(ctx, partner1, partner2, frameStart, frameEnd)
	if err != nil {
		return nil, err
	}
	return ComputeFreeSlots(schedule.Partner1Events, schedule.Partner2Events, frameStart.UTC(), frameEnd.UTC(), minDurationHours), nil
}

// GetEventsContext renders the user's events as text for a language model prompt.
func (s *CalendarService) GetEventsContext(ctx context.Context, userID uuid.UUID, timeMin, timeMax time.Time) (string, error) {
	events, err := s.GetEvents(ctx, userID, timeMin, timeMax)
	if err != nil {
		return "", err
	}
	return DescribeEvents(events), nil
}

// DescribeEvents formats events one per line as "- <start>: <summary> (<description>)".
func DescribeEvents(events []entity.BusyInterval) string {
	if len(events) == 0 {
		return noEventsContext
	}

	var b strings.Builder
	b.WriteString("Scheduled events:")
	for _, ev := range events {
		summary := ev.Summary
		if summary == "" {
			summary = "Busy"
		}
		b.WriteString("\n- ")
		b.WriteString(ev.Start.UTC().Format(time.RFC3339))
		b.WriteString(": ")
		b.WriteString(summary)
		if ev.Description != "" {
			b.WriteString(" (")
			b.WriteString(ev.Description)
			b.WriteString(")")
		}
	}
	return b.String()
}

// CreateEvent adds an event to the user's primary calendar.
func (s *CalendarService) CreateEvent(ctx context.Context, userID uuid.UUID, req *dto.CreateEventRequest) (*dto.CreateEventResponse, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "title is required", nil)
	}
	start, err := utils.ParseTimestamp(req.StartTime)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "invalid start_time", err)
	}
	end, err := utils.ParseTimestamp(req.EndTime)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "invalid end_time", err)
	}
	if !end.After(start) {
		return nil, errors.NewAppError(errors.ErrInvalidTimeRange, "end_time must be after start_time", nil)
	}

	conn, err := s.credential(ctx, userID)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	began := time.Now()
	created, err := s.provider.InsertEvent(callCtx, conn, provider.NewEvent{
		Summary:     req.Title,
		Description: req.Description,
		Location:    req.Location,
		Start:       start,
		End:         end,
		TimeZone:    req.Timezone,
	})
	s.metrics.ObserveProvider(s.provider.Name(), "insert_event", began, err)
	if err != nil {
		logger.Error("CalendarService:CreateEvent:Error", "user_id", userID, "error", err)
		return nil, errors.NewAppError(errors.ErrCalendarUnavailable, "failed to create calendar event", err)
	}

	logger.Info("CalendarService:CreateEvent:Success", "user_id", userID, "event_id", created.ID)
	return &dto.CreateEventResponse{
		EventID:  created.ID,
		HTMLLink: created.HTMLLink,
		Title:    req.Title,
		Start:    start.Format(time.RFC3339),
		End:      end.Format(time.RFC3339),
	}, nil
}
