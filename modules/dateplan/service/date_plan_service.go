package service

import (
	"context"
	stdErrors "errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"dateplanner-api/core/config"
	"dateplanner-api/core/constants"
	"dateplanner-api/core/errors"
	"dateplanner-api/core/logger"
	"dateplanner-api/core/metrics"
	"dateplanner-api/core/utils"
	calendarEntity "dateplanner-api/modules/calendar/entity"
	calendarService "dateplanner-api/modules/calendar/service"
	coupleEntity "dateplanner-api/modules/couple/entity"
	"dateplanner-api/modules/dateplan/client"
	"dateplanner-api/modules/dateplan/dto"
	"dateplanner-api/modules/dateplan/entity"
	notificationDto "dateplanner-api/modules/notification/dto"

	"github.com/google/uuid"
	"github.com/tj/go-naturaldate"
	"golang.org/x/sync/errgroup"
)

const (
	planIDLength        = 12
	maxForecastDays     = 5
	planKindCouple      = "couple"
	planKindLegacy      = "legacy"
	outcomeDone         = "done"
	legacyVenuesPerIdea = 1
)

type CoupleLookup interface {
	GetCoupleByUserID(ctx context.Context, userID uuid.UUID) (*coupleEntity.Couple, error)
}

type ScheduleFetcher interface {
	FetchCoupleSchedule(ctx context.Context, partner1, partner2 uuid.UUID, timeMin, timeMax time.Time) (*calendarEntity.CoupleSchedule, error)
}

type Notifier interface {
	Notify(ctx context.Context, req *notificationDto.CreateNotificationRequest) error
}

type DatePlanService struct {
	couples  CoupleLookup
	calendar ScheduleFetcher
	weather  client.WeatherProvider
	llm      client.LLMProvider
	ideas    *IdeaGenerator
	venues   *VenueResolver
	notifier Notifier
	metrics  *metrics.Metrics
	policy   config.PlannerConfig
	now      func() time.Time
}

func NewDatePlanService(
	couples CoupleLookup,
	calendar ScheduleFetcher,
	weather client.WeatherProvider,
	llm client.LLMProvider,
	places client.PlacesProvider,
	notifier Notifier,
	m *metrics.Metrics,
	policy config.PlannerConfig,
) *DatePlanService {
	return &DatePlanService{
		couples:  couples,
		calendar: calendar,
		weather:  weather,
		llm:      llm,
		ideas:    NewIdeaGenerator(llm, m, policy.ExternalCallTimeout),
		venues:   NewVenueResolver(places, m, policy.ExternalCallTimeout),
		notifier: notifier,
		metrics:  m,
		policy:   policy,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// planRun tracks one couple plan through its states.
type planRun struct {
	id      string
	kind    string
	state   entity.PlanState
	entered time.Time
	metrics *metrics.Metrics
}

func (r *planRun) enter(state entity.PlanState) {
	now := time.Now()
	if r.state != "" {
		r.metrics.ObserveStage(string(r.state), now.Sub(r.entered))
	}
	logger.Debug("DatePlanService:State", "plan_id", r.id, "from", r.state, "to", state)
	r.state = state
	r.entered = now
}

func (r *planRun) abort(err error) error {
	kind := "internal"
	if appErr, ok := errors.AsAppError(err); ok {
		kind = strings.ToLower(string(appErr.Code))
	}
	logger.Warn("DatePlanService:Aborted", "plan_id", r.id, "kind", r.kind, "state", r.state, "reason", kind, "error", err)
	r.metrics.IncPlanOutcome(r.kind, kind)
	r.enter(entity.StateAborted)
	return err
}

func (r *planRun) done() {
	r.enter(entity.StateDone)
	r.metrics.IncPlanOutcome(r.kind, outcomeDone)
	logger.Info("DatePlanService:Done", "plan_id", r.id, "kind", r.kind)
}

// GenerateCoupleDatePlan builds a plan that fits the mutual free time of the
// caller and their partner.
func (s *DatePlanService) GenerateCoupleDatePlan(ctx context.Context, userID uuid.UUID, req *dto.CoupleDatePlanRequest) (*dto.DatePlanResponse, error) {
	run := &planRun{id: utils.GenerateID(planIDLength), kind: planKindCouple, metrics: s.metrics}
	logger.Info("DatePlanService:GenerateCoupleDatePlan:Start", "plan_id", run.id, "user_id", userID)

	if strings.TrimSpace(req.Prompt) == "" || strings.TrimSpace(req.Location) == "" {
		return nil, run.abort(errors.NewAppError(errors.ErrInvalidInput, "prompt and location are required", nil))
	}

	couple, err := s.couples.GetCoupleByUserID(ctx, userID)
	if err != nil {
		return nil, run.abort(err)
	}

	run.enter(entity.StateFetchingCalendars)
	frameStart, frameEnd, err := s.frame(req)
	if err != nil {
		return nil, run.abort(err)
	}

	schedule, err := s.calendar.FetchCoupleSchedule(ctx, couple.Partner1ID, couple.Partner2ID, frameStart, frameEnd)
	if err != nil {
		if errors.HasCode(err, errors.ErrCalendarUnavailable) {
			err = errors.Upstream(string(entity.StateFetchingCalendars), err)
		}
		return nil, run.abort(err)
	}

	run.enter(entity.StateComputingFreeSlots)
	slots := calendarService.ComputeFreeSlots(schedule.Partner1Events, schedule.Partner2Events, frameStart, frameEnd, s.policy.MinSlotHours)
	if len(slots) == 0 {
		return nil, run.abort(errors.NewAppError(errors.ErrNoMutualFreeTime, "No mutual free time found in the specified time frame", nil))
	}

	run.enter(entity.StateFetchingWeather)
	weather := s.forecast(ctx, run.id, req.Location, forecastDays(frameEnd.Sub(frameStart)))

	partner1Context := calendarService.DescribeEvents(schedule.Partner1Events)
	partner2Context := calendarService.DescribeEvents(schedule.Partner2Events)

	run.enter(entity.StateGeneratingIdeas)
	prompt := buildIdeaPrompt(ideaPromptInput{
		Request:   req.Prompt,
		Location:  req.Location,
		Weather:   weather,
		FreeSlots: FormatFreeSlots(slots[:min(len(slots), s.policy.PromptSlotCount)]),
		Partner1:  partner1Context,
		Partner2:  partner2Context,
		Count:     s.policy.IdeaCount,
	})
	ideas, err := s.ideas.GenerateIdeas(ctx, prompt, s.policy.IdeaCount)
	if err != nil {
		return nil, run.abort(errors.Upstream(string(entity.StateGeneratingIdeas), err))
	}
	if len(ideas) == 0 {
		return nil, run.abort(errors.NewAppError(errors.ErrNoIdeasGenerated, "No date ideas could be generated", nil))
	}

	run.enter(entity.StateResolvingVenues)
	pool, err := s.resolveVenues(ctx, run.id, ideas, req.Location, s.policy.VenuesPerIdea)
	if err != nil {
		return nil, run.abort(err)
	}

	run.enter(entity.StateSelectingFinalEvents)
	events, err := s.selectEvents(ctx, run.id, selectionPromptInput{
		Weather:   weather,
		Schedule:  fmt.Sprintf("Partner 1: %s\nPartner 2: %s", partner1Context, partner2Context),
		FreeSlots: slots,
		Pool:      pool,
		Count:     min(s.policy.EventCount, len(pool)),
	})
	if err != nil {
		return nil, run.abort(err)
	}

	run.done()

	s.notifyPartner(ctx, run.id, couple.PartnerOf(userID), len(events))

	return &dto.DatePlanResponse{
		PlanID:        run.id,
		Events:        toEventResponses(events),
		FreeTimeSlots: toSlotResponses(slots[:min(len(slots), s.policy.ResponseSlotCount)]),
	}, nil
}

// GeneratePlan is the calendar-free path: weather, ideas, then the first
// venue found for each idea.
func (s *DatePlanService) GeneratePlan(ctx context.Context, req *dto.DatePlanRequest) (*dto.DatePlanResponse, error) {
	run := &planRun{id: utils.GenerateID(planIDLength), kind: planKindLegacy, metrics: s.metrics}
	logger.Info("DatePlanService:GeneratePlan:Start", "plan_id", run.id)

	if strings.TrimSpace(req.Prompt) == "" || strings.TrimSpace(req.Location) == "" {
		return nil, run.abort(errors.NewAppError(errors.ErrInvalidInput, "prompt and location are required", nil))
	}

	run.enter(entity.StateFetchingWeather)
	weather := s.forecast(ctx, run.id, req.Location, s.timeFrameDays(req.TimeFrame))

	run.enter(entity.StateGeneratingIdeas)
	ideas, err := s.ideas.GenerateIdeas(ctx, buildLegacyIdeaPrompt(req.Prompt, req.Location, weather), s.policy.IdeaCount)
	if err != nil {
		return nil, run.abort(errors.Upstream(string(entity.StateGeneratingIdeas), err))
	}
	if len(ideas) == 0 {
		return nil, run.abort(errors.NewAppError(errors.ErrNoIdeasGenerated, "No date ideas could be generated", nil))
	}

	run.enter(entity.StateResolvingVenues)
	pool, err := s.resolveVenues(ctx, run.id, ideas, req.Location, legacyVenuesPerIdea)
	if err != nil {
		return nil, run.abort(err)
	}

	events := make([]entity.SelectedEvent, 0, len(pool))
	for _, tv := range pool {
		events = append(events, entity.SelectedEvent{
			VenueName:    tv.Venue.Name,
			Address:      tv.Venue.Address,
			Concept:      tv.Idea.Concept,
			ActivityType: tv.Idea.ActivityType,
			Rationale:    fmt.Sprintf("A great place for '%s'.", tv.Idea.Concept),
			VenueMatched: true,
		})
	}

	run.done()
	return &dto.DatePlanResponse{PlanID: run.id, Events: toEventResponses(events)}, nil
}

func (s *DatePlanService) frame(req *dto.CoupleDatePlanRequest) (time.Time, time.Time, error) {
	if req.StartDate != "" || req.EndDate != "" {
		if req.StartDate == "" || req.EndDate == "" {
			return time.Time{}, time.Time{}, errors.NewAppError(errors.ErrInvalidTimeRange, "start_date and end_date must be given together", nil)
		}
		start, err := utils.ParseTimestamp(req.StartDate)
		if err != nil {
			return time.Time{}, time.Time{}, errors.NewAppError(errors.ErrInvalidTimeRange, "invalid start_date", err)
		}
		end, err := utils.ParseTimestamp(req.EndDate)
		if err != nil {
			return time.Time{}, time.Time{}, errors.NewAppError(errors.ErrInvalidTimeRange, "invalid end_date", err)
		}
		if !end.After(start) {
			return time.Time{}, time.Time{}, errors.NewAppError(errors.ErrInvalidTimeRange, "end_date must be after start_date", nil)
		}
		return start, end, nil
	}

	days := req.TimeFrameDays
	if days == 0 {
		days = s.policy.DefaultFrameDays
	}
	if days <= 0 {
		return time.Time{}, time.Time{}, errors.NewAppError(errors.ErrInvalidTimeRange, "time_frame_days must be positive", nil)
	}
	start := s.now()
	return start, start.AddDate(0, 0, days), nil
}

// timeFrameDays reads phrases like "this weekend" or "next friday" as a
// forecast horizon. Unparseable input falls back to the default frame.
func (s *DatePlanService) timeFrameDays(timeFrame string) int {
	fallback := min(max(s.policy.DefaultFrameDays, 1), maxForecastDays)
	if strings.TrimSpace(timeFrame) == "" {
		return fallback
	}
	now := s.now()
	target, err := naturaldate.Parse(timeFrame, now, naturaldate.WithDirection(naturaldate.Future))
	if err != nil || !target.After(now) {
		return fallback
	}
	return forecastDays(target.Sub(now))
}

func forecastDays(d time.Duration) int {
	days := int(math.Ceil(d.Hours() / 24))
	return min(max(days, 1), maxForecastDays)
}

func (s *DatePlanService) forecast(ctx context.Context, planID, location string, days int) string {
	callCtx, cancel := withTimeout(ctx, s.policy.ExternalCallTimeout)
	defer cancel()

	start := time.Now()
	forecast, err := s.weather.GetForecast(callCtx, location, days)
	s.metrics.ObserveProvider(s.weather.Name(), "forecast", start, err)
	if err != nil || forecast == nil || forecast.Summary == "" {
		logger.Warn("DatePlanService:Weather:Unavailable", "plan_id", planID, "location", location, "error", err)
		return weatherPlaceholder
	}
	return forecast.Summary
}

// resolveVenues searches every idea concurrently and flattens the results in
// idea order. A failed search counts as no venues unless every search failed.
func (s *DatePlanService) resolveVenues(ctx context.Context, planID string, ideas []entity.IdeaConcept, location string, perIdea int) ([]entity.TaggedVenue, error) {
	results := make([][]entity.VenueCandidate, len(ideas))
	var (
		mu       sync.Mutex
		failures int
		lastErr  error
	)

	var g errgroup.Group
	for i, idea := range ideas {
		g.Go(func() error {
			query := idea.SearchQuery
			if query == "" {
				query = idea.Concept
			}
			venues, err := s.venues.FindVenues(ctx, query, location, perIdea)
			if err != nil {
				logger.Error("DatePlanService:ResolveVenues:Error", "plan_id", planID, "idea", idea.Concept, "error", err)
				mu.Lock()
				failures++
				lastErr = err
				mu.Unlock()
				return nil
			}
			results[i] = venues
			return nil
		})
	}
	_ = g.Wait()

	var pool []entity.TaggedVenue
	for i, venues := range results {
		if len(venues) == 0 {
			logger.Info("DatePlanService:ResolveVenues:NoVenues", "plan_id", planID, "idea", ideas[i].Concept)
			continue
		}
		for _, v := range venues {
			pool = append(pool, entity.TaggedVenue{Venue: v, Idea: ideas[i]})
		}
	}

	if len(pool) == 0 {
		if failures == len(ideas) {
			return nil, errors.Upstream(string(entity.StateResolvingVenues), lastErr)
		}
		return nil, errors.NewAppError(errors.ErrNoVenuesFound, "No venues found for any date idea", nil)
	}
	return pool, nil
}

func (s *DatePlanService) selectEvents(ctx context.Context, planID string, in selectionPromptInput) ([]entity.SelectedEvent, error) {
	windows := make([]entity.TimeWindow, 0, len(in.FreeSlots))
	for _, slot := range in.FreeSlots {
		windows = append(windows, entity.TimeWindow{Start: slot.Start, End: slot.End})
	}

	callCtx, cancel := withTimeout(ctx, s.policy.ExternalCallTimeout)
	defer cancel()

	start := time.Now()
	selections, err := s.llm.SelectEvents(callCtx, entity.SelectionRequest{
		Prompt:     buildSelectionPrompt(in),
		Candidates: in.Pool,
		FreeSlots:  windows,
		Count:      in.Count,
	})
	s.metrics.ObserveProvider(s.llm.Name(), "select_events", start, err)
	if err != nil && !stdErrors.Is(err, client.ErrMalformedResponse) {
		return nil, errors.Upstream(string(entity.StateSelectingFinalEvents), err)
	}
	if err != nil {
		logger.Warn("DatePlanService:SelectEvents:Malformed", "plan_id", planID, "error", err)
	}

	events := ResolveSelections(selections, in.Pool)
	if len(events) == 0 {
		return nil, errors.NewAppError(errors.ErrNoSuitableVenues, "No suitable venues could be selected", nil)
	}
	return events, nil
}

// ResolveSelections maps each selection to the pool entry with the same
// name. Unknown names fall back to the first pool entry and are reported
// with VenueMatched false.
func ResolveSelections(selections []entity.Selection, pool []entity.TaggedVenue) []entity.SelectedEvent {
	if len(pool) == 0 {
		return nil
	}
	events := make([]entity.SelectedEvent, 0, len(selections))
	for _, sel := range selections {
		match, matched := pool[0], false
		for _, tv := range pool {
			if tv.Venue.Name == sel.VenueName {
				match, matched = tv, true
				break
			}
		}
		events = append(events, entity.SelectedEvent{
			VenueName:     match.Venue.Name,
			Address:       match.Venue.Address,
			Concept:       match.Idea.Concept,
			ActivityType:  match.Idea.ActivityType,
			SuggestedTime: sel.SuggestedTime,
			Rationale:     sel.Explanation,
			VenueMatched:  matched,
		})
	}
	return events
}

func (s *DatePlanService) notifyPartner(ctx context.Context, planID string, partnerID uuid.UUID, eventCount int) {
	if s.notifier == nil {
		return
	}
	err := s.notifier.Notify(ctx, &notificationDto.CreateNotificationRequest{
		UserID:  partnerID,
		Title:   "New date plan",
		Message: fmt.Sprintf("Your partner generated a date plan with %d suggestions", eventCount),
		Type:    constants.NotificationTypeDatePlanReady,
		Data:    map[string]any{"plan_id": planID},
	})
	if err != nil {
		logger.Error("DatePlanService:NotifyPartner:Error", "plan_id", planID, "partner_id", partnerID, "error", err)
	}
}

func toEventResponses(events []entity.SelectedEvent) []dto.EventResponse {
	out := make([]dto.EventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, dto.EventResponse{
			Name:          ev.VenueName,
			Reason:        ev.Rationale,
			SuggestedTime: ev.SuggestedTime,
			Address:       ev.Address,
			Concept:       ev.Concept,
			ActivityType:  ev.ActivityType,
			VenueMatched:  ev.VenueMatched,
		})
	}
	return out
}

func toSlotResponses(slots []calendarEntity.FreeSlot) []dto.FreeSlotResponse {
	out := make([]dto.FreeSlotResponse, 0, len(slots))
	for _, slot := range slots {
		out = append(out, dto.FreeSlotResponse{Start: slot.Start, End: slot.End, DurationHours: slot.DurationHours})
	}
	return out
}
