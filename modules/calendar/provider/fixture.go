package provider

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"dateplanner-api/core/logger"
	"dateplanner-api/core/utils"
	"dateplanner-api/modules/calendar/entity"

	ical "github.com/arran4/golang-ical"
)

// FixtureProvider serves calendars from iCalendar documents instead of a
// live account. The source may contain a {user_id} placeholder so each user
// gets their own file.
type FixtureProvider struct {
	source  string
	fetcher Fetcher
}

func NewFixtureProvider(source string, fetcher Fetcher) *FixtureProvider {
	return &FixtureProvider{source: source, fetcher: fetcher}
}

func (p *FixtureProvider) Name() string {
	return "fixture"
}

func (p *FixtureProvider) ListEvents(ctx context.Context, conn *entity.CalendarConnection, timeMin, timeMax time.Time) ([]entity.BusyInterval, error) {
	if p.source == "" {
		return []entity.BusyInterval{}, nil
	}

	location := strings.ReplaceAll(p.source, "{user_id}", conn.UserID.String())
	body, err := p.fetcher.Fetch(ctx, location)
	if err != nil {
		if isNotFound(err) {
			logger.Debug("FixtureProvider:ListEvents:NoFixture", "user_id", conn.UserID, "location", location)
			return []entity.BusyInterval{}, nil
		}
		return nil, err
	}

	events, err := ParseICS(body)
	if err != nil {
		return nil, err
	}

	inFrame := make([]entity.BusyInterval, 0, len(events))
	for _, ev := range events {
		if ev.Start.Before(timeMax) && ev.End.After(timeMin) {
			inFrame = append(inFrame, ev)
		}
	}
	return inFrame, nil
}

func (p *FixtureProvider) InsertEvent(ctx context.Context, conn *entity.CalendarConnection, event NewEvent) (*CreatedEvent, error) {
	id := "fixture-" + utils.GenerateID(12)
	logger.Info("FixtureProvider:InsertEvent", "user_id", conn.UserID, "event_id", id, "summary", event.Summary)
	return &CreatedEvent{ID: id}, nil
}

// ParseICS extracts VEVENTs as UTC busy intervals sorted by start. Events
// without a usable DTSTART are skipped; a missing DTEND yields a
// zero-length interval.
func ParseICS(body []byte) ([]entity.BusyInterval, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return []entity.BusyInterval{}, nil
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse ics: %w", err)
	}

	events := make([]entity.BusyInterval, 0)
	for _, ve := range cal.Events() {
		start, err := ve.GetStartAt()
		if err != nil {
			logger.Warn("FixtureProvider:ParseICS:SkipEvent", "error", err)
			continue
		}
		end, err := ve.GetEndAt()
		if err != nil {
			end = start
		}

		interval := entity.BusyInterval{Start: start.UTC(), End: end.UTC()}
		if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
			interval.Summary = p.Value
		}
		if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
			interval.Description = p.Value
		}
		events = append(events, interval)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
	return events, nil
}
