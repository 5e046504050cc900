package provider

import (
	"context"
	"time"

	"dateplanner-api/modules/calendar/entity"
)

// Provider reads and writes a user's primary calendar.
type Provider interface {
	Name() string
	// ListEvents returns events overlapping [timeMin, timeMax). Bounds are UTC.
	ListEvents(ctx context.Context, conn *entity.CalendarConnection, timeMin, timeMax time.Time) ([]entity.BusyInterval, error)
	InsertEvent(ctx context.Context, conn *entity.CalendarConnection, event NewEvent) (*CreatedEvent, error)
}

type NewEvent struct {
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	TimeZone    string
}

type CreatedEvent struct {
	ID       string
	HTMLLink string
}
