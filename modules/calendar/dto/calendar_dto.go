package dto

import "time"

type CalendarConnectionResponse struct {
	ID            string `json:"id"`
	Provider      string `json:"provider"`
	CalendarEmail string `json:"calendar_email"`
	IsActive      bool   `json:"is_active"`
	ConnectedAt   string `json:"connected_at"`
}

type CalendarConnectionListResponse struct {
	Connections []CalendarConnectionResponse `json:"connections"`
}

type EventResponse struct {
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Summary     string    `json:"summary,omitempty"`
	Description string    `json:"description,omitempty"`
}

type EventsResponse struct {
	Events  []EventResponse `json:"events"`
	Context string          `json:"context"`
}

type FreeSlotResponse struct {
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	DurationHours float64   `json:"duration_hours"`
}

type FreeSlotsResponse struct {
	Slots []FreeSlotResponse `json:"slots"`
}

// CreateEventRequest adds an event to the caller's primary calendar.
type CreateEventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Timezone    string `json:"timezone"`
}

type CreateEventResponse struct {
	EventID  string `json:"event_id"`
	HTMLLink string `json:"html_link,omitempty"`
	Title    string `json:"title"`
	Start    string `json:"start_time"`
	End      string `json:"end_time"`
}
