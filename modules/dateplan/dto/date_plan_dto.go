package dto

import "time"

// DatePlanRequest is the legacy, calendar-free request.
type DatePlanRequest struct {
	Prompt    string `json:"prompt"`
	TimeFrame string `json:"time_frame"`
	Location  string `json:"location"`
}

// CoupleDatePlanRequest searches [start_date, end_date) when both are given,
// otherwise the next time_frame_days from now.
type CoupleDatePlanRequest struct {
	Prompt        string `json:"prompt"`
	Location      string `json:"location"`
	StartDate     string `json:"start_date,omitempty"`
	EndDate       string `json:"end_date,omitempty"`
	TimeFrameDays int    `json:"time_frame_days,omitempty"`
}

type EventResponse struct {
	Name          string `json:"name"`
	Reason        string `json:"reason"`
	SuggestedTime string `json:"suggested_time,omitempty"`
	Address       string `json:"address,omitempty"`
	Concept       string `json:"concept,omitempty"`
	ActivityType  string `json:"activity_type,omitempty"`
	VenueMatched  bool   `json:"venue_matched"`
}

type FreeSlotResponse struct {
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	DurationHours float64   `json:"duration_hours"`
}

type DatePlanResponse struct {
	PlanID        string             `json:"plan_id"`
	Events        []EventResponse    `json:"events"`
	FreeTimeSlots []FreeSlotResponse `json:"free_time_slots,omitempty"`
}
