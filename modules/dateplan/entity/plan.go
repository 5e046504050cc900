package entity

import "time"

// IdeaConcept is an abstract date activity, not yet tied to a place.
type IdeaConcept struct {
	ActivityType string `json:"activity_type"`
	Concept      string `json:"concept"`
	SearchQuery  string `json:"search_query"`
}

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// VenueCandidate is a concrete place returned by a places search.
type VenueCandidate struct {
	Name        string       `json:"name"`
	ExternalID  string       `json:"external_id"`
	Address     string       `json:"address"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	Rating      float64      `json:"rating,omitempty"`
	Categories  []string     `json:"categories,omitempty"`
}

// TaggedVenue pairs a venue with the idea whose search produced it.
type TaggedVenue struct {
	Venue VenueCandidate
	Idea  IdeaConcept
}

// Selection is one pick returned by the selection step.
type Selection struct {
	VenueName     string `json:"selected_venue_name"`
	SuggestedTime string `json:"suggested_time"`
	Explanation   string `json:"explanation"`
}

// SelectionRequest carries the rendered prompt together with the pool the
// selection must be drawn from.
type SelectionRequest struct {
	Prompt     string
	Candidates []TaggedVenue
	FreeSlots  []TimeWindow
	Count      int
}

type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// SelectedEvent is one entry of the final plan. VenueMatched is false when
// the selected name was not found in the pool and the first candidate was
// used instead.
type SelectedEvent struct {
	VenueName     string
	Address       string
	Concept       string
	ActivityType  string
	SuggestedTime string
	Rationale     string
	VenueMatched  bool
}

type ForecastEntry struct {
	Time        time.Time `json:"time"`
	Description string    `json:"description"`
	TempC       float64   `json:"temp_c"`
}

type Forecast struct {
	Summary string          `json:"summary"`
	Details []ForecastEntry `json:"details,omitempty"`
}

// PlanState names a step of couple plan generation.
type PlanState string

const (
	StateFetchingCalendars    PlanState = "fetching_calendars"
	StateComputingFreeSlots   PlanState = "computing_free_slots"
	StateFetchingWeather      PlanState = "fetching_weather"
	StateGeneratingIdeas      PlanState = "generating_ideas"
	StateResolvingVenues      PlanState = "resolving_venues"
	StateSelectingFinalEvents PlanState = "selecting_final_events"
	StateDone                 PlanState = "done"
	StateAborted              PlanState = "aborted"
)
