package entity

import (
	"time"

	"github.com/google/uuid"
)

// BusyInterval is a half-open [Start, End) span during which a person is
// unavailable. Summary and Description only feed the schedule context.
type BusyInterval struct {
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Summary     string    `json:"summary,omitempty"`
	Description string    `json:"description,omitempty"`
}

// FreeSlot is a span inside the search frame where neither partner is busy.
type FreeSlot struct {
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	DurationHours float64   `json:"duration_hours"`
}

// CoupleSchedule holds both partners' events for one search frame.
type CoupleSchedule struct {
	Partner1ID     uuid.UUID
	Partner2ID     uuid.UUID
	Partner1Events []BusyInterval
	Partner2Events []BusyInterval
}
