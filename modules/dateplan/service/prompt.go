package service

import (
	"fmt"
	"strings"

	calendarEntity "dateplanner-api/modules/calendar/entity"
	"dateplanner-api/modules/dateplan/entity"
)

const (
	noFreeTimeText     = "No free time available"
	weatherPlaceholder = "Weather information unavailable"
)

// FormatFreeSlots renders slots as a numbered list for a prompt.
func FormatFreeSlots(slots []calendarEntity.FreeSlot) string {
	if len(slots) == 0 {
		return noFreeTimeText
	}
	lines := make([]string, 0, len(slots))
	for i, slot := range slots {
		lines = append(lines, fmt.Sprintf("%d. %s (%.1f hours available)",
			i+1, slot.Start.UTC().Format("Monday, January 02 at 03:04 PM"), slot.DurationHours))
	}
	return strings.Join(lines, "\n")
}

type ideaPromptInput struct {
	Request   string
	Location  string
	Weather   string
	FreeSlots string
	Partner1  string
	Partner2  string
	Count     int
}

func buildIdeaPrompt(in ideaPromptInput) string {
	var b strings.Builder
	b.WriteString("Generate date ideas based on the following information:\n\n")
	fmt.Fprintf(&b, "User's Request: %s\n", in.Request)
	fmt.Fprintf(&b, "Location: %s\n", in.Location)
	fmt.Fprintf(&b, "Weather Forecast: %s\n\n", in.Weather)
	fmt.Fprintf(&b, "Available Free Time Slots:\n%s\n\n", in.FreeSlots)
	fmt.Fprintf(&b, "Partner 1's Schedule Context:\n%s\n\n", in.Partner1)
	fmt.Fprintf(&b, "Partner 2's Schedule Context:\n%s\n\n", in.Partner2)
	fmt.Fprintf(&b, "Please suggest %d diverse date idea CONCEPTS that:\n", in.Count)
	b.WriteString("1. Match the user's request\n")
	b.WriteString("2. Fit within the available free time slots\n")
	b.WriteString("3. Are appropriate for the weather\n")
	b.WriteString("4. Consider their schedules (e.g., suggest relaxing activities if they have exams)\n")
	return b.String()
}

func buildLegacyIdeaPrompt(request, location, weather string) string {
	return fmt.Sprintf("Based on this prompt: '%s' in %s and the weather '%s', give me date ideas.", request, location, weather)
}

type selectionPromptInput struct {
	Weather   string
	Schedule  string
	FreeSlots []calendarEntity.FreeSlot
	Pool      []entity.TaggedVenue
	Count     int
}

func buildSelectionPrompt(in selectionPromptInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Choose the %d best date events from the candidate venues below.\n\n", in.Count)
	fmt.Fprintf(&b, "Weather Forecast: %s\n\n", in.Weather)
	fmt.Fprintf(&b, "Schedule Context:\n%s\n\n", in.Schedule)

	b.WriteString("Free Time Slots (suggested_time MUST fall inside one of these, UTC):\n")
	for i, slot := range in.FreeSlots {
		fmt.Fprintf(&b, "%d. %s to %s (%.1f hours)\n", i+1,
			slot.Start.UTC().Format("2006-01-02T15:04:05Z07:00"), slot.End.UTC().Format("2006-01-02T15:04:05Z07:00"), slot.DurationHours)
	}

	b.WriteString("\nCandidate Venues:\n")
	for i, tv := range in.Pool {
		fmt.Fprintf(&b, "%d. %s | %s", i+1, tv.Venue.Name, tv.Venue.Address)
		if tv.Venue.Rating > 0 {
			fmt.Fprintf(&b, " | rating %.1f", tv.Venue.Rating)
		}
		fmt.Fprintf(&b, " | idea: %s (%s)\n", tv.Idea.Concept, tv.Idea.ActivityType)
	}

	b.WriteString("\nUse the exact venue name as written above. Prefer variety across ideas.")
	return b.String()
}
