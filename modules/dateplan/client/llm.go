package client

import (
	"context"
	stdErrors "errors"
	"fmt"
	"strings"

	"dateplanner-api/modules/dateplan/entity"
)

// ErrMalformedResponse is returned when the model's output does not match
// the requested schema or record count.
var ErrMalformedResponse = stdErrors.New("malformed llm response")

// LLMProvider produces idea concepts and final venue picks. Both calls
// return exactly the requested number of records or an error.
type LLMProvider interface {
	Name() string
	GenerateIdeas(ctx context.Context, prompt string, count int) ([]entity.IdeaConcept, error)
	SelectEvents(ctx context.Context, req entity.SelectionRequest) ([]entity.Selection, error)
}

type ideaRecord struct {
	ActivityType string `json:"activity_type" jsonschema:"description=Short category such as dining or outdoors"`
	Concept      string `json:"concept" jsonschema:"description=One sentence describing the date idea"`
	SearchQuery  string `json:"search_query" jsonschema:"description=Query for a places search without the location"`
}

type selectionRecord struct {
	SelectedVenueName string `json:"selected_venue_name" jsonschema:"description=Exact name of a venue from the candidate list"`
	SuggestedTime     string `json:"suggested_time" jsonschema:"description=RFC 3339 start time inside one of the free slots"`
	Explanation       string `json:"explanation" jsonschema:"description=Why this venue and time suit the couple"`
}

func toIdeas(records []ideaRecord, count int) ([]entity.IdeaConcept, error) {
	if len(records) != count {
		return nil, fmt.Errorf("%w: want %d ideas, got %d", ErrMalformedResponse, count, len(records))
	}
	ideas := make([]entity.IdeaConcept, 0, count)
	for i, r := range records {
		if strings.TrimSpace(r.Concept) == "" || strings.TrimSpace(r.SearchQuery) == "" {
			return nil, fmt.Errorf("%w: idea %d is incomplete", ErrMalformedResponse, i)
		}
		ideas = append(ideas, entity.IdeaConcept{
			ActivityType: strings.TrimSpace(r.ActivityType),
			Concept:      strings.TrimSpace(r.Concept),
			SearchQuery:  strings.TrimSpace(r.SearchQuery),
		})
	}
	return ideas, nil
}

func toSelections(records []selectionRecord, count int) ([]entity.Selection, error) {
	if len(records) != count {
		return nil, fmt.Errorf("%w: want %d selections, got %d", ErrMalformedResponse, count, len(records))
	}
	selections := make([]entity.Selection, 0, count)
	for i, r := range records {
		if strings.TrimSpace(r.SelectedVenueName) == "" {
			return nil, fmt.Errorf("%w: selection %d has no venue", ErrMalformedResponse, i)
		}
		selections = append(selections, entity.Selection{
			VenueName:     strings.TrimSpace(r.SelectedVenueName),
			SuggestedTime: strings.TrimSpace(r.SuggestedTime),
			Explanation:   strings.TrimSpace(r.Explanation),
		})
	}
	return selections, nil
}

var mockIdeas = []entity.IdeaConcept{
	{ActivityType: "dining", Concept: "Cozy Italian dinner", SearchQuery: "italian restaurant"},
	{ActivityType: "entertainment", Concept: "Anime movie night", SearchQuery: "cinema"},
	{ActivityType: "outdoors", Concept: "Evening walk in the park", SearchQuery: "park"},
	{ActivityType: "culture", Concept: "Afternoon at a museum", SearchQuery: "museum"},
}

// MockLLMClient cycles through canned ideas and picks the first candidates.
type MockLLMClient struct{}

func NewMockLLMClient() *MockLLMClient { return &MockLLMClient{} }

func (c *MockLLMClient) Name() string { return "mock_llm" }

func (c *MockLLMClient) GenerateIdeas(_ context.Context, _ string, count int) ([]entity.IdeaConcept, error) {
	ideas := make([]entity.IdeaConcept, 0, count)
	for i := 0; i < count; i++ {
		ideas = append(ideas, mockIdeas[i%len(mockIdeas)])
	}
	return ideas, nil
}

func (c *MockLLMClient) SelectEvents(_ context.Context, req entity.SelectionRequest) ([]entity.Selection, error) {
	count := min(req.Count, len(req.Candidates))
	selections := make([]entity.Selection, 0, count)
	for i := 0; i < count; i++ {
		candidate := req.Candidates[i]
		suggested := ""
		if len(req.FreeSlots) > 0 {
			suggested = req.FreeSlots[i%len(req.FreeSlots)].Start.Format("2006-01-02T15:04:05Z07:00")
		}
		selections = append(selections, entity.Selection{
			VenueName:     candidate.Venue.Name,
			SuggestedTime: suggested,
			Explanation:   fmt.Sprintf("A great place for '%s'.", candidate.Idea.Concept),
		})
	}
	return selections, nil
}
