package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dateplanner-api/modules/dateplan/entity"

	"github.com/openai/openai-go/v3/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenWeatherClient_GetForecast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forecast", r.URL.Path)
		assert.Equal(t, "Paris", r.URL.Query().Get("q"))
		assert.Equal(t, "key", r.URL.Query().Get("appid"))
		assert.Equal(t, "16", r.URL.Query().Get("cnt"))
		_, _ = w.Write([]byte(`{
			"city": {"name": "Paris"},
			"list": [
				{"dt": 1717214400, "main": {"temp": 17.6}, "weather": [{"main": "Clouds", "description": "few clouds"}]},
				{"dt": 1717225200, "main": {"temp": 21.2}, "weather": [{"main": "Clear", "description": "clear sky"}]},
				{"dt": 1717311600, "main": {"temp": 15.0}, "weather": [{"main": "Rain", "description": "light rain"}]}
			]
		}`))
	}))
	defer srv.Close()

	forecast, err := NewOpenWeatherClient("key", srv.URL+"/").GetForecast(context.Background(), "Paris", 2)
	require.NoError(t, err)
	require.Len(t, forecast.Details, 3)
	assert.Equal(t, "few clouds", forecast.Details[0].Description)
	assert.Equal(t, time.Date(2024, 6, 1, 4, 0, 0, 0, time.UTC), forecast.Details[0].Time)
	assert.Equal(t, "Paris - Sat Jun 01: clear sky, 21°C; Sun Jun 02: light rain, 15°C", forecast.Summary)
}

func TestOpenWeatherClient_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewOpenWeatherClient("bad", srv.URL).GetForecast(context.Background(), "Paris", 3)
	assert.Error(t, err)
}

func TestGooglePlacesClient_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "maps-key", r.Header.Get("X-Goog-Api-Key"))
		assert.Contains(t, r.Header.Get("X-Goog-FieldMask"), "places.displayName")

		var body placesSearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "italian restaurant in Paris", body.TextQuery)
		assert.Equal(t, 2, body.PageSize)

		_, _ = w.Write([]byte(`{"places": [
			{"id": "p1", "displayName": {"text": "Chez Luigi"}, "formattedAddress": "1 Rue A", "location": {"latitude": 48.85, "longitude": 2.35}, "rating": 4.6, "types": ["restaurant"]},
			{"id": "p2", "displayName": {"text": "Trattoria B"}, "formattedAddress": "2 Rue B", "rating": 4.1},
			{"id": "p3", "displayName": {"text": "Overflow"}}
		]}`))
	}))
	defer srv.Close()

	venues, err := NewGooglePlacesClientWithURL("maps-key", srv.URL).Search(context.Background(), "italian restaurant in Paris", 2)
	require.NoError(t, err)
	require.Len(t, venues, 2)
	assert.Equal(t, "Chez Luigi", venues[0].Name)
	assert.Equal(t, "p1", venues[0].ExternalID)
	require.NotNil(t, venues[0].Coordinates)
	assert.InDelta(t, 48.85, venues[0].Coordinates.Latitude, 1e-9)
	assert.Equal(t, []string{"restaurant"}, venues[0].Categories)
	assert.Nil(t, venues[1].Coordinates)
}

func TestGooglePlacesClient_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewGooglePlacesClientWithURL("k", srv.URL).Search(context.Background(), "park", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestMockPlacesClient(t *testing.T) {
	venues, err := NewMockPlacesClient().Search(context.Background(), "Italian Restaurant in Paris", 3)
	require.NoError(t, err)
	require.Len(t, venues, 3)
	assert.Equal(t, "Mock Place 1 for Italian Restaurant in Paris", venues[0].Name)
	assert.True(t, strings.HasPrefix(venues[0].ExternalID, "mock-italian-restaurant-in-paris-"))
}

func chatServer(t *testing.T, content string, inspect func(body map[string]any)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		assert.Equal(t, "Bearer llm-key", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if inspect != nil {
			inspect(body)
		}

		resp := map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1717214400,
			"model":   "test-model",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func newTestOpenAI(url string) *OpenAIClient {
	return NewOpenAIClient("llm-key", "test-model", url+"/v1/", option.WithMaxRetries(0))
}

func TestOpenAIClient_GenerateIdeas(t *testing.T) {
	content := `{"ideas":[
		{"activity_type":"dining","concept":"Candlelit pasta","search_query":"italian restaurant"},
		{"activity_type":"outdoors","concept":"Sunset picnic","search_query":"park"}
	]}`
	srv := chatServer(t, content, func(body map[string]any) {
		assert.Equal(t, "test-model", body["model"])
		format := body["response_format"].(map[string]any)
		assert.Equal(t, "json_schema", format["type"])
		schema := format["json_schema"].(map[string]any)
		assert.Equal(t, "date_ideas", schema["name"])
		assert.Equal(t, true, schema["strict"])

		messages := body["messages"].([]any)
		require.Len(t, messages, 2)
		user := messages[1].(map[string]any)
		assert.Contains(t, user["content"], "Return exactly 2 ideas.")
	})
	defer srv.Close()

	ideas, err := newTestOpenAI(srv.URL).GenerateIdeas(context.Background(), "We like food", 2)
	require.NoError(t, err)
	require.Len(t, ideas, 2)
	assert.Equal(t, entity.IdeaConcept{ActivityType: "dining", Concept: "Candlelit pasta", SearchQuery: "italian restaurant"}, ideas[0])
}

func TestOpenAIClient_RejectsWrongCount(t *testing.T) {
	srv := chatServer(t, `{"ideas":[{"activity_type":"dining","concept":"Pasta","search_query":"italian"}]}`, nil)
	defer srv.Close()

	ideas, err := newTestOpenAI(srv.URL).GenerateIdeas(context.Background(), "prompt", 3)
	assert.ErrorIs(t, err, ErrMalformedResponse)
	assert.Nil(t, ideas)
}

func TestOpenAIClient_RejectsInvalidJSON(t *testing.T) {
	srv := chatServer(t, `not json`, nil)
	defer srv.Close()

	_, err := newTestOpenAI(srv.URL).SelectEvents(context.Background(), entity.SelectionRequest{Prompt: "p", Count: 1})
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestOpenAIClient_SelectEvents(t *testing.T) {
	content := `{"selections":[{"selected_venue_name":"Chez Luigi","suggested_time":"2024-06-01T19:00:00Z","explanation":"Quiet and close"}]}`
	srv := chatServer(t, content, nil)
	defer srv.Close()

	selections, err := newTestOpenAI(srv.URL).SelectEvents(context.Background(), entity.SelectionRequest{Prompt: "pick", Count: 1})
	require.NoError(t, err)
	assert.Equal(t, []entity.Selection{{VenueName: "Chez Luigi", SuggestedTime: "2024-06-01T19:00:00Z", Explanation: "Quiet and close"}}, selections)
}

func TestOpenAIClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"down","type":"server_error"}}`))
	}))
	defer srv.Close()

	_, err := newTestOpenAI(srv.URL).GenerateIdeas(context.Background(), "p", 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMalformedResponse)
}

func TestListSchema(t *testing.T) {
	schema := listSchema[ideaRecord]("ideas")
	assert.Equal(t, []string{"ideas"}, schema["required"])
	assert.Equal(t, false, schema["additionalProperties"])

	raw, err := json.Marshal(schema)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"search_query"`)
	assert.NotContains(t, string(raw), `"$schema"`)
	assert.NotContains(t, string(raw), `"$ref"`)
}

func TestMockLLMClient(t *testing.T) {
	llm := NewMockLLMClient()

	ideas, err := llm.GenerateIdeas(context.Background(), "", 5)
	require.NoError(t, err)
	assert.Len(t, ideas, 5)
	assert.Equal(t, ideas[0], ideas[4])

	slot := entity.TimeWindow{Start: time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC), End: time.Date(2024, 6, 1, 21, 0, 0, 0, time.UTC)}
	selections, err := llm.SelectEvents(context.Background(), entity.SelectionRequest{
		Candidates: []entity.TaggedVenue{{Venue: entity.VenueCandidate{Name: "A"}, Idea: ideas[0]}},
		FreeSlots:  []entity.TimeWindow{slot},
		Count:      3,
	})
	require.NoError(t, err)
	require.Len(t, selections, 1)
	assert.Equal(t, "A", selections[0].VenueName)
	assert.Equal(t, "2024-06-01T18:00:00Z", selections[0].SuggestedTime)
}
