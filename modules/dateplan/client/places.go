package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"dateplanner-api/core/constants"
	"dateplanner-api/core/utils"
	"dateplanner-api/modules/dateplan/entity"

	"github.com/gosimple/slug"
)

// PlacesProvider searches venues. Results keep the provider's relevance order.
type PlacesProvider interface {
	Name() string
	Search(ctx context.Context, query string, maxResults int) ([]entity.VenueCandidate, error)
}

const (
	googlePlacesSearchURL = "https://places.googleapis.com/v1/places:searchText"
	googlePlacesFieldMask = "places.id,places.displayName,places.formattedAddress,places.location,places.rating,places.types"
	googlePlacesMaxPage   = 20
)

type GooglePlacesClient struct {
	apiKey    string
	searchURL string
	client    *http.Client
}

func NewGooglePlacesClient(apiKey string) *GooglePlacesClient {
	return NewGooglePlacesClientWithURL(apiKey, googlePlacesSearchURL)
}

func NewGooglePlacesClientWithURL(apiKey, searchURL string) *GooglePlacesClient {
	return &GooglePlacesClient{
		apiKey:    apiKey,
		searchURL: searchURL,
		client:    &http.Client{Timeout: constants.DefaultTimeout},
	}
}

func (c *GooglePlacesClient) Name() string { return "google_places" }

type placesSearchRequest struct {
	TextQuery string `json:"textQuery"`
	PageSize  int    `json:"pageSize"`
}

type placesSearchResponse struct {
	Places []struct {
		ID          string `json:"id"`
		DisplayName struct {
			Text string `json:"text"`
		} `json:"displayName"`
		FormattedAddress string `json:"formattedAddress"`
		Location         *struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"location"`
		Rating float64  `json:"rating"`
		Types  []string `json:"types"`
	} `json:"places"`
}

func (c *GooglePlacesClient) Search(ctx context.Context, query string, maxResults int) ([]entity.VenueCandidate, error) {
	if maxResults <= 0 {
		return []entity.VenueCandidate{}, nil
	}

	payload, err := json.Marshal(placesSearchRequest{TextQuery: query, PageSize: min(maxResults, googlePlacesMaxPage)})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.searchURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", googlePlacesFieldMask)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("places request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("places returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var body placesSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode places response: %w", err)
	}

	venues := make([]entity.VenueCandidate, 0, len(body.Places))
	for _, p := range body.Places {
		if p.DisplayName.Text == "" {
			continue
		}
		v := entity.VenueCandidate{
			Name:       p.DisplayName.Text,
			ExternalID: p.ID,
			Address:    p.FormattedAddress,
			Rating:     p.Rating,
			Categories: p.Types,
		}
		if p.Location != nil {
			v.Coordinates = &entity.Coordinates{Latitude: p.Location.Latitude, Longitude: p.Location.Longitude}
		}
		venues = append(venues, v)
		if len(venues) == maxResults {
			break
		}
	}
	return venues, nil
}

// MockPlacesClient returns maxResults made-up venues named after the query.
type MockPlacesClient struct{}

func NewMockPlacesClient() *MockPlacesClient { return &MockPlacesClient{} }

func (c *MockPlacesClient) Name() string { return "mock_places" }

func (c *MockPlacesClient) Search(_ context.Context, query string, maxResults int) ([]entity.VenueCandidate, error) {
	venues := make([]entity.VenueCandidate, 0, maxResults)
	for i := 1; i <= maxResults; i++ {
		venues = append(venues, entity.VenueCandidate{
			Name:       fmt.Sprintf("Mock Place %d for %s", i, query),
			ExternalID: fmt.Sprintf("mock-%s-%s", slug.Make(query), utils.GenerateID(8)),
			Address:    fmt.Sprintf("%d Mock St", 100+i),
			Rating:     4.5,
			Categories: []string{"point_of_interest"},
		})
	}
	return venues, nil
}
