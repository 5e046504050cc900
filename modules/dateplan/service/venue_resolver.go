package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dateplanner-api/core/metrics"
	"dateplanner-api/modules/dateplan/client"
	"dateplanner-api/modules/dateplan/entity"
)

type VenueResolver struct {
	places  client.PlacesProvider
	metrics *metrics.Metrics
	timeout time.Duration
}

func NewVenueResolver(places client.PlacesProvider, m *metrics.Metrics, timeout time.Duration) *VenueResolver {
	return &VenueResolver{places: places, metrics: m, timeout: timeout}
}

// FindVenues searches "<searchQuery> in <locationHint>" and returns at most
// maxResults candidates in provider order. No match is an empty list.
func (r *VenueResolver) FindVenues(ctx context.Context, searchQuery, locationHint string, maxResults int) ([]entity.VenueCandidate, error) {
	query := strings.TrimSpace(searchQuery)
	if query == "" || maxResults <= 0 {
		return []entity.VenueCandidate{}, nil
	}
	if hint := strings.TrimSpace(locationHint); hint != "" {
		query = fmt.Sprintf("%s in %s", query, hint)
	}

	callCtx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	venues, err := r.places.Search(callCtx, query, maxResults)
	r.metrics.ObserveProvider(r.places.Name(), "search", start, err)
	if err != nil {
		return nil, err
	}
	if len(venues) > maxResults {
		venues = venues[:maxResults]
	}
	if venues == nil {
		venues = []entity.VenueCandidate{}
	}
	return venues, nil
}
