package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"dateplanner-api/core/constants"
	"dateplanner-api/core/logger"
	"dateplanner-api/core/utils"
	"dateplanner-api/modules/calendar/entity"

	"golang.org/x/oauth2"
)

const googleCalendarAPIBase = "https://www.googleapis.com/calendar/v3"

type GoogleProvider struct {
	tokens  *TokenManager
	baseURL string
	client  *http.Client
}

func NewGoogleProvider(tokens *TokenManager) *GoogleProvider {
	return NewGoogleProviderWithBaseURL(tokens, googleCalendarAPIBase)
}

func NewGoogleProviderWithBaseURL(tokens *TokenManager, baseURL string) *GoogleProvider {
	return &GoogleProvider{
		tokens:  tokens,
		baseURL: baseURL,
		client:  &http.Client{Timeout: constants.DefaultTimeout},
	}
}

func (p *GoogleProvider) Name() string {
	return constants.ProviderGoogle
}

type googleEventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

type googleEvent struct {
	ID          string          `json:"id,omitempty"`
	Status      string          `json:"status,omitempty"`
	Summary     string          `json:"summary,omitempty"`
	Description string          `json:"description,omitempty"`
	Location    string          `json:"location,omitempty"`
	HTMLLink    string          `json:"htmlLink,omitempty"`
	Start       googleEventTime `json:"start"`
	End         googleEventTime `json:"end"`
}

type googleEventList struct {
	Items         []googleEvent `json:"items"`
	NextPageToken string        `json:"nextPageToken"`
}

// httpClient builds an authorized client for conn.
func (p *GoogleProvider) httpClient(ctx context.Context, conn *entity.CalendarConnection) (*http.Client, error) {
	tok, err := p.tokens.Token(ctx, conn)
	if err != nil {
		return nil, err
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.client)
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(tok)), nil
}

func (p *GoogleProvider) ListEvents(ctx context.Context, conn *entity.CalendarConnection, timeMin, timeMax time.Time) ([]entity.BusyInterval, error) {
	client, err := p.httpClient(ctx, conn)
	if err != nil {
		return nil, err
	}

	var events []entity.BusyInterval
	pageToken := ""
	for {
		q := url.Values{}
		q.Set("timeMin", timeMin.UTC().Format(time.RFC3339))
		q.Set("timeMax", timeMax.UTC().Format(time.RFC3339))
		q.Set("singleEvents", "true")
		q.Set("orderBy", "startTime")
		q.Set("maxResults", "250")
		if pageToken != "" {
			q.Set("pageToken", pageToken)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/calendars/primary/events?"+q.Encode(), nil)
		if err != nil {
			return nil, err
		}

		var page googleEventList
		if err := doJSON(client, req, http.StatusOK, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			if item.Status == "cancelled" {
				continue
			}
			interval, err := item.toInterval()
			if err != nil {
				logger.Warn("GoogleProvider:ListEvents:SkipEvent", "event_id", item.ID, "error", err)
				continue
			}
			events = append(events, interval)
		}

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	return events, nil
}

func (e googleEvent) toInterval() (entity.BusyInterval, error) {
	start, err := e.Start.parse()
	if err != nil {
		return entity.BusyInterval{}, err
	}
	end, err := e.End.parse()
	if err != nil {
		return entity.BusyInterval{}, err
	}
	return entity.BusyInterval{
		Start:       start,
		End:         end,
		Summary:     e.Summary,
		Description: e.Description,
	}, nil
}

func (t googleEventTime) parse() (time.Time, error) {
	if t.DateTime != "" {
		return utils.ParseTimestamp(t.DateTime)
	}
	if t.Date != "" {
		return utils.ParseTimestamp(t.Date)
	}
	return time.Time{}, fmt.Errorf("event time has neither dateTime nor date")
}

func (p *GoogleProvider) InsertEvent(ctx context.Context, conn *entity.CalendarConnection, event NewEvent) (*CreatedEvent, error) {
	client, err := p.httpClient(ctx, conn)
	if err != nil {
		return nil, err
	}

	tz := event.TimeZone
	if tz == "" {
		tz = "UTC"
	}
	body, err := json.Marshal(googleEvent{
		Summary:     event.Summary,
		Description: event.Description,
		Location:    event.Location,
		Start:       googleEventTime{DateTime: event.Start.Format(time.RFC3339), TimeZone: tz},
		End:         googleEventTime{DateTime: event.End.Format(time.RFC3339), TimeZone: tz},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/calendars/primary/events", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var created googleEvent
	if err := doJSON(client, req, http.StatusOK, &created); err != nil {
		return nil, err
	}
	return &CreatedEvent{ID: created.ID, HTMLLink: created.HTMLLink}, nil
}

func doJSON(client *http.Client, req *http.Request, wantStatus int, out any) error {
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("google calendar api %s: status %d: %s", req.URL.Path, resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
