package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dateplanner-api/core/config"
	"dateplanner-api/core/constants"
	"dateplanner-api/core/errors"
	"dateplanner-api/core/utils"
	calendarEntity "dateplanner-api/modules/calendar/entity"
	coupleEntity "dateplanner-api/modules/couple/entity"
	"dateplanner-api/modules/dateplan/client"
	"dateplanner-api/modules/dateplan/dto"
	"dateplanner-api/modules/dateplan/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noCouples struct{}

func (noCouples) GetCoupleByUserID(context.Context, uuid.UUID) (*coupleEntity.Couple, error) {
	return nil, errors.NewAppError(errors.ErrNotInCouple, "You are not currently in a couple", nil)
}

type emptySchedule struct{}

func (emptySchedule) FetchCoupleSchedule(_ context.Context, p1, p2 uuid.UUID, _, _ time.Time) (*calendarEntity.CoupleSchedule, error) {
	return &calendarEntity.CoupleSchedule{Partner1ID: p1, Partner2ID: p2}, nil
}

func newController() *DatePlanController {
	policy := config.PlannerConfig{
		MinSlotHours: 2, IdeaCount: 3, VenuesPerIdea: 5, EventCount: 3,
		PromptSlotCount: 5, ResponseSlotCount: 10, DefaultFrameDays: 7, ExternalCallTimeout: time.Second,
	}
	svc := service.NewDatePlanService(noCouples{}, emptySchedule{}, client.NewMockWeatherClient(), client.NewMockLLMClient(),
		client.NewMockPlacesClient(), nil, nil, policy)
	return NewDatePlanController(svc)
}

func jsonRequest(body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestGenerateDatePlan_Legacy(t *testing.T) {
	c, rec := jsonRequest(`{"prompt":"something fun","time_frame":"this weekend","location":"Paris"}`)

	require.NoError(t, newController().GenerateDatePlan(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data dto.DatePlanResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data.Events, 3)
	assert.Equal(t, "Mock Place 1 for italian restaurant in Paris", body.Data.Events[0].Name)
	assert.NotEmpty(t, body.Data.PlanID)
}

func TestGenerateDatePlan_MissingLocation(t *testing.T) {
	c, rec := jsonRequest(`{"prompt":"something fun"}`)

	require.NoError(t, newController().GenerateDatePlan(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateCoupleDatePlan_RequiresAuth(t *testing.T) {
	c, rec := jsonRequest(`{"prompt":"p","location":"Paris"}`)

	require.NoError(t, newController().GenerateCoupleDatePlan(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGenerateCoupleDatePlan_NotInCouple(t *testing.T) {
	c, rec := jsonRequest(`{"prompt":"p","location":"Paris"}`)
	c.Set(constants.ContextTokenData, &utils.TokenClaims{UserID: uuid.New(), Scope: constants.ScopeTokenAccess})

	require.NoError(t, newController().GenerateCoupleDatePlan(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(errors.ErrNotInCouple), body["code"])
}
