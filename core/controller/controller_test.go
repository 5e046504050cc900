package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"dateplanner-api/core/constants"
	"dateplanner-api/core/errors"
	"dateplanner-api/core/utils"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestErrorResponseMapsPlanErrors(t *testing.T) {
	cases := []struct {
		code   errors.ErrorCode
		status int
	}{
		{errors.ErrCalendarNotConnected, http.StatusPreconditionRequired},
		{errors.ErrInvalidTimeRange, http.StatusBadRequest},
		{errors.ErrNoMutualFreeTime, http.StatusUnprocessableEntity},
		{errors.ErrNoIdeasGenerated, http.StatusUnprocessableEntity},
		{errors.ErrNoVenuesFound, http.StatusUnprocessableEntity},
		{errors.ErrNoSuitableVenues, http.StatusUnprocessableEntity},
		{errors.ErrUpstreamUnavailable, http.StatusBadGateway},
		{errors.ErrNotInCouple, http.StatusBadRequest},
	}

	h := NewBaseController()
	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			c, rec := newContext()
			require.NoError(t, h.ErrorResponse(c, errors.NewAppError(tc.code, "boom", nil)))
			assert.Equal(t, tc.status, rec.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.code, body.Code)
			assert.Equal(t, "boom", body.Message)
		})
	}
}

func TestErrorResponseUnwrapsAndKeepsDetails(t *testing.T) {
	h := NewBaseController()
	c, rec := newContext()

	wrapped := fmt.Errorf("stage failed: %w", errors.Upstream("resolving_venues", fmt.Errorf("dial tcp")))
	require.NoError(t, h.ErrorResponse(c, wrapped))
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "resolving_venues", body["details"].(map[string]any)["stage"])
}

func TestErrorResponseUnknownError(t *testing.T) {
	h := NewBaseController()
	c, rec := newContext()
	require.NoError(t, h.ErrorResponse(c, fmt.Errorf("plain")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestUserIDFromContext(t *testing.T) {
	h := NewBaseController()
	c, _ := newContext()

	_, err := h.UserID(c)
	require.Error(t, err)

	id := uuid.New()
	c.Set(constants.ContextTokenData, &utils.TokenClaims{UserID: id})
	got, err := h.UserID(c)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}
