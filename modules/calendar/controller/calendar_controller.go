package controller

import (
	"strconv"
	"time"

	"dateplanner-api/core/constants"
	"dateplanner-api/core/controller"
	"dateplanner-api/core/errors"
	"dateplanner-api/core/utils"
	"dateplanner-api/modules/calendar/dto"
	"dateplanner-api/modules/calendar/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const defaultEventsWindow = 7 * 24 * time.Hour

type CalendarController struct {
	controller.BaseController
	CalendarService *service.CalendarService
	minSlotHours    float64
}

func NewCalendarController(svc *service.CalendarService, minSlotHours float64) *CalendarController {
	return &CalendarController{
		BaseController:  controller.NewBaseController(),
		CalendarService: svc,
		minSlotHours:    minSlotHours,
	}
}

// GetConnections lists the caller's calendar connections.
// GET /api/v1/private/calendar/connections
func (controller *CalendarController) GetConnections(c echo.Context) error {
	userID, err := controller.UserID(c)
	if err != nil {
		return controller.ErrorResponse(c, err)
	}

	connections, err := controller.CalendarService.GetConnections(c.Request().Context(), userID)
	if err != nil {
		return controller.ErrorResponse(c, err)
	}

	return controller.SuccessResponse(c, dto.CalendarConnectionListResponse{Connections: connections}, "get connections success")
}

// DisconnectCalendar removes a stored calendar credential.
// DELETE /api/v1/private/calendar/connections/:provider
func (controller *CalendarController) DisconnectCalendar(c echo.Context) error {
	userID, err := controller.UserID(c)
	if err != nil {
		return controller.ErrorResponse(c, err)
	}

	provider := c.Param("provider")
	if provider != constants.ProviderGoogle {
		return controller.BadRequest(errors.ErrInvalidInput, "Invalid provider")
	}

	if err := controller.CalendarService.DisconnectCalendar(c.Request().Context(), userID, provider); err != nil {
		return controller.ErrorResponse(c, err)
	}

	return controller.SuccessResponse(c, nil, "disconnect calendar success")
}

// GetEvents returns the caller's events and their prompt rendering.
// GET /api/v1/private/calendar/events?start=...&end=...
func (controller *CalendarController) GetEvents(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := controller.UserID(c)
	if err != nil {
		return controller.ErrorResponse(c, err)
	}

	start, end, err := parseRange(c, defaultEventsWindow)
	if err != nil {
		return controller.ErrorResponse(c, err)
	}

	events, err := controller.CalendarService.GetEvents(ctx, userID, start, end)
	if err != nil {
		return controller.ErrorResponse(c, err)
	}

	items := make([]dto.EventResponse, 0, len(events))
	for _, ev := range events {
		items = append(items, dto.EventResponse{
			Start:       ev.Start,
			End:         ev.End,
			Summary:     ev.Summary,
			Description: ev.Description,
		})
	}

	return controller.SuccessResponse(c, dto.EventsResponse{
		Events:  items,
		Context: service.DescribeEvents(events),
	}, "get events success")
}

// GetFreeSlots returns the mutual free time of the caller and another user.
// GET /api/v1/private/calendar/free-slots?partner_id=...&start=...&end=...&min_hours=...
func (controller *CalendarController) GetFreeSlots(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := controller.UserID(c)
	if err != nil {
		return controller.ErrorResponse(c, err)
	}

	partnerID, err := uuid.Parse(c.QueryParam("partner_id"))
	if err != nil {
		return controller.BadRequest(errors.ErrInvalidInput, "partner_id must be a valid uuid")
	}

	start, end, err := parseRange(c, defaultEventsWindow)
	if err != nil {
		return controller.ErrorResponse(c, err)
	}

	minHours := controller.minSlotHours
	if raw := c.QueryParam("min_hours"); raw != "" {
		minHours, err = strconv.ParseFloat(raw, 64)
		if err != nil || minHours <= 0 {
			return controller.BadRequest(errors.ErrInvalidInput, "min_hours must be a positive number")
		}
	}

	slots, err := controller.CalendarService.FindFreeSlots(ctx, userID, partnerID, start, end, minHours)
	if err != nil {
		return controller.ErrorResponse(c, err)
	}

	items := make([]dto.FreeSlotResponse, 0, len(slots))
	for _, slot := range slots {
		items = append(items, dto.FreeSlotResponse{
			Start:         slot.Start,
			End:           slot.End,
			DurationHours: slot.DurationHours,
		})
	}

	return controller.SuccessResponse(c, dto.FreeSlotsResponse{Slots: items}, "get free slots success")
}

// AddEvent creates an event in the caller's primary calendar.
// POST /api/v1/private/calendar/add-event
func (controller *CalendarController) AddEvent(c echo.Context) error {
	userID, err := controller.UserID(c)
	if err != nil {
		return controller.ErrorResponse(c, err)
	}

	requestData := new(dto.CreateEventRequest)
	if err := c.Bind(requestData); err != nil {
		return controller.BadRequest(errors.ErrInvalidRequestData, "Invalid request data")
	}

	result, err := controller.CalendarService.CreateEvent(c.Request().Context(), userID, requestData)
	if err != nil {
		return controller.ErrorResponse(c, err)
	}

	return controller.CreatedResponse(c, result, "Event '"+requestData.Title+"' added to your calendar!")
}

// parseRange reads start/end query params. A missing start means now and a
// missing end means start plus fallback.
func parseRange(c echo.Context, fallback time.Duration) (time.Time, time.Time, error) {
	start := time.Now().UTC()
	if raw := c.QueryParam("start"); raw != "" {
		parsed, err := utils.ParseTimestamp(raw)
		if err != nil {
			return time.Time{}, time.Time{}, errors.NewAppError(errors.ErrInvalidInput, "invalid start", err)
		}
		start = parsed
	}

	end := start.Add(fallback)
	if raw := c.QueryParam("end"); raw != "" {
		parsed, err := utils.ParseTimestamp(raw)
		if err != nil {
			return time.Time{}, time.Time{}, errors.NewAppError(errors.ErrInvalidInput, "invalid end", err)
		}
		end = parsed
	}

	if !end.After(start) {
		return time.Time{}, time.Time{}, errors.NewAppError(errors.ErrInvalidTimeRange, "end must be after start", nil)
	}
	return start, end, nil
}
