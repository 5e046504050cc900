package errors

import (
	stdErrors "errors"
	"fmt"
)

type ErrorCode string

const (
	ErrInternalServer             ErrorCode = "INTERNAL_SERVER_ERROR"
	ErrInvalidInput               ErrorCode = "INVALID_INPUT"
	ErrInvalidRequestData         ErrorCode = "INVALID_REQUEST_DATA"
	ErrUnauthorized               ErrorCode = "UNAUTHORIZED"
	ErrForbidden                  ErrorCode = "FORBIDDEN"
	ErrNotFound                   ErrorCode = "NOT_FOUND"
	ErrAlreadyExists              ErrorCode = "ALREADY_EXISTS"
	ErrGetFailed                  ErrorCode = "GET_FAILED"
	ErrCreateFailed               ErrorCode = "CREATE_FAILED"
	ErrUpdateFailed               ErrorCode = "UPDATE_FAILED"
	ErrDeleteFailed               ErrorCode = "DELETE_FAILED"
	ErrTokenExpired               ErrorCode = "TOKEN_EXPIRED"
	ErrInvalidTokenFormat         ErrorCode = "INVALID_TOKEN_FORMAT"
	ErrMissingAuthorizationHeader ErrorCode = "MISSING_AUTHORIZATION_HEADER"
	ErrInvalidCredentials         ErrorCode = "INVALID_CREDENTIALS"

	// Date planning
	ErrCalendarNotConnected ErrorCode = "CALENDAR_NOT_CONNECTED"
	ErrCalendarUnavailable  ErrorCode = "CALENDAR_UNAVAILABLE"
	ErrInvalidTimeRange     ErrorCode = "INVALID_TIME_RANGE"
	ErrNoMutualFreeTime     ErrorCode = "NO_MUTUAL_FREE_TIME"
	ErrWeatherUnavailable   ErrorCode = "WEATHER_UNAVAILABLE"
	ErrNoIdeasGenerated     ErrorCode = "NO_IDEAS_GENERATED"
	ErrNoVenuesFound        ErrorCode = "NO_VENUES_FOUND"
	ErrNoSuitableVenues     ErrorCode = "NO_SUITABLE_VENUES"
	ErrUpstreamUnavailable  ErrorCode = "UPSTREAM_UNAVAILABLE"

	// Couples
	ErrNotInCouple        ErrorCode = "NOT_IN_COUPLE"
	ErrAlreadyInCouple    ErrorCode = "ALREADY_IN_COUPLE"
	ErrInvitationInvalid  ErrorCode = "INVITATION_INVALID"
	ErrInvitationExpired  ErrorCode = "INVITATION_EXPIRED"
	ErrInvitationMismatch ErrorCode = "INVITATION_EMAIL_MISMATCH"
	ErrSelfInvitation     ErrorCode = "SELF_INVITATION"
)

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
	Err     error     `json:"-"`
}

func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetails attaches structured context returned to the client.
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// AsAppError unwraps err until an *AppError is found.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stdErrors.As(err, &appErr) && appErr != nil {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err wraps an *AppError carrying code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// Upstream marks a transport failure of an external dependency, tagged with
// the pipeline stage that made the call.
func Upstream(stage string, err error) *AppError {
	return NewAppError(ErrUpstreamUnavailable, fmt.Sprintf("upstream unavailable during %s", stage), err).
		WithDetails(map[string]string{"stage": stage})
}
