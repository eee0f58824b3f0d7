package website

import (
	"errors"
	"fmt"
	"net/http"

	"git.campusqa.org/campusqa/campusqa/src/qaerr"
)

// A SafeError can be used to wrap another error and explicitly provide
// an error message that is safe to show to a user. This allows the original
// error to easily be logged and for servers to consistently return errors
// in a standard format, without having to worry about leaking sensitive
// info (assuming you use the right middleware!).
type SafeError struct {
	Wrapped error
	Msg     string
}

func NewSafeError(err error, msg string, args ...interface{}) error {
	return &SafeError{
		Wrapped: err,
		Msg:     fmt.Sprintf(msg, args...),
	}
}

func (s *SafeError) Error() string {
	return s.Msg
}

func (s *SafeError) Unwrap() error {
	return s.Wrapped
}

type ErrorBody struct {
	Error      string   `json:"error"`
	Field      string   `json:"field,omitempty"`
	Categories []string `json:"categories,omitempty"`
	RequestID  string   `json:"request_id,omitempty"`
}

const internalErrorMessage = "There was a problem handling your request."

// Maps an error from the domain packages to a status code and a body that is
// safe to show. Anything unrecognized is a 500 with a generic message.
func statusForError(err error) (int, ErrorBody) {
	var verr *qaerr.ValidationError
	var ferr *qaerr.FlaggedError
	var nerr *qaerr.NotFoundError
	var serr *SafeError

	switch {
	case errors.Is(err, qaerr.ErrUnauthenticated):
		return http.StatusUnauthorized, ErrorBody{Error: qaerr.ErrUnauthenticated.Error()}
	case errors.Is(err, qaerr.ErrForbidden):
		return http.StatusForbidden, ErrorBody{Error: qaerr.ErrForbidden.Error()}
	case errors.As(err, &nerr):
		return http.StatusNotFound, ErrorBody{Error: nerr.Error()}
	case errors.Is(err, qaerr.ErrNotFound):
		return http.StatusNotFound, ErrorBody{Error: qaerr.ErrNotFound.Error()}
	case errors.Is(err, qaerr.ErrThreadLocked):
		return http.StatusConflict, ErrorBody{Error: qaerr.ErrThreadLocked.Error()}
	case errors.As(err, &ferr):
		return http.StatusUnprocessableEntity, ErrorBody{
			Error:      qaerr.ErrContentFlagged.Error(),
			Categories: ferr.Categories,
		}
	case errors.Is(err, qaerr.ErrContentFlagged):
		return http.StatusUnprocessableEntity, ErrorBody{Error: qaerr.ErrContentFlagged.Error()}
	case errors.Is(err, qaerr.ErrModerationUnavailable):
		return http.StatusServiceUnavailable, ErrorBody{Error: qaerr.ErrModerationUnavailable.Error()}
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, ErrorBody{Error: verr.Message, Field: verr.Field}
	case errors.As(err, &serr):
		return http.StatusBadRequest, ErrorBody{Error: serr.Msg}
	}
	return http.StatusInternalServerError, ErrorBody{Error: internalErrorMessage}
}

// Renders err as a JSON error response. Server errors are attached to the
// response so the logging middleware records them with their stack.
func (c *RequestContext) ErrorResponse(err error) ResponseData {
	status, body := statusForError(err)
	body.RequestID = c.RequestID

	res := JsonResponse(c, status, body)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		res.Errors = append(res.Errors, err)
	} else {
		c.Logger.Debug().Err(err).Int("status", status).Msg("request rejected")
	}
	return res
}

func FourOhFour(c *RequestContext) ResponseData {
	return JsonResponse(c, http.StatusNotFound, ErrorBody{Error: "Not Found", RequestID: c.RequestID})
}
