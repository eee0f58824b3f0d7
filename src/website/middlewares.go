package website

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"git.campusqa.org/campusqa/campusqa/src/auth"
	"git.campusqa.org/campusqa/campusqa/src/db"
	"git.campusqa.org/campusqa/campusqa/src/logging"
	"git.campusqa.org/campusqa/campusqa/src/models"
	"git.campusqa.org/campusqa/campusqa/src/oops"
	"git.campusqa.org/campusqa/campusqa/src/perf"
	"git.campusqa.org/campusqa/campusqa/src/qaerr"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "campusqa_request_duration_sec",
	Help: "Duration of HTTP requests, by route and status",
}, []string{"route", "status"})

const slowRequestThreshold = 500 * time.Millisecond

const RequestIDHeader = "X-Request-Id"

// Gives each request an id and a logger that carries it. The id is echoed
// back in a response header and in error bodies.
func requestIDMiddleware(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		c.RequestID = c.Req.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(c.RequestID); err != nil {
			c.RequestID = uuid.NewString()
		}

		logger := c.Logger.With().
			Str("request_id", c.RequestID).
			Str("route", c.Route).
			Logger()
		c.Logger = &logger
		c.setContext(logging.AttachLoggerToContext(c.Logger, c.ctx))

		res := h(c)
		res.Header().Set(RequestIDHeader, c.RequestID)
		return res
	}
}

func panicCatcherMiddleware(h Handler) Handler {
	return func(c *RequestContext) (res ResponseData) {
		defer func() {
			if recovered := recover(); recovered != nil {
				maybeError, ok := recovered.(error)
				var err error
				if ok {
					err = oops.New(maybeError, "recovered from panic")
				} else {
					err = oops.New(nil, "Recovered from panic with value: %v", recovered)
				}
				res = c.ErrorResponse(err)
			}
		}()

		return h(c)
	}
}

func trackRequestPerf(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		c.Perf = perf.MakeNewRequestPerf(c.Route, c.Req.Method, c.Req.URL.Path)
		c.setContext(perf.AttachPerf(c.ctx, c.Perf))

		res := h(c)

		c.Perf.EndRequest()
		status := res.StatusCode
		if status == 0 {
			status = http.StatusOK
		}
		requestDuration.WithLabelValues(c.Route, strconv.Itoa(status)).Observe(c.Perf.Duration().Seconds())

		var log = c.Logger.Debug()
		if c.Perf.Duration() > slowRequestThreshold {
			log = c.Logger.Warn()
		}
		log.Object("perf", c.Perf).Int("status", status).
			Msg(fmt.Sprintf("Served [%s] %s in %.4fms", c.Perf.Method, c.Perf.Path, float64(c.Perf.Duration().Nanoseconds())/1000/1000))

		return res
	}
}

func logContextErrors(c *RequestContext, errs ...error) {
	for _, err := range errs {
		c.Logger.Error().Timestamp().Stack().Str("Requested", c.Req.URL.String()).Err(err).Msg("error occurred during request")
	}
}

func logContextErrorsMiddleware(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		res := h(c)
		logContextErrors(c, res.Errors...)
		return res
	}
}

// Loads the current user from the session cookie, if there is one. A missing
// or expired session just leaves the request anonymous.
func loadSession(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		cookie, err := c.Req.Cookie(auth.SessionCookieName)
		if err == nil && c.Conn != nil {
			c.Perf.StartBlock("MIDDLEWARE", "Load session")
			user, session, err := getCurrentUserAndSession(c, cookie.Value)
			c.Perf.EndBlock()
			if err != nil {
				return c.ErrorResponse(oops.New(err, "failed to get current user"))
			}

			c.CurrentUser = user
			c.CurrentSession = session
			if user != nil {
				logger := c.Logger.With().Int("user_id", user.ID).Logger()
				c.Logger = &logger
				c.setContext(logging.AttachLoggerToContext(c.Logger, c.ctx))
			}
		}
		// http.ErrNoCookie is the only error Cookie ever returns, so no further handling to do here.

		return h(c)
	}
}

// Given a session id, fetches user data from the database. Will return nil if
// the user cannot be found, and will only return an error if it's serious.
func getCurrentUserAndSession(c *RequestContext, sessionId string) (*models.User, *models.Session, error) {
	session, err := auth.GetSession(c, c.Conn, sessionId)
	if err != nil {
		if errors.Is(err, auth.ErrNoSession) {
			return nil, nil, nil
		}
		return nil, nil, oops.New(err, "failed to get current session")
	}

	user, err := auth.GetUserByID(c, c.Conn, session.UserID)
	if err != nil {
		if errors.Is(err, qaerr.ErrNotFound) || errors.Is(err, db.NotFound) {
			c.Logger.Debug().Int("user_id", session.UserID).Msg("returning no current user for this request because the user for the session couldn't be found")
			return nil, nil, nil
		}
		return nil, nil, oops.New(err, "failed to get user for session")
	}

	return user, session, nil
}

func needsAuth(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		if c.CurrentUser == nil {
			return c.ErrorResponse(qaerr.ErrUnauthenticated)
		}

		return h(c)
	}
}
