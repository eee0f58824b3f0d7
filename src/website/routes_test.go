package website

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"git.campusqa.org/campusqa/campusqa/src/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogContextErrors(t *testing.T) {
	err1 := errors.New("test error 1")

	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	logger.Print("sanity check")

	assert.Contains(t, buf.String(), "sanity check")

	router := &Router{}
	routes := RouteBuilder{
		Router: router,
		Middlewares: []Middleware{
			func(h Handler) Handler {
				return func(c *RequestContext) (res ResponseData) {
					c.Logger = &logger
					return h(c)
				}
			},
			logContextErrorsMiddleware,
		},
	}

	routes.GET("Test", regexp.MustCompile("^/test$"), func(c *RequestContext) ResponseData {
		return c.ErrorResponse(err1)
	})

	srv := httptest.NewServer(router)
	defer srv.Close()

	res, err := http.Get(srv.URL + "/test")
	if assert.Nil(t, err) {
		defer res.Body.Close()

		t.Logf("Log contents: %s", buf.String())

		assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
		assert.Contains(t, buf.String(), err1.Error())
	}
}

func decodeErrorBody(t *testing.T, res *http.Response) ErrorBody {
	t.Helper()
	defer res.Body.Close()
	var body ErrorBody
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	return body
}

func TestRoutesWithoutSession(t *testing.T) {
	srv := httptest.NewServer(NewWebsiteRoutes(nil, nil))
	defer srv.Close()

	authed := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/posts"},
		{http.MethodPost, "/posts/1/upvote"},
		{http.MethodPost, "/posts/1/downvote"},
		{http.MethodPost, "/posts/1/likes"},
		{http.MethodDelete, "/posts/1/likes"},
		{http.MethodPost, "/posts/1/unaccept"},
		{http.MethodPost, "/posts/1/answers"},
		{http.MethodPost, "/posts/1/answers/2/edit"},
		{http.MethodPost, "/posts/1/answers/2/delete"},
		{http.MethodPost, "/posts/1/answers/2/accept"},
		{http.MethodPost, "/posts/1/answers/2/redaction"},
		{http.MethodGet, "/posts/1/answers/2/revisions"},
	}
	for _, tc := range authed {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req, err := http.NewRequest(tc.method, srv.URL+tc.path, strings.NewReader(`{}`))
			require.NoError(t, err)
			res, err := http.DefaultClient.Do(req)
			require.NoError(t, err)

			assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
			assert.Equal(t, "application/json", res.Header.Get("Content-Type"))
			body := decodeErrorBody(t, res)
			assert.Equal(t, "you must be signed in to do that", body.Error)
			assert.Equal(t, res.Header.Get(RequestIDHeader), body.RequestID)
		})
	}

	t.Run("unknown paths are 404", func(t *testing.T) {
		for _, path := range []string{"/nope", "/posts/abc", "/posts/1/answers/x/edit"} {
			res, err := http.Get(srv.URL + path)
			require.NoError(t, err)
			assert.Equal(t, http.StatusNotFound, res.StatusCode, path)
			assert.Equal(t, "Not Found", decodeErrorBody(t, res).Error)
		}
	})

	t.Run("wrong method falls through to 404", func(t *testing.T) {
		res, err := http.Get(srv.URL + "/posts/1/upvote")
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
		res.Body.Close()
	})
}

func TestRequestID(t *testing.T) {
	srv := httptest.NewServer(NewWebsiteRoutes(nil, nil))
	defer srv.Close()

	t.Run("echoes a valid id", func(t *testing.T) {
		id := uuid.NewString()
		req, _ := http.NewRequest(http.MethodGet, srv.URL+"/nope", nil)
		req.Header.Set(RequestIDHeader, id)
		res, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		res.Body.Close()
		assert.Equal(t, id, res.Header.Get(RequestIDHeader))
	})
	t.Run("replaces garbage", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, srv.URL+"/nope", nil)
		req.Header.Set(RequestIDHeader, "not a uuid")
		res, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		res.Body.Close()
		_, err = uuid.Parse(res.Header.Get(RequestIDHeader))
		assert.NoError(t, err)
	})
}

// Builds a router whose requests are already signed in as user, without a
// database.
func signedInRouter(user *models.User) (*Router, RouteBuilder) {
	router := &Router{}
	routes := RouteBuilder{
		Router: router,
		Middlewares: []Middleware{
			requestIDMiddleware,
			trackRequestPerf,
			logContextErrorsMiddleware,
			panicCatcherMiddleware,
			func(h Handler) Handler {
				return func(c *RequestContext) ResponseData {
					c.CurrentUser = user
					return h(c)
				}
			},
			needsAuth,
		},
	}
	return router, routes
}

func TestPayloadValidation(t *testing.T) {
	router, routes := signedInRouter(&models.User{ID: 4, Email: "s@columbia.edu"})
	routes.POST("PostCreate", regexp.MustCompile(`^/posts$`), PostCreate)
	routes.POST("AnswerRedaction", regexp.MustCompile(`^/posts/(?P<postid>\d+)/answers/(?P<answerid>\d+)/redaction$`), func(c *RequestContext) ResponseData {
		var payload redactionPayload
		if err := decodePayload(c, &payload); err != nil {
			return c.ErrorResponse(err)
		}
		return JsonResponse(c, http.StatusOK, payload)
	})
	srv := httptest.NewServer(router)
	defer srv.Close()

	cases := []struct {
		name    string
		path    string
		payload string
		field   string
		message string
	}{
		{"empty body", "/posts", ``, "title", "can't be blank"},
		{"missing post body", "/posts", `{"title":"Q"}`, "body", "can't be blank"},
		{"long title", "/posts", `{"title":"` + strings.Repeat("a", 256) + `","body":"b"}`, "title", "is too long (maximum is 255 characters)"},
		{"bad json", "/posts", `{"title":`, "body", "is not valid JSON"},
		{"oversized body", "/posts", `{"title":"Q","body":"` + strings.Repeat("a", maxBodyBytes) + `"}`, "body", "is too large (maximum is 1048576 bytes)"},
		{"unknown redaction state", "/posts/1/answers/2/redaction", `{"redaction_state":"hidden"}`, "redaction_state", "must be one of: visible, redacted"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := http.Post(srv.URL+tc.path, "application/json", strings.NewReader(tc.payload))
			require.NoError(t, err)
			assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
			body := decodeErrorBody(t, res)
			assert.Equal(t, tc.field, body.Field)
			assert.Equal(t, tc.message, body.Error)
		})
	}
}

func TestPanicsBecome500s(t *testing.T) {
	router, routes := signedInRouter(&models.User{ID: 4})
	routes.GET("Boom", regexp.MustCompile(`^/boom$`), func(c *RequestContext) ResponseData {
		panic("the database caught fire")
	})
	srv := httptest.NewServer(router)
	defer srv.Close()

	res, err := http.Get(srv.URL + "/boom")
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	body := decodeErrorBody(t, res)
	assert.Equal(t, internalErrorMessage, body.Error)
	assert.NotContains(t, body.Error, "fire")
}
