package website

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"syscall"
	"time"

	"git.campusqa.org/campusqa/campusqa/src/logging"
	"git.campusqa.org/campusqa/campusqa/src/models"
	"git.campusqa.org/campusqa/campusqa/src/perf"
	"git.campusqa.org/campusqa/campusqa/src/qadata"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type Router struct {
	Routes []Route

	// Handed to every request. Both may be nil in tests of routes that never
	// touch them.
	Conn      *pgxpool.Pool
	Moderator qadata.Moderator
}

type Route struct {
	Name    string
	Method  string
	Regexes []*regexp.Regexp
	Handler Handler
}

func (r *Route) String() string {
	if r.Name != "" {
		return r.Name
	}
	var routeStrings []string
	for _, regex := range r.Regexes {
		routeStrings = append(routeStrings, regex.String())
	}
	return fmt.Sprintf("%s %v", r.Method, routeStrings)
}

type RouteBuilder struct {
	Router      *Router
	Middlewares []Middleware
}

type Handler func(c *RequestContext) ResponseData
type Middleware func(h Handler) Handler

func applyMiddlewares(h Handler, ms []Middleware) Handler {
	result := h
	for i := len(ms) - 1; i >= 0; i-- {
		result = ms[i](result)
	}
	return result
}

func (rb *RouteBuilder) Handle(methods []string, name string, regex *regexp.Regexp, h Handler) {
	// Ensure that this regex matches the start of the string
	regexStr := regex.String()
	if len(regexStr) == 0 || regexStr[0] != '^' {
		panic("All routing regexes must begin with '^'")
	}

	h = applyMiddlewares(h, rb.Middlewares)
	for _, method := range methods {
		rb.Router.Routes = append(rb.Router.Routes, Route{
			Name:    name,
			Method:  method,
			Regexes: []*regexp.Regexp{regex},
			Handler: h,
		})
	}
}

func (rb *RouteBuilder) AnyMethod(name string, regex *regexp.Regexp, h Handler) {
	rb.Handle([]string{""}, name, regex, h)
}

func (rb *RouteBuilder) GET(name string, regex *regexp.Regexp, h Handler) {
	rb.Handle([]string{http.MethodGet}, name, regex, h)
}

func (rb *RouteBuilder) POST(name string, regex *regexp.Regexp, h Handler) {
	rb.Handle([]string{http.MethodPost}, name, regex, h)
}

func (rb *RouteBuilder) DELETE(name string, regex *regexp.Regexp, h Handler) {
	rb.Handle([]string{http.MethodDelete}, name, regex, h)
}

func (rb *RouteBuilder) WithMiddleware(ms ...Middleware) RouteBuilder {
	newRb := *rb
	newRb.Middlewares = append(append([]Middleware(nil), rb.Middlewares...), ms...)

	return newRb
}

func (r *Router) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	method := req.Method
	if method == http.MethodHead {
		method = http.MethodGet
	}

	path := strings.TrimSuffix(req.URL.Path, "/")
	if path == "" {
		path = "/"
	}

	for _, route := range r.Routes {
		if route.Method != "" && route.Method != method {
			continue
		}
		params, ok := route.match(path)
		if !ok {
			continue
		}

		c := &RequestContext{
			Route:      route.String(),
			Logger:     logging.GlobalLogger(),
			Req:        req,
			Res:        rw,
			PathParams: params,
			Conn:       r.Conn,
			Moderator:  r.Moderator,

			ctx: req.Context(),
		}
		doRequest(rw, c, route.Handler)
		return
	}

	panic(fmt.Sprintf("no route matched %s %s; register a catch-all route for 404s", req.Method, req.URL))
}

// Every regex must match. Named groups become path params.
func (r *Route) match(path string) (map[string]string, bool) {
	params := map[string]string{}
	for _, regex := range r.Regexes {
		match := regex.FindStringSubmatch(path)
		if match == nil {
			return nil, false
		}
		for i, name := range regex.SubexpNames() {
			if name != "" {
				params[name] = match[i]
			}
		}
	}
	return params, true
}

type RequestContext struct {
	Route      string
	Logger     *zerolog.Logger
	Req        *http.Request
	PathParams map[string]string

	// The http package's own response object, not just a ResponseWriter.
	Res http.ResponseWriter

	Conn           *pgxpool.Pool
	Moderator      qadata.Moderator
	CurrentUser    *models.User
	CurrentSession *models.Session
	RequestID      string

	Perf *perf.RequestPerf

	ctx context.Context
}

// Our RequestContext is a context.Context

var _ context.Context = &RequestContext{}

func (c *RequestContext) Deadline() (time.Time, bool) {
	return c.ctx.Deadline()
}

func (c *RequestContext) Done() <-chan struct{} {
	return c.ctx.Done()
}

func (c *RequestContext) Err() error {
	return c.ctx.Err()
}

func (c *RequestContext) Value(key any) any {
	return c.ctx.Value(key)
}

// Replaces the context that RequestContext delegates to. Middleware uses this
// to attach loggers and perf to everything downstream.
func (c *RequestContext) setContext(ctx context.Context) {
	c.ctx = ctx
}

var errBodyTooLarge = errors.New("request body too large")

// Decodes a JSON request body into dest. An empty body leaves dest untouched.
// Bodies over maxBodyBytes return errBodyTooLarge.
func (c *RequestContext) DecodeJson(dest any) error {
	if c.Req.Body == nil {
		return nil
	}
	body, err := io.ReadAll(io.LimitReader(c.Req.Body, maxBodyBytes+1))
	if err != nil {
		return err
	}
	if len(body) > maxBodyBytes {
		return errBodyTooLarge
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return json.Unmarshal(body, dest)
}

const maxBodyBytes = 1 << 20

func (c *RequestContext) PathParamInt(name string) (int, bool) {
	v, err := strconv.Atoi(c.PathParams[name])
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

type ResponseData struct {
	StatusCode int
	Body       *bytes.Buffer
	Errors     []error

	header http.Header
}

var _ http.ResponseWriter = &ResponseData{}

func (rd *ResponseData) Header() http.Header {
	if rd.header == nil {
		rd.header = make(http.Header)
	}

	return rd.header
}

func (rd *ResponseData) Write(p []byte) (n int, err error) {
	if rd.Body == nil {
		rd.Body = new(bytes.Buffer)
	}

	return rd.Body.Write(p)
}

func (rd *ResponseData) WriteHeader(status int) {
	rd.StatusCode = status
}

func (rd *ResponseData) SetCookie(cookie *http.Cookie) {
	rd.Header().Add("Set-Cookie", cookie.String())
}

func (rd *ResponseData) WriteJson(data any, rp *perf.RequestPerf) {
	rp.StartBlock("JSON", "Encode response")
	defer rp.EndBlock()

	dataJson, err := json.Marshal(data)
	if err != nil {
		panic(err)
	}
	rd.Header().Set("Content-Type", "application/json")
	rd.Write(dataJson)
}

func JsonResponse(c *RequestContext, status int, data any) ResponseData {
	res := ResponseData{StatusCode: status}
	res.WriteJson(data, c.Perf)
	return res
}

func doRequest(rw http.ResponseWriter, c *RequestContext, h Handler) {
	defer func() {
		// Last resort; panicCatcherMiddleware normally turns panics into
		// proper error responses first.
		if recovered := recover(); recovered != nil {
			logging.LogPanicValue(c.Logger, recovered, "request panicked and was not handled")
			rw.Header().Set("Content-Type", "application/json")
			rw.WriteHeader(http.StatusInternalServerError)
			rw.Write([]byte(`{"error":"` + internalErrorMessage + `"}`))
		}
	}()

	res := h(c)
	if res.StatusCode == 0 {
		res.StatusCode = http.StatusOK
	}

	header := rw.Header()
	for name, vals := range res.Header() {
		for _, val := range vals {
			header.Add(name, val)
		}
	}
	if res.Body != nil && header.Get("Content-Length") == "" {
		header.Set("Content-Length", strconv.Itoa(res.Body.Len()))
	}
	rw.WriteHeader(res.StatusCode)

	if res.Body == nil || c.Req.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(rw, res.Body); err != nil {
		if errors.Is(err, syscall.EPIPE) {
			// The client hung up.
			c.Logger.Debug().Msg("broken pipe")
		} else {
			c.Logger.Error().Err(err).Msg("failed to write response body")
		}
	}
}
