package httpx

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Context represents the context of the current HTTP request.
type Context = echo.Context

// HandlerFunc defines a function to handle HTTP requests.
type HandlerFunc = echo.HandlerFunc

// MiddlewareFunc defines a function to process middleware.
type MiddlewareFunc = echo.MiddlewareFunc

// App is the main application instance for handling HTTP requests.
type App struct{ e *echo.Echo }

// New creates a new App instance.
func New() *App { return &App{echo.New()} }

// Group creates a route group with an optional prefix and middleware stack.
// Returns a Router that wraps the internal group.
func (a *App) Group(prefix string, mw ...MiddlewareFunc) *Router {
	if a == nil || a.e == nil {
		return &Router{}
	}
	return &Router{g: a.e.Group(prefix, mw...)}
}

// RecoverMiddleware returns a middleware that recovers from panics.
func RecoverMiddleware() MiddlewareFunc { return middleware.Recover() }

// LoggerMiddleware returns a middleware that logs HTTP requests.
func LoggerMiddleware() MiddlewareFunc { return middleware.Logger() }

// RequestIDMiddleware tags every request and response with an X-Request-Id,
// generating a UUID when the client did not send one.
func RequestIDMiddleware() MiddlewareFunc {
	return middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	})
}

// HTTPError constructs an HTTP error for returning from handlers.
func HTTPError(code int, message any) error { return echo.NewHTTPError(code, message) }

// MIME types used by handlers.
const (
	MIMEApplicationJSON = echo.MIMEApplicationJSON
	HeaderAccept        = echo.HeaderAccept
	HeaderContentType   = echo.HeaderContentType
	HeaderXRequestID    = echo.HeaderXRequestID
)
