package httpx

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// Route is one HTTP route definition.
type Route struct {
	Method     string
	Path       string
	Handler    HandlerFunc
	Middleware []MiddlewareFunc
}

// Router registers routes under a shared prefix and middleware stack.
type Router struct {
	g *echo.Group
}

// Routes adds every definition to the router's group. Incomplete definitions
// are skipped.
func (r *Router) Routes(routes ...Route) *Router {
	if r.g == nil {
		return r
	}
	for _, rt := range routes {
		if rt.Handler == nil || rt.Path == "" || rt.Method == "" {
			continue
		}
		r.g.Add(strings.ToUpper(rt.Method), rt.Path, rt.Handler, rt.Middleware...)
	}
	return r
}
