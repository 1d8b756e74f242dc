// Package api exposes the command orchestrator over HTTP.
//
//	POST /cache   {"cmd": "SET string name \"hello world\""}
//	GET  /healthz
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/adeilh/tierkv/cacheaside"
	"github.com/adeilh/tierkv/command"
	"github.com/adeilh/tierkv/httpx"
)

const (
	PathCache  = "/cache"
	PathHealth = "/healthz"
)

var (
	ErrMissingCommand = errors.New("api: missing cmd")
	ErrNotJSON        = errors.New("api: content type must be application/json")
)

// Executor runs one command text against both tiers.
type Executor interface {
	Run(ctx context.Context, text string) (cacheaside.Report, error)
	Ping(ctx context.Context) error
}

// Request is the body of POST /cache. Unknown fields are ignored.
type Request struct {
	Cmd string `json:"cmd"`
}

type Handler struct {
	exec Executor
	opts Options
}

func NewHandler(exec Executor, opts ...Option) *Handler {
	var cfg Options
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	cfg.withDefaults()
	return &Handler{exec: exec, opts: cfg}
}

// Register installs the routes on a. It matches httpx.RouteRegistrar.
func (h *Handler) Register(a *httpx.App) {
	a.Group("").Routes(
		httpx.Route{Method: http.MethodPost, Path: PathCache, Handler: h.Command,
			Middleware: []httpx.MiddlewareFunc{httpx.Validate(requireJSON)}},
		httpx.Route{Method: http.MethodGet, Path: PathHealth, Handler: h.Health},
	)
}

func requireJSON(c httpx.Context) error {
	ct := c.Request().Header.Get(httpx.HeaderContentType)
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(ct)), httpx.MIMEApplicationJSON) {
		return badRequest(ErrNotJSON)
	}
	return nil
}

// Command handles POST /cache. Malformed bodies and rejected commands are
// answered with 400 and a "parse error: ..." message; tier failures are part
// of the 200 report.
func (h *Handler) Command(c httpx.Context) error {
	var req Request
	if err := c.Echo().JSONSerializer.Deserialize(c, &req); err != nil {
		return badRequest(errors.New("invalid JSON body"))
	}
	if strings.TrimSpace(req.Cmd) == "" {
		return badRequest(ErrMissingCommand)
	}

	ctx := c.Request().Context()
	rep, err := h.exec.Run(ctx, req.Cmd)
	if err != nil {
		if command.IsParseError(err) {
			return badRequest(err)
		}
		h.opts.Logger.ErrorContext(ctx, "command failed", "cmd", req.Cmd, "error", err, "request_id", requestID(c))
		return err
	}

	if rep.Failed() {
		h.opts.Logger.WarnContext(ctx, "command partially failed",
			"command", rep.Command.String(), "request_id", requestID(c))
	}
	if wantsJSON(c) {
		return c.JSON(httpx.StatusOK, rep)
	}
	return c.String(httpx.StatusOK, rep.String())
}

// Health handles GET /healthz.
func (h *Handler) Health(c httpx.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.opts.HealthTimeout)
	defer cancel()

	if err := h.exec.Ping(ctx); err != nil {
		h.opts.Logger.WarnContext(ctx, "health check failed", "error", err)
		return c.String(httpx.StatusServiceUnavailable, "unavailable: "+err.Error())
	}
	return c.String(httpx.StatusOK, "ok")
}

func badRequest(err error) error {
	return httpx.HTTPError(httpx.StatusBadRequest, "parse error: "+err.Error())
}

func wantsJSON(c httpx.Context) bool {
	return strings.Contains(c.Request().Header.Get(httpx.HeaderAccept), httpx.MIMEApplicationJSON)
}

func requestID(c httpx.Context) string {
	return c.Response().Header().Get(httpx.HeaderXRequestID)
}

var _ Executor = (*cacheaside.Orchestrator)(nil)
