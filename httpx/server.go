package httpx

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Validator runs before route handlers; return an error to stop the pipeline.
type Validator func(Context) error

type Server struct {
	app      *App
	address  string
	srv      *http.Server
	shutdown time.Duration
}

type RouteRegistrar func(*App)

type StartOption func(*Server)

func WithShutdownTimeout(d time.Duration) StartOption {
	return func(s *Server) {
		if d > 0 {
			s.shutdown = d
		}
	}
}

func NewServer(opts ...ServerOption) *Server {
	cfg := defaultServerOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	app := New()
	e := app.e
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = echo.HTTPErrorHandler(cfg.ErrorHandler)
	if cfg.Logger != nil {
		e.Logger = cfg.Logger
	}
	e.Logger.SetLevel(cfg.LogLevel)
	e.Server.ReadTimeout = cfg.ReadTimeout
	e.Server.WriteTimeout = cfg.WriteTimeout
	for _, mw := range cfg.Middlewares {
		e.Use(mw)
	}

	return &Server{
		app:      app,
		address:  cfg.Address,
		shutdown: 5 * time.Second,
	}
}

func (s *Server) RegisterRoutes(reg RouteRegistrar) {
	if reg != nil {
		reg(s.app)
	}
}

func (s *Server) Handler() http.Handler {
	return s.app.e
}

// Address reports the address Start listens on.
func (s *Server) Address() string { return s.address }

// Start serves until ctx is canceled, then shuts down gracefully within the
// shutdown timeout. It returns ctx.Err() after a clean shutdown.
func (s *Server) Start(ctx context.Context, opts ...StartOption) error {
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	s.srv = &http.Server{
		Addr:         s.address,
		Handler:      s.app.e,
		ReadTimeout:  s.app.e.Server.ReadTimeout,
		WriteTimeout: s.app.e.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdown)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.app.e.Logger.Errorf("shutdown: %v", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// defaultHTTPErrorHandler writes the error message as plain text.
func defaultHTTPErrorHandler(err error, c echo.Context) {
	code := StatusInternalError
	msg := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		switch m := he.Message.(type) {
		case string:
			msg = m
		case error:
			msg = m.Error()
		}
	} else {
		c.Logger().Error(err)
	}
	if c.Response().Committed {
		return
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.String(code, msg)
}

// Validate runs v in order before the wrapped handler.
func Validate(v ...Validator) MiddlewareFunc {
	copied := append([]Validator(nil), v...)
	return func(next HandlerFunc) HandlerFunc {
		return func(c Context) error {
			for _, validator := range copied {
				if validator == nil {
					continue
				}
				if err := validator(c); err != nil {
					return err
				}
			}
			return next(c)
		}
	}
}
