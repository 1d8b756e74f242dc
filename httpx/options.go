package httpx

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// HTTPErrorHandler is a function that handles errors during request processing.
type HTTPErrorHandler func(error, Context)

type ServerOptions struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Middlewares  []MiddlewareFunc
	ErrorHandler HTTPErrorHandler
	// Logger replaces echo's internal logger; LogLevel applies to whichever
	// logger is installed.
	Logger       echo.Logger
	LogLevel     log.Lvl
}

type ServerOption func(*ServerOptions)

func defaultServerOptions() ServerOptions {
	return ServerOptions{
		Address:      ":8080",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		Middlewares:  []MiddlewareFunc{RecoverMiddleware(), RequestIDMiddleware(), LoggerMiddleware()},
		ErrorHandler: defaultHTTPErrorHandler,
		LogLevel:     log.INFO,
	}
}

func WithAddress(addr string) ServerOption {
	return func(o *ServerOptions) {
		if addr != "" {
			o.Address = addr
		}
	}
}

func WithTimeouts(read, write time.Duration) ServerOption {
	return func(o *ServerOptions) {
		if read > 0 {
			o.ReadTimeout = read
		}
		if write > 0 {
			o.WriteTimeout = write
		}
	}
}

func WithMiddlewares(mw ...MiddlewareFunc) ServerOption {
	return func(o *ServerOptions) {
		if len(mw) > 0 {
			o.Middlewares = append([]MiddlewareFunc{}, mw...)
		}
	}
}

// WithLogger installs a custom echo logger, typically a gommon *log.Logger.
func WithLogger(l echo.Logger) ServerOption {
	return func(o *ServerOptions) {
		if l != nil {
			o.Logger = l
		}
	}
}

func WithLogLevel(lvl log.Lvl) ServerOption {
	return func(o *ServerOptions) {
		o.LogLevel = lvl
	}
}

// ParseLogLevel maps debug, info, warn, error and off onto gommon levels.
// Unknown names fall back to info.
func ParseLogLevel(s string) log.Lvl {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}

type ClientOptions struct {
	BaseURL string
	Timeout time.Duration
	Headers map[string]string
}

type ClientOption func(*ClientOptions)

func defaultClientOptions() ClientOptions {
	return ClientOptions{Timeout: 10 * time.Second, Headers: map[string]string{HeaderContentType: MIMEApplicationJSON}}
}

func WithBaseURL(url string) ClientOption {
	return func(o *ClientOptions) {
		if url != "" {
			o.BaseURL = url
		}
	}
}

func WithClientTimeout(d time.Duration) ClientOption {
	return func(o *ClientOptions) {
		if d > 0 {
			o.Timeout = d
		}
	}
}
