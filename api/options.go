package api

import (
	"log/slog"
	"time"
)

// DefaultHealthTimeout bounds how long /healthz waits for both tiers.
const DefaultHealthTimeout = 2 * time.Second

type Options struct {
	Logger        *slog.Logger
	HealthTimeout time.Duration
}

type Option func(*Options)

func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

func WithHealthTimeout(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.HealthTimeout = d
		}
	}
}

func (o *Options) withDefaults() {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.HealthTimeout <= 0 {
		o.HealthTimeout = DefaultHealthTimeout
	}
}
