package cacheaside

import (
	"log/slog"
	"time"

	"github.com/adeilh/tierkv/cache"
)

// Options configures an Orchestrator.
type Options struct {
	// TTL is the expiration attached to cache writes.
	TTL    time.Duration
	Logger *slog.Logger
	// Clock is the time source used to measure tier latency.
	Clock func() time.Time
}

type Option func(*Options)

// WithTTL sets the cache expiration for SET commands. Zero or negative values
// store values without expiration.
func WithTTL(d time.Duration) Option {
	return func(o *Options) {
		o.TTL = d
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *Options) {
		if now != nil {
			o.Clock = now
		}
	}
}

func defaultOptions() Options {
	return Options{
		TTL:    cache.DefaultTTL,
		Logger: slog.Default(),
		Clock:  time.Now,
	}
}
