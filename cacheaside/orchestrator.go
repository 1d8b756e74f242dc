// Package cacheaside runs commands against the cache and the document store.
//
// Every command touches both tiers, cache first, and reports both outcomes.
// A miss in the cache is never turned into a store read-through, and a
// failure in one tier never stops the other: divergence between the tiers is
// surfaced to the caller instead of being repaired.
package cacheaside

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/adeilh/tierkv/cache"
	"github.com/adeilh/tierkv/command"
	"github.com/adeilh/tierkv/store"
)

// Orchestrator executes commands against a cache and a document store. The
// handles are owned by the caller and shared across requests.
type Orchestrator struct {
	cache  cache.Store
	docs   store.Documents
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

func New(c cache.Store, docs store.Documents, opts ...Option) (*Orchestrator, error) {
	if c == nil {
		return nil, ErrNilCache
	}
	if docs == nil {
		return nil, ErrNilStore
	}
	cfg := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Orchestrator{
		cache:  c,
		docs:   docs,
		ttl:    cfg.TTL,
		logger: cfg.Logger,
		now:    cfg.Clock,
	}, nil
}

// TTL returns the expiration applied to cache writes.
func (o *Orchestrator) TTL() time.Duration { return o.ttl }

// Run parses text and executes the resulting command. Parse errors are
// returned before either tier is contacted.
func (o *Orchestrator) Run(ctx context.Context, text string) (Report, error) {
	cmd, err := command.Parse(text)
	if err != nil {
		return Report{}, err
	}
	return o.Execute(ctx, cmd)
}

// Execute runs cmd against the cache and then the store. Once started, both
// tier operations run to completion even if ctx is canceled; deadlines come
// from the tier clients themselves. Tier failures are recorded in the report,
// not returned.
func (o *Orchestrator) Execute(ctx context.Context, cmd command.Command) (Report, error) {
	if err := cmd.Validate(); err != nil {
		return Report{}, err
	}
	ctx = context.WithoutCancel(ctx)

	req := cache.Translate(cmd, o.ttl)
	rep := Report{Command: cmd}
	rep.Cache = o.execCache(ctx, req)
	rep.Store = o.execStore(ctx, cmd)

	o.logger.LogAttrs(ctx, slog.LevelDebug, "command executed",
		slog.String("command", cmd.String()),
		slog.Duration("cache_elapsed", rep.Cache.Elapsed),
		slog.Duration("store_elapsed", rep.Store.Elapsed),
	)
	return rep, nil
}

func (o *Orchestrator) execCache(ctx context.Context, req cache.Request) Outcome {
	out := Outcome{Tier: TierCache, Op: req.String()}
	start := o.now()

	var err error
	switch req.Verb {
	case command.VerbSet:
		err = o.cache.Set(ctx, req.Key, req.Value, req.TTL)
		if err == nil {
			out.Result = "OK"
		}
	case command.VerbGet:
		var payload []byte
		payload, err = o.cache.Get(ctx, req.Key)
		switch {
		case errors.Is(err, cache.ErrNotFound):
			err = nil
			out.Result = "(nil)"
		case err == nil:
			out.Found, out.Value = true, string(payload)
			out.Result = quote(out.Value)
		}
	case command.VerbDel:
		err = o.cache.Delete(ctx, req.Key)
		switch {
		case errors.Is(err, cache.ErrNotFound):
			err = nil
			out.Result = "(integer) 0"
		case err == nil:
			out.Found = true
			out.Result = "(integer) 1"
		}
	}

	out.Elapsed = o.since(start)
	if err != nil {
		out.Err = &CacheError{Op: req.Verb.String(), Err: err}
		o.logger.Warn("cache tier failed", "op", out.Op, "error", err, "elapsed", out.Elapsed)
	}
	return out
}

func (o *Orchestrator) execStore(ctx context.Context, cmd command.Command) Outcome {
	var (
		out   = Outcome{Tier: TierStore}
		doc   store.Document
		err   error
		start = o.now()
	)
	switch cmd.Verb {
	case command.VerbSet:
		out.Op = "upsert " + cmd.Name
		var res store.UpsertResult
		doc, err = store.DocumentFromCommand(cmd)
		if err == nil {
			res, err = o.docs.Upsert(ctx, doc)
		}
		if err == nil {
			out.Found, out.Value = true, res.Document.Value
			if res.Inserted {
				out.Result = "inserted " + quote(out.Value)
			} else {
				out.Result = "updated " + quote(out.Value)
			}
		}
	case command.VerbGet:
		out.Op = "find " + cmd.Name
		doc, err = o.docs.Find(ctx, cmd.Name)
		out.Result, err = describe("found", doc, err, &out)
	case command.VerbDel:
		out.Op = "delete " + cmd.Name
		doc, err = o.docs.FindAndDelete(ctx, cmd.Name)
		out.Result, err = describe("deleted", doc, err, &out)
	}

	out.Elapsed = o.since(start)
	if err != nil {
		out.Err = &StoreError{Op: out.Op, Err: err}
		o.logger.Warn("store tier failed", "op", out.Op, "error", err, "elapsed", out.Elapsed)
	}
	return out
}

// describe renders a find-style store result; store.ErrNotFound is a normal
// outcome, not a failure.
func describe(verb string, doc store.Document, err error, out *Outcome) (string, error) {
	if errors.Is(err, store.ErrNotFound) {
		return "not found", nil
	}
	if err != nil {
		return "", err
	}
	out.Found, out.Value = true, doc.Value
	return verb + " " + quote(doc.Value), nil
}

// Ping checks every tier that supports it.
func (o *Orchestrator) Ping(ctx context.Context) error {
	var errs []error
	if p, ok := o.cache.(cache.Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			errs = append(errs, &CacheError{Op: "PING", Err: err})
		}
	}
	if p, ok := o.docs.(store.Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			errs = append(errs, &StoreError{Op: "ping", Err: err})
		}
	}
	return errors.Join(errs...)
}

func (o *Orchestrator) since(start time.Time) time.Duration {
	d := o.now().Sub(start)
	if d < 0 {
		return 0
	}
	return d
}

func quote(s string) string { return fmt.Sprintf("%q", s) }
