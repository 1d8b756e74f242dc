package cache

import (
	"strconv"
	"strings"
	"time"

	"github.com/adeilh/tierkv/command"
)

// Request is a command translated for the cache tier.
type Request struct {
	Verb  command.Verb
	Key   string
	Value []byte
	TTL   time.Duration
}

// Translate maps cmd onto a cache request. SET requests carry ttl; a ttl of
// zero or less writes without expiration.
func Translate(cmd command.Command, ttl time.Duration) Request {
	req := Request{Verb: cmd.Verb, Key: cmd.Name}
	if cmd.Verb == command.VerbSet && cmd.Value != nil {
		req.Value = []byte(cmd.Value.Text())
		if ttl > 0 {
			req.TTL = ttl
		}
	}
	return req
}

// Args renders the request as the argument vector sent to Redis, e.g.
// SET counter 42 EX 15.
func (r Request) Args() []string {
	args := []string{r.Verb.String(), r.Key}
	if r.Verb != command.VerbSet {
		return args
	}
	args = append(args, string(r.Value))
	switch {
	case r.TTL <= 0:
	case r.TTL%time.Second == 0:
		args = append(args, "EX", strconv.FormatInt(int64(r.TTL/time.Second), 10))
	default:
		ms := r.TTL.Milliseconds()
		if ms == 0 {
			ms = 1
		}
		args = append(args, "PX", strconv.FormatInt(ms, 10))
	}
	return args
}

// String renders the request as a single line. Arguments that are empty or
// contain whitespace or quotes are quoted so the value stays distinguishable
// from the key and the expiry clause.
func (r Request) String() string {
	args := r.Args()
	for i, a := range args {
		if a == "" || strings.ContainsAny(a, " \t\n\r\v\f\"") {
			args[i] = strconv.Quote(a)
		}
	}
	return strings.Join(args, " ")
}
