package cacheaside

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/adeilh/tierkv/command"
)

// Tier names one of the two backing systems.
type Tier string

const (
	TierCache Tier = "cache"
	TierStore Tier = "store"
)

// Outcome is the result of one tier operation.
type Outcome struct {
	Tier Tier
	// Op is the operation as sent to the tier, e.g. "SET counter 42 EX 15".
	Op string
	// Result is the human-readable reply, empty when Err is set.
	Result string
	// Found is set when the tier held (or wrote) a value; Value is that value.
	Found   bool
	Value   string
	Err     error
	Elapsed time.Duration
}

// Report combines the outcomes of both tiers for one command.
type Report struct {
	Command command.Command
	Cache   Outcome
	Store   Outcome
}

// Match compares the values both tiers returned for a GET. ok is false when
// the comparison does not apply: another verb, or a tier failed.
func (r Report) Match() (match, ok bool) {
	if r.Command.Verb != command.VerbGet || r.Cache.Err != nil || r.Store.Err != nil {
		return false, false
	}
	return r.Cache.Found == r.Store.Found && r.Cache.Value == r.Store.Value, true
}

// Failed reports whether any tier failed.
func (r Report) Failed() bool {
	return r.Cache.Err != nil || r.Store.Err != nil
}

// WriteText renders the report as lines of "label: detail", cache before
// store:
//
//	command: SET int counter 42
//	cache: SET counter 42 EX 15 -> OK (elapsed 312µs)
//	store: upsert counter -> inserted "42" (elapsed 2.4ms)
func (r Report) WriteText(w io.Writer) error {
	_, err := io.WriteString(w, r.String())
	return err
}

func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "command: %s\n", r.Command)
	writeOutcome(&b, r.Cache)
	writeOutcome(&b, r.Store)
	if match, ok := r.Match(); ok {
		fmt.Fprintf(&b, "match: %t\n", match)
	}
	return b.String()
}

func writeOutcome(b *strings.Builder, o Outcome) {
	result := o.Result
	if o.Err != nil {
		result = "error: " + o.Err.Error()
	}
	fmt.Fprintf(b, "%s: %s -> %s (elapsed %s)\n", o.Tier, o.Op, result, o.Elapsed)
}

type outcomeJSON struct {
	Op        string  `json:"op"`
	Result    string  `json:"result,omitempty"`
	Found     bool    `json:"found"`
	Value     *string `json:"value,omitempty"`
	Error     string  `json:"error,omitempty"`
	ElapsedUS int64   `json:"elapsed_us"`
}

type reportJSON struct {
	Command string      `json:"command"`
	Cache   outcomeJSON `json:"cache"`
	Store   outcomeJSON `json:"store"`
	Match   *bool       `json:"match,omitempty"`
}

func (r Report) MarshalJSON() ([]byte, error) {
	out := reportJSON{
		Command: r.Command.String(),
		Cache:   toJSON(r.Cache),
		Store:   toJSON(r.Store),
	}
	if match, ok := r.Match(); ok {
		out.Match = &match
	}
	return json.Marshal(out)
}

func toJSON(o Outcome) outcomeJSON {
	j := outcomeJSON{
		Op:        o.Op,
		Result:    o.Result,
		Found:     o.Found,
		ElapsedUS: o.Elapsed.Microseconds(),
	}
	if o.Found {
		v := o.Value
		j.Value = &v
	}
	if o.Err != nil {
		j.Error = o.Err.Error()
	}
	return j
}
