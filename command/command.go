// Package command parses the tierkv command language into typed commands.
//
// The language has three verbs operating on one named scalar value:
//
//	SET int counter 42
//	SET string greeting "hello there world"
//	GET counter
//	DEL counter
package command

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Verb identifies the operation a Command performs.
type Verb uint8

const (
	VerbSet Verb = iota + 1
	VerbGet
	VerbDel
)

func (v Verb) String() string {
	switch v {
	case VerbSet:
		return "SET"
	case VerbGet:
		return "GET"
	case VerbDel:
		return "DEL"
	default:
		return fmt.Sprintf("Verb(%d)", uint8(v))
	}
}

func parseVerb(s string) (Verb, bool) {
	switch s {
	case "SET":
		return VerbSet, true
	case "GET":
		return VerbGet, true
	case "DEL":
		return VerbDel, true
	}
	return 0, false
}

// Kind names the scalar type carried by a Value.
type Kind string

const (
	KindInt    Kind = "int"
	KindString Kind = "string"
)

// Value is the payload of a SET command. It is either Int or Str.
type Value interface {
	Kind() Kind
	// Text returns the canonical textual form stored by both tiers.
	Text() string
	sealed()
}

// Int is a signed 64-bit integer value.
type Int int64

func (Int) Kind() Kind       { return KindInt }
func (i Int) Text() string   { return strconv.FormatInt(int64(i), 10) }
func (i Int) String() string { return i.Text() }
func (Int) sealed()          {}

// Str is a string value.
type Str string

func (Str) Kind() Kind       { return KindString }
func (s Str) Text() string   { return string(s) }
func (s Str) String() string { return `"` + string(s) + `"` }
func (Str) sealed()          {}

// ValueFromText rebuilds a Value from its stored text form.
func ValueFromText(kind Kind, text string) (Value, error) {
	switch kind {
	case KindInt:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, &ParseError{Err: ErrInvalidInteger, Token: text}
		}
		return Int(n), nil
	case KindString:
		return Str(text), nil
	default:
		return nil, &ParseError{Err: ErrUnknownType, Token: string(kind)}
	}
}

// Command is the parsed intent of one request. Value is non-nil exactly when
// Verb is VerbSet.
type Command struct {
	Verb  Verb
	Name  string
	Value Value
}

// NewSet builds a SET command.
func NewSet(name string, v Value) (Command, error) {
	c := Command{Verb: VerbSet, Name: name, Value: v}
	return c, c.Validate()
}

// NewGet builds a GET command.
func NewGet(name string) (Command, error) {
	c := Command{Verb: VerbGet, Name: name}
	return c, c.Validate()
}

// NewDel builds a DEL command.
func NewDel(name string) (Command, error) {
	c := Command{Verb: VerbDel, Name: name}
	return c, c.Validate()
}

// Validate reports whether c satisfies the Command invariants.
func (c Command) Validate() error {
	if _, ok := parseVerb(c.Verb.String()); !ok {
		return &ParseError{Err: ErrUnknownVerb, Token: c.Verb.String()}
	}
	if c.Name == "" {
		return &ParseError{Err: ErrMissingName}
	}
	switch {
	case c.Verb == VerbSet && c.Value == nil:
		return &ParseError{Err: ErrMissingValue, Token: c.Name}
	case c.Verb != VerbSet && c.Value != nil:
		return fmt.Errorf("command: %s takes no value", c.Verb)
	}
	return nil
}

// String renders c back into the command language. Names that are empty or
// contain whitespace are quoted so the result parses to the same command.
func (c Command) String() string {
	name := c.Name
	if name == "" || strings.IndexFunc(name, isSpaceRune) >= 0 {
		name = `"` + name + `"`
	}
	if c.Verb != VerbSet || c.Value == nil {
		return c.Verb.String() + " " + name
	}
	return fmt.Sprintf("SET %s %s %s", c.Value.Kind(), name, c.Value)
}

func isSpaceRune(r rune) bool { return r < utf8.RuneSelf && isSpace(byte(r)) }
