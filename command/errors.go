package command

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownVerb        = errors.New("command: unknown verb")
	ErrMissingName        = errors.New("command: missing name")
	ErrMissingType        = errors.New("command: missing type")
	ErrUnknownType        = errors.New("command: unknown type")
	ErrMissingValue       = errors.New("command: missing value")
	ErrInvalidInteger     = errors.New("command: invalid integer")
	ErrUnterminatedString = errors.New("command: unterminated string")
	ErrMalformedLiteral   = errors.New("command: malformed literal")
)

// ParseError reports why a command was rejected. Err is one of the package
// sentinels and can be matched with errors.Is.
type ParseError struct {
	Err   error
	Token string

	// unclosed marks a literal whose closing quote never arrived.
	unclosed bool
}

func (e *ParseError) Error() string {
	if e.Token == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v: %q", e.Err, e.Token)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsParseError reports whether err is a rejected-command error.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
