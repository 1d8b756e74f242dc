package command

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want Command
	}{
		{"set string", `SET string name "hello"`, Command{Verb: VerbSet, Name: "name", Value: Str("hello")}},
		{"set string with spaces", `SET string greeting "hello there world"`, Command{Verb: VerbSet, Name: "greeting", Value: Str("hello there world")}},
		{"set string collapses runs", "SET string greeting \"hello \t  there\"", Command{Verb: VerbSet, Name: "greeting", Value: Str("hello there")}},
		{"set empty string", `SET string blank ""`, Command{Verb: VerbSet, Name: "blank", Value: Str("")}},
		{"set int", "SET int counter 42", Command{Verb: VerbSet, Name: "counter", Value: Int(42)}},
		{"set negative int", "SET int delta -17", Command{Verb: VerbSet, Name: "delta", Value: Int(-17)}},
		{"set max int", "SET int big 9223372036854775807", Command{Verb: VerbSet, Name: "big", Value: Int(9223372036854775807)}},
		{"get", "GET x", Command{Verb: VerbGet, Name: "x"}},
		{"del", "DEL x", Command{Verb: VerbDel, Name: "x"}},
		{"surrounding whitespace", "  \n GET   x \t", Command{Verb: VerbGet, Name: "x"}},
		{"trailing tokens ignored", "GET x y z", Command{Verb: VerbGet, Name: "x"}},
		{"trailing unterminated quote never scanned", `DEL x "oops`, Command{Verb: VerbDel, Name: "x"}},
		{"set trailing tokens ignored", `SET int n 1 2 3`, Command{Verb: VerbSet, Name: "n", Value: Int(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, got.Validate())
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"empty", "", ErrUnknownVerb},
		{"blank", "   ", ErrUnknownVerb},
		{"unknown verb", "FOO bar", ErrUnknownVerb},
		{"lowercase verb", "get x", ErrUnknownVerb},
		{"quoted verb", `"GET" x`, ErrUnknownVerb},
		{"get missing name", "GET", ErrMissingName},
		{"del missing name", "DEL   ", ErrMissingName},
		{"get empty quoted name", `GET ""`, ErrMissingName},
		{"set missing type", "SET", ErrMissingType},
		{"set unknown type", "SET float x 1.5", ErrUnknownType},
		{"set missing name", "SET int", ErrMissingName},
		{"set int missing value", "SET int counter", ErrMissingValue},
		{"set string missing value", "SET string greeting", ErrMissingValue},
		{"non numeric int", "SET int counter abc", ErrInvalidInteger},
		{"float int", "SET int counter 4.2", ErrInvalidInteger},
		{"overflow int", "SET int counter 9223372036854775808", ErrInvalidInteger},
		{"quoted int", `SET int counter "42"`, ErrInvalidInteger},
		{"unterminated string", `SET string greeting "hello there`, ErrUnterminatedString},
		{"bare string", "SET string greeting hello", ErrMalformedLiteral},
		{"unterminated name", `GET "x y`, ErrMalformedLiteral},
		{"unterminated int", `SET int counter "4`, ErrMalformedLiteral},
		{"invalid utf8 string value", "SET string x \"\xff\"", ErrMalformedLiteral},
		{"invalid utf8 name", "DEL \xc3\x28", ErrMalformedLiteral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, IsParseError(err))
		})
	}
}

func TestParseErrorMessage(t *testing.T) {
	_, err := Parse("FOO bar")
	require.Error(t, err)
	assert.Equal(t, `command: unknown verb: "FOO"`, err.Error())

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "FOO", pe.Token)
}

func TestCommandStringRoundTrip(t *testing.T) {
	for _, src := range []string{
		`SET string greeting "hello there world"`,
		"SET int counter -42",
		"GET counter",
		"DEL counter",
		`GET "a b"`,
		`SET string "my key" "v"`,
	} {
		cmd, err := Parse(src)
		require.NoError(t, err)
		assert.Equal(t, src, cmd.String())

		again, err := Parse(cmd.String())
		require.NoError(t, err)
		assert.Equal(t, cmd, again)
	}
}

func TestCommandStringQuotesNames(t *testing.T) {
	cmd, err := NewSet("my key", Int(7))
	require.NoError(t, err)
	assert.Equal(t, `SET int "my key" 7`, cmd.String())

	again, err := Parse(cmd.String())
	require.NoError(t, err)
	assert.Equal(t, cmd, again)

	assert.Equal(t, `GET ""`, Command{Verb: VerbGet}.String())
}

func TestUnterminatedStringKeepsKind(t *testing.T) {
	_, err := Parse("SET string x \"\xff")
	assert.ErrorIs(t, err, ErrUnterminatedString)
}

func TestConstructorsEnforceInvariant(t *testing.T) {
	_, err := NewSet("x", nil)
	assert.ErrorIs(t, err, ErrMissingValue)

	_, err = NewGet("")
	assert.ErrorIs(t, err, ErrMissingName)

	cmd, err := NewSet("x", Int(3))
	require.NoError(t, err)
	assert.Equal(t, VerbSet, cmd.Verb)

	bad := Command{Verb: VerbDel, Name: "x", Value: Str("y")}
	assert.Error(t, bad.Validate())

	assert.ErrorIs(t, Command{Name: "x"}.Validate(), ErrUnknownVerb)
}

func TestValueFromText(t *testing.T) {
	v, err := ValueFromText(KindInt, "42")
	require.NoError(t, err)
	assert.Equal(t, Int(42), v)

	v, err = ValueFromText(KindString, "hello world")
	require.NoError(t, err)
	assert.Equal(t, Str("hello world"), v)

	_, err = ValueFromText(KindInt, "x")
	assert.ErrorIs(t, err, ErrInvalidInteger)

	_, err = ValueFromText("bool", "true")
	assert.ErrorIs(t, err, ErrUnknownType)
}
