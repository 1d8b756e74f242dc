package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, src string) ([]Token, error) {
	t.Helper()
	var toks []Token
	for tok, err := range Tokens(src) {
		if err != nil {
			return toks, err
		}
		toks = append(toks, tok)
	}
	return toks, nil
}

func TestTokens(t *testing.T) {
	tests := []struct {
		src  string
		want []Token
	}{
		{"", nil},
		{" \t\n", nil},
		{"GET x", []Token{{Text: "GET"}, {Text: "x"}}},
		{"a\tb\r\nc", []Token{{Text: "a"}, {Text: "b"}, {Text: "c"}}},
		{`"hello world"`, []Token{{Text: "hello world", Quoted: true}}},
		{`x "  padded   literal  " y`, []Token{{Text: "x"}, {Text: "padded literal", Quoted: true}, {Text: "y"}}},
		{`""`, []Token{{Text: "", Quoted: true}}},
		{`ab"c d"e`, []Token{{Text: "abc de", Quoted: true}}},
	}
	for _, tt := range tests {
		got, err := collect(t, tt.src)
		require.NoError(t, err, tt.src)
		assert.Equal(t, tt.want, got, tt.src)
	}
}

func TestTokensUnclosedQuote(t *testing.T) {
	got, err := collect(t, `SET string x "never closed`)
	assert.ErrorIs(t, err, ErrMalformedLiteral)
	assert.Len(t, got, 3)
}

func TestTokensRejectInvalidUTF8(t *testing.T) {
	for _, src := range []string{"GET \xff", "SET string x \"a \xfe b\""} {
		_, err := collect(t, src)
		assert.ErrorIs(t, err, ErrMalformedLiteral, "%q", src)
	}

	got, err := collect(t, `SET string x "héllo wörld"`)
	require.NoError(t, err)
	assert.Equal(t, "héllo wörld", got[3].Text)
}

func TestTokensRestartable(t *testing.T) {
	seq := Tokens(`SET string g "a b"`)
	first := 0
	for range seq {
		first++
	}
	second := 0
	for range seq {
		second++
	}
	assert.Equal(t, 4, first)
	assert.Equal(t, first, second)
}

func TestTokensStopEarly(t *testing.T) {
	var seen []string
	for tok := range Tokens(`a b "unterminated`) {
		seen = append(seen, tok.Text)
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, seen)
}
