package command

import (
	"iter"
	"strings"
	"unicode/utf8"
)

// Token is one word of command text. Quoted is set when any part of the token
// came from a double-quoted literal.
type Token struct {
	Text   string
	Quoted bool
}

// Tokens splits src on ASCII whitespace. A double quote opens a literal that
// runs to the next double quote; inside it whitespace runs collapse to a single
// space, the literal's edges are trimmed and the quotes are dropped.
//
// The sequence is lazy and every range over it rescans src from the start.
// An unclosed quote or a token that is not valid UTF-8 yields
// ErrMalformedLiteral and ends the sequence.
func Tokens(src string) iter.Seq2[Token, error] {
	return func(yield func(Token, error) bool) {
		s := scanner{src: src}
		for {
			tok, ok, err := s.next()
			if err != nil {
				yield(Token{}, err)
				return
			}
			if !ok || !yield(tok, nil) {
				return
			}
		}
	}
}

type scanner struct {
	src string
	pos int
}

func (s *scanner) next() (Token, bool, error) {
	for s.pos < len(s.src) && isSpace(s.src[s.pos]) {
		s.pos++
	}
	if s.pos >= len(s.src) {
		return Token{}, false, nil
	}

	var (
		b            strings.Builder
		quoted       bool
		inLiteral    bool
		literalStart int
		literalLen   int
		pendingSpace bool
	)
	for ; s.pos < len(s.src); s.pos++ {
		c := s.src[s.pos]
		switch {
		case c == '"' && inLiteral:
			inLiteral, pendingSpace = false, false
		case c == '"':
			inLiteral, quoted = true, true
			literalStart, literalLen = s.pos, b.Len()
		case isSpace(c) && !inLiteral:
			return finish(b.String(), quoted)
		case isSpace(c):
			if b.Len() > literalLen {
				pendingSpace = true
			}
		default:
			if pendingSpace {
				b.WriteByte(' ')
				pendingSpace = false
			}
			b.WriteByte(c)
		}
	}
	if inLiteral {
		return Token{}, false, &ParseError{Err: ErrMalformedLiteral, Token: s.src[literalStart:], unclosed: true}
	}
	return finish(b.String(), quoted)
}

func finish(text string, quoted bool) (Token, bool, error) {
	if !utf8.ValidString(text) {
		return Token{}, false, &ParseError{Err: ErrMalformedLiteral, Token: text}
	}
	return Token{Text: text, Quoted: quoted}, true, nil
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
