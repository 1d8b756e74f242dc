package command

import (
	"errors"
	"iter"
	"strconv"
)

// Parse turns command text into a Command.
//
// Tokens left over after a complete command are ignored and never scanned, so
// `GET x trailing "junk` parses as GET x.
func Parse(src string) (Command, error) {
	next, stop := iter.Pull2(Tokens(src))
	defer stop()
	p := parser{next: next}

	tok, ok, err := p.token()
	if err != nil {
		return Command{}, err
	}
	if !ok {
		return Command{}, &ParseError{Err: ErrUnknownVerb}
	}
	verb, known := parseVerb(tok.Text)
	if !known || tok.Quoted {
		return Command{}, &ParseError{Err: ErrUnknownVerb, Token: tok.Text}
	}

	if verb != VerbSet {
		name, err := p.name()
		if err != nil {
			return Command{}, err
		}
		return Command{Verb: verb, Name: name}, nil
	}

	kind, err := p.kind()
	if err != nil {
		return Command{}, err
	}
	name, err := p.name()
	if err != nil {
		return Command{}, err
	}
	value, err := p.value(kind, name)
	if err != nil {
		return Command{}, err
	}
	return Command{Verb: VerbSet, Name: name, Value: value}, nil
}

type parser struct {
	next func() (Token, error, bool)
}

func (p *parser) token() (Token, bool, error) {
	tok, err, ok := p.next()
	if !ok {
		return Token{}, false, nil
	}
	if err != nil {
		return Token{}, false, err
	}
	return tok, true, nil
}

func (p *parser) kind() (Kind, error) {
	tok, ok, err := p.token()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &ParseError{Err: ErrMissingType}
	}
	switch k := Kind(tok.Text); k {
	case KindInt, KindString:
		if !tok.Quoted {
			return k, nil
		}
	}
	return "", &ParseError{Err: ErrUnknownType, Token: tok.Text}
}

func (p *parser) name() (string, error) {
	tok, ok, err := p.token()
	if err != nil {
		return "", err
	}
	if !ok || tok.Text == "" {
		return "", &ParseError{Err: ErrMissingName}
	}
	return tok.Text, nil
}

func (p *parser) value(kind Kind, name string) (Value, error) {
	tok, ok, err := p.token()
	if err != nil {
		var pe *ParseError
		if kind == KindString && errors.As(err, &pe) && pe.unclosed {
			return nil, &ParseError{Err: ErrUnterminatedString, Token: pe.Token}
		}
		return nil, err
	}
	if !ok {
		return nil, &ParseError{Err: ErrMissingValue, Token: name}
	}

	switch kind {
	case KindInt:
		if tok.Quoted {
			return nil, &ParseError{Err: ErrInvalidInteger, Token: tok.Text}
		}
		n, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			return nil, &ParseError{Err: ErrInvalidInteger, Token: tok.Text}
		}
		return Int(n), nil
	default:
		if !tok.Quoted {
			return nil, &ParseError{Err: ErrMalformedLiteral, Token: tok.Text}
		}
		return Str(tok.Text), nil
	}
}
