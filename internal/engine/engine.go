// Package engine turns a JSON payload into a generic value tree through a
// token stream, so that structural limits (duplicate keys, nesting depth)
// are enforced before any geometry is built.
package engine

import (
	"errors"
	"io"

	json "github.com/goccy/go-json"
)

// Kind represents token kinds produced by a TokenSource.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

// Token is a single JSON token. Numbers are kept as their literal text so
// callers decide between integer and float interpretation.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
}

// TokenSource yields JSON tokens until io.EOF.
type TokenSource interface {
	NextToken() (Token, error)
}

// ErrMalformed reports a payload that tokenizes but is not valid JSON, such
// as missing or trailing separators.
var ErrMalformed = errors.New("malformed JSON")

// Parse decodes b into a value tree under opt and rejects malformed JSON.
// The token stream does not check separators, so validity is checked once
// the nesting limit has been enforced.
func Parse(b []byte, opt EnforceOptions) (any, error) {
	v, err := DecodeAny(WrapWithEnforcement(NewBytes(b), opt))
	if err != nil {
		return nil, err
	}
	if !json.Valid(b) {
		return nil, ErrMalformed
	}
	return v, nil
}

// DecodeAny builds a value tree from src. Objects become map[string]any,
// arrays []any (never nil), numbers json.Number, null a nil interface.
// Trailing tokens after the first value are rejected.
func DecodeAny(src TokenSource) (any, error) {
	tok, err := src.NextToken()
	if err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	v, err := decodeValue(src, tok)
	if err != nil {
		return nil, err
	}
	if _, err := src.NextToken(); err != io.EOF {
		if err != nil {
			return nil, err
		}
		return nil, ErrTrailingData
	}
	return v, nil
}

func decodeValue(src TokenSource, tok Token) (any, error) {
	switch tok.Kind {
	case KindBeginObject:
		return decodeObject(src)
	case KindBeginArray:
		return decodeArray(src)
	case KindString:
		return tok.String, nil
	case KindNumber:
		return json.Number(tok.Number), nil
	case KindBool:
		return tok.Bool, nil
	case KindNull:
		return nil, nil
	default:
		return nil, io.ErrUnexpectedEOF
	}
}

func decodeObject(src TokenSource) (map[string]any, error) {
	m := make(map[string]any)
	for {
		tok, err := next(src)
		if err != nil {
			return nil, err
		}
		if tok.Kind == KindEndObject {
			return m, nil
		}
		if tok.Kind != KindKey {
			return nil, io.ErrUnexpectedEOF
		}
		vt, err := next(src)
		if err != nil {
			return nil, err
		}
		v, err := decodeValue(src, vt)
		if err != nil {
			return nil, err
		}
		m[tok.String] = v
	}
}

func decodeArray(src TokenSource) ([]any, error) {
	arr := []any{}
	for {
		tok, err := next(src)
		if err != nil {
			return nil, err
		}
		if tok.Kind == KindEndArray {
			return arr, nil
		}
		v, err := decodeValue(src, tok)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}

// next maps a premature EOF inside a container to io.ErrUnexpectedEOF.
func next(src TokenSource) (Token, error) {
	tok, err := src.NextToken()
	if err == io.EOF {
		return Token{}, io.ErrUnexpectedEOF
	}
	return tok, err
}
