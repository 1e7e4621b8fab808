package provider

import (
	"errors"
	"fmt"
)

// Fetch failure kinds. Match them with errors.Is.
var (
	ErrNetwork        = errors.New("network error")
	ErrParse          = errors.New("parse error")
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrEmptySymbol is returned before any request is made.
	ErrEmptySymbol = errors.New("empty symbol")
)

// FetchError describes a failed quote request.
type FetchError struct {
	// Kind is one of ErrNetwork, ErrParse or ErrSymbolNotFound.
	Kind       error
	Symbol     string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	msg := e.Kind.Error()
	if e.Symbol != "" {
		msg = fmt.Sprintf("%s: %s", e.Symbol, msg)
	}
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == e.Kind }

// NetworkError wraps a transport or status failure.
func NetworkError(status int, err error) *FetchError {
	return &FetchError{Kind: ErrNetwork, StatusCode: status, Err: err}
}

// ParseError wraps a decoding failure.
func ParseError(err error) *FetchError {
	return &FetchError{Kind: ErrParse, Err: err}
}
