package provider

import (
	"errors"
	"fmt"
	"strings"
)

// Typed failures a provider attempt can return. The chain never retries a
// provider; moving on to the next one is the retry strategy.

// ErrNoKey marks a key-gated provider that has no API key configured.
var ErrNoKey = errors.New("api key not configured")

// ErrEmptyResult marks a provider that responded but had no usable records.
var ErrEmptyResult = errors.New("empty result")

// HTTPError is a non-success upstream status.
type HTTPError struct {
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("upstream status %d", e.Status)
}

// ParseError wraps a payload the provider could not decode.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse payload: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Attempt records one provider's failure for diagnostics.
type Attempt struct {
	Provider string
	Err      error
}

// ChainExhausted aggregates every provider's failure when a whole chain
// fails. Individual upstream errors surface only here.
type ChainExhausted struct {
	Resource string
	Symbol   string
	Attempts []Attempt
}

func (e *ChainExhausted) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Provider, a.Err))
	}
	return fmt.Sprintf("all %s providers failed for %s [%s]", e.Resource, e.Symbol, strings.Join(parts, "; "))
}

// IsChainExhausted reports whether err is a total chain failure.
func IsChainExhausted(err error) bool {
	var ce *ChainExhausted
	return errors.As(err, &ce)
}
