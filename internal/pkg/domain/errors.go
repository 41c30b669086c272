package domain

import "errors"

var (
	// ErrMalformedInput is returned when a URL can not be parsed into a domain
	ErrMalformedInput = errors.New("malformed input")
	// ErrUpstreamUnavailable wraps any failure to get an answer from the knowledge base
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrMalformedPattern wraps compilation failures of upstream patterns and constraints
	ErrMalformedPattern = errors.New("malformed pattern")
	// ErrInvalidIdentifier is returned when a knowledge base id is not well formed and no request was made
	ErrInvalidIdentifier = errors.New("invalid identifier")
)
