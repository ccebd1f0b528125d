package fetcher

import (
	"errors"
	"fmt"
)

// TransportError is returned when a source could not be reached or read,
// including non-2xx HTTP responses
type TransportError struct {
	URI string
	Err error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ParseError is returned when the response body is not a valid feed document
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid feed document: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// errorKind labels an error for the fetch error metric
func errorKind(err error) string {
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return "parse"
	}
	return "transport"
}
