package fetcher

import (
	"fmt"
	"time"
)

// ConnError reports a transport failure or a non-2xx status from the device
// backend. Status is 0 when the request never completed.
type ConnError struct {
	Endpoint string
	Status   int
	Err      error
}

func (e *ConnError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return fmt.Sprintf("cannot reach backend: %v", e.Err)
}

func (e *ConnError) Unwrap() error { return e.Err }

// TimeoutError reports that a fetch exceeded the configured deadline.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("fetch timed out after %s", e.Timeout)
}

// ParseError reports a response body that does not carry a usable reading:
// malformed JSON, an application-level failure flag, or a non-numeric sensor
// field. Field names the offending field when one can be named.
type ParseError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid field %q: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid response: %s", e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }
