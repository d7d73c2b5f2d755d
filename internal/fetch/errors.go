package fetch

import (
	"fmt"
	"time"
)

// TransportError is a failure before any response was obtained.
type TransportError struct {
	Err     error
	Timeout bool
	After   time.Duration
}

func (e *TransportError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("request timed out after %s", e.After)
	}
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPStatusError is a response outside the 2xx range.
type HTTPStatusError struct {
	StatusCode int
	StatusText string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.StatusText)
}

// FetchError is returned once the retry budget is spent. Its message is the
// last attempt's error.
type FetchError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string { return e.Err.Error() }

func (e *FetchError) Unwrap() error { return e.Err }
