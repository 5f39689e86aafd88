package fetcher

import (
	"errors"
	"fmt"
)

// Sentinel causes carried inside UpstreamError.
var (
	ErrUpstreamStatus = errors.New("unexpected upstream status")
	ErrMalformed      = errors.New("malformed upstream payload")
	ErrNotConfigured  = errors.New("provider not configured")
)

// UpstreamError describes one failed unit of an aggregation batch.
// Status is the HTTP status code, or 0 when no response was received.
type UpstreamError struct {
	Provider string
	Unit     string
	Status   int
	Err      error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Provider, e.Unit, e.Status, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Unit, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// malformed wraps a decoding problem so that errors.Is(err, ErrMalformed) holds.
func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}
