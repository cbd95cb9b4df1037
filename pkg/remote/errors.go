package remote

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors. The typed errors below match them with errors.Is.
var (
	ErrTransport          = errors.New("remote: transport error")
	ErrApplication        = errors.New("remote: query failed")
	ErrTimeout            = errors.New("remote: query timed out")
	ErrStatementDestroyed = errors.New("remote: prepared statement has been destroyed")
)

// TransportError reports a failure to obtain a usable response: a non-2xx
// status (StatusCode and Body set) or a network/decoding failure (Err set).
type TransportError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 && e.Err == nil {
		return fmt.Sprintf("query engine returned HTTP %d: %s", e.StatusCode, e.Body)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("query engine returned HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("query engine request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error        { return e.Err }
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// ApplicationError carries the engine's message from a success:false envelope.
type ApplicationError struct {
	Message string
}

func (e *ApplicationError) Error() string {
	return "query engine error: " + e.Message
}

func (e *ApplicationError) Is(target error) bool { return target == ErrApplication }

// TimeoutError is returned when the client-side timer fires before the
// response arrives.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("query timed out after %s", e.Timeout)
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }
