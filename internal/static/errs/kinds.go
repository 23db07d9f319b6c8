package errs

import (
	"errors"
	"fmt"
)

// Error kinds. Every error surfaced by the client wraps exactly one of these,
// so callers branch with errors.Is.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrConnection   = errors.New("connection error")
	ErrProtocol     = errors.New("protocol error")
	ErrData         = errors.New("data error")
)

var (
	ErrTerminated      = fmt.Errorf("%w: session terminated by server", ErrProtocol)
	ErrQuiet           = fmt.Errorf("%w: session is quiet, fetching is disabled", ErrProtocol)
	ErrResponsePending = fmt.Errorf("%w: previous response not consumed", ErrProtocol)
	ErrTokenConsumed   = fmt.Errorf("%w: response token already consumed", ErrProtocol)
	ErrNotConnected    = fmt.Errorf("%w: session not connected", ErrConnection)
	// ErrFraming marks a response that could not be delimited. The stream
	// position is unknown afterwards, so the connection must be dropped.
	ErrFraming = fmt.Errorf("%w: malformed response framing", ErrProtocol)
)

// Connection wraps a transport failure so it matches both ErrConnection and
// the underlying cause.
func Connection(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrConnection, op, err)
}

// Data wraps a payload decoding failure.
func Data(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrData, op, err)
}

// ServerError is an error line sent by the server, e.g. "-ERR Unknown command".
type ServerError struct {
	Code    string
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return "server error: " + e.Code
	}
	return fmt.Sprintf("server error: %s %s", e.Code, e.Message)
}

func (e *ServerError) Unwrap() error {
	return ErrProtocol
}
