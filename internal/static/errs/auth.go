package errs

import "fmt"

var (
	ErrAuthRequired    = fmt.Errorf("%w: server requires authentication, but no password given", ErrInvalidInput)
	ErrInvalidPassword = fmt.Errorf("%w: invalid password", ErrProtocol)
)
