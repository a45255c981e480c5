package httpserver

import "fmt"

// SetupError reports that the listening socket could not be bound. It is
// fatal: the caller decides whether to abort the process. The alive/ready
// flags are left untouched when it is returned.
type SetupError struct {
	// Addr is the host:port the server attempted to bind.
	Addr string

	// Err is the underlying OS error.
	Err error
}

// Error returns a description including the address and underlying error.
func (e *SetupError) Error() string {
	return fmt.Sprintf("unable to start webserver on %q: %v", e.Addr, e.Err)
}

// Unwrap returns the underlying OS error.
func (e *SetupError) Unwrap() error {
	return e.Err
}
