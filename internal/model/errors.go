package model

import "fmt"

// RemoteListError is returned when an initial listing call fails; nothing can
// be decided without the list, so it is always fatal.
type RemoteListError struct {
	What string
	Err  error
}

func (e *RemoteListError) Error() string {
	return fmt.Sprintf("list %s: %s", e.What, e.Err)
}

func (e *RemoteListError) Unwrap() error {
	return e.Err
}
