package folders

import (
	"fmt"
)

// RemoteUpdateError is one failed create, update or delete request.
type RemoteUpdateError struct {
	Op    string
	Id    int32
	Title string
	Err   error
}

func (e *RemoteUpdateError) Error() string {
	return fmt.Sprintf("%s folder %d %q: %s", e.Op, e.Id, e.Title, e.Err)
}

func (e *RemoteUpdateError) Unwrap() error {
	return e.Err
}

// ApplyError is returned after every request of a batch has been attempted and
// at least one of them failed. Errors keeps them in request order.
type ApplyError struct {
	Errors []error
}

func (e *ApplyError) Error() string {
	if len(e.Errors) == 1 {
		return e.Last().Error()
	}

	return fmt.Sprintf("%d folder requests failed, last: %s", len(e.Errors), e.Last())
}

func (e *ApplyError) Last() error {
	if len(e.Errors) == 0 {
		return nil
	}

	return e.Errors[len(e.Errors)-1]
}

func (e *ApplyError) Unwrap() []error {
	return e.Errors
}
