package recordstore

import (
	"errors"
	"fmt"
)

// RemoteError represents a failed request against the record store:
// either a transport failure (Err set, StatusCode zero) or a non-2xx
// response from the store itself.
type RemoteError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *RemoteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("record store: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("record store: %s: HTTP %d", e.Op, e.StatusCode)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// IsRemote reports whether err originated from the record store.
func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}
