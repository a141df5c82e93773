package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a non-2xx answer from the server.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

// IsUnauthorized reports whether err is an *Error with status 401.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// ErrNotSaved is returned when the server answered 2xx without confirming the write.
var ErrNotSaved = errors.New("server did not confirm the save")
