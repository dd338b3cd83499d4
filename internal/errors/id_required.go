package errors

import "net/http"

// ErrIDRequired is returned when a path or form omits the record id.
var ErrIDRequired = &Exception{
	Message:    "record id is required",
	StatusCode: http.StatusBadRequest,
}
