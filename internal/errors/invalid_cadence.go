package errors

import "net/http"

var ErrInvalidCadence = &Exception{
	Message:    "cadence must be one of daily, weekly, monthly",
	StatusCode: http.StatusBadRequest,
}
