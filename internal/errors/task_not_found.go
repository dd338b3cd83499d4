package errors

import "net/http"

var ErrTaskNotFound = &Exception{
	Message:    "task not found",
	StatusCode: http.StatusNotFound,
}

var ErrScheduleTaskNotFound = &Exception{
	Message:    "scheduled task not found",
	StatusCode: http.StatusNotFound,
}
