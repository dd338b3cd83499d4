package errors

import "net/http"

var ErrUnsupportedImage = &Exception{
	Message:    "uploaded file is not a supported image",
	StatusCode: http.StatusUnsupportedMediaType,
}

var ErrImageRequired = &Exception{
	Message:    "image file is required",
	StatusCode: http.StatusBadRequest,
}

var ErrImageTooLarge = &Exception{
	Message:    "image exceeds the upload size limit",
	StatusCode: http.StatusRequestEntityTooLarge,
}
