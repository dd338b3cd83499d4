package media

import (
	"encoding/base64"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	apperrors "equipcare-hub.com/equipcare-hub/internal/errors"
)

// MaxImageBytes bounds uploads accepted for task images.
const MaxImageBytes = 5 << 20

// EncodeDataURI sniffs the content type of data and returns it as a base64
// data URI. Only images are accepted.
func EncodeDataURI(data []byte) (string, error) {
	if len(data) == 0 {
		return "", apperrors.ErrImageRequired
	}

	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return "", apperrors.ErrUnsupportedImage
	}

	return "data:" + mime.String() + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
