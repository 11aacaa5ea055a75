package verification

import (
	"encoding/base64"
	"errors"
	"strings"
)

// MaxImageBytes caps decoded image payloads. Larger uploads are rejected
// before any collaborator is called.
const MaxImageBytes = 4 * 1024 * 1024

var (
	ErrInvalidImage  = errors.New("image must be a base64 data URI with an image media type")
	ErrImageTooLarge = errors.New("image exceeds the 4MB size limit")
)

// Image is a validated, decoded image payload.
type Image struct {
	MediaType string
	Data      []byte
}

// ParseImage validates and decodes a data URI of the form
// data:image/<subtype>;base64,<payload>.
func ParseImage(dataURI string) (Image, error) {
	if !strings.HasPrefix(dataURI, "data:image/") {
		return Image{}, ErrInvalidImage
	}

	header, payload, found := strings.Cut(dataURI, ",")
	if !found || payload == "" {
		return Image{}, ErrInvalidImage
	}

	mediaType := strings.TrimPrefix(header, "data:")
	mediaType, _, _ = strings.Cut(mediaType, ";")

	// Cheap size screen before decoding: base64 inflates by 4/3.
	if len(payload) > MaxImageBytes*4/3+4 {
		return Image{}, ErrImageTooLarge
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, ErrInvalidImage
	}
	if len(data) > MaxImageBytes {
		return Image{}, ErrImageTooLarge
	}

	return Image{MediaType: mediaType, Data: data}, nil
}
