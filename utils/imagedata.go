package utils

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"
)

const (
	// MaxImageSize is 4MB of decoded image bytes
	MaxImageSize = 4 * 1024 * 1024
)

// ImagePayloadError represents an image payload validation error
type ImagePayloadError struct {
	Code    string
	Message string
}

func (e *ImagePayloadError) Error() string {
	return e.Message
}

var (
	pngMagic  = []byte{0x89, 0x50, 0x4E, 0x47}
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
)

// DecodeImagePayload decodes an inline base64 image, with or without a
// data-URI prefix, validates the size bound, and sniffs the format from the
// magic bytes. Only PNG and JPEG payloads are accepted.
func DecodeImagePayload(payload string) ([]byte, string, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, "", &ImagePayloadError{
			Code:    "MISSING_IMAGE",
			Message: "Image data is empty",
		}
	}

	// Strip a data URI prefix such as data:image/png;base64,
	if strings.HasPrefix(payload, "data:") {
		idx := strings.Index(payload, ",")
		if idx < 0 {
			return nil, "", &ImagePayloadError{
				Code:    "INVALID_IMAGE_DATA",
				Message: "Malformed data URI",
			}
		}
		payload = payload[idx+1:]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", &ImagePayloadError{
			Code:    "INVALID_IMAGE_DATA",
			Message: "Image data is not valid base64",
		}
	}

	if len(data) > MaxImageSize {
		return nil, "", &ImagePayloadError{
			Code:    "IMAGE_TOO_LARGE",
			Message: fmt.Sprintf("Image exceeds maximum allowed size of %d MB", MaxImageSize/(1024*1024)),
		}
	}

	contentType, err := SniffImageType(data)
	if err != nil {
		return nil, "", err
	}
	return data, contentType, nil
}

// SniffImageType returns the content type for PNG or JPEG bytes.
func SniffImageType(data []byte) (string, error) {
	switch {
	case bytes.HasPrefix(data, pngMagic):
		return "image/png", nil
	case bytes.HasPrefix(data, jpegMagic):
		return "image/jpeg", nil
	default:
		return "", &ImagePayloadError{
			Code:    "INVALID_IMAGE_FORMAT",
			Message: "Only PNG and JPEG images are allowed",
		}
	}
}
