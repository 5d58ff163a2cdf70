package domain

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const dataURLPrefix = "data:"

// EncodedImage represents binary image data serialized as a data URL
// ("data:<mime>;base64,<payload>"). It is usable both as an <img src> and as
// the image input of an assistant request.
type EncodedImage string

// NewEncodedImage encodes raw image bytes of the given MIME type
func NewEncodedImage(mimeType string, data []byte) EncodedImage {
	return EncodedImage(dataURLPrefix + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data))
}

// ParseEncodedImage validates s as a base64 data URL
func ParseEncodedImage(s string) (EncodedImage, error) {
	img := EncodedImage(s)
	if _, _, err := img.split(); err != nil {
		return "", err
	}
	return img, nil
}

// IsZero reports whether no image is present
func (e EncodedImage) IsZero() bool {
	return e == ""
}

// MIMEType returns the media type embedded in the data URL
func (e EncodedImage) MIMEType() string {
	mimeType, _, err := e.split()
	if err != nil {
		return ""
	}
	return mimeType
}

// Bytes decodes the base64 payload
func (e EncodedImage) Bytes() ([]byte, error) {
	_, payload, err := e.split()
	if err != nil {
		return nil, err
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image payload: %w", err)
	}
	return data, nil
}

func (e EncodedImage) split() (string, string, error) {
	s := string(e)
	if !strings.HasPrefix(s, dataURLPrefix) {
		return "", "", fmt.Errorf("not a data URL")
	}
	header, payload, ok := strings.Cut(s[len(dataURLPrefix):], ",")
	if !ok {
		return "", "", fmt.Errorf("data URL has no payload")
	}
	mimeType, ok := strings.CutSuffix(header, ";base64")
	if !ok {
		return "", "", fmt.Errorf("data URL is not base64 encoded")
	}
	if mimeType == "" {
		return "", "", fmt.Errorf("data URL has no media type")
	}
	return mimeType, payload, nil
}
