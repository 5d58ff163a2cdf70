package imageloader

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/basel-ax/archaeo/internal/domain"

	_ "image/gif"
)

// ErrNotImage is returned when the input does not sniff as an image
var ErrNotImage = fmt.Errorf("file is not an image")

// ErrTooLarge is returned when the input exceeds the loader's size limit
var ErrTooLarge = fmt.Errorf("image exceeds size limit")

// Loader turns user-selected files into encoded images
type Loader struct {
	maxBytes int64
	maxEdge  int
}

// New creates a loader. maxEdge of 0 disables downscaling.
func New(maxBytes int64, maxEdge int) *Loader {
	return &Loader{maxBytes: maxBytes, maxEdge: maxEdge}
}

// Load reads r fully and encodes it as a data URL
func (l *Loader) Load(r io.Reader) (domain.EncodedImage, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.maxBytes+1))
	if err != nil {
		return "", errors.Wrap(err, "read image")
	}
	if int64(len(data)) > l.maxBytes {
		return "", ErrTooLarge
	}
	return l.Encode(data)
}

// Encode sniffs data and encodes it. Decodable images larger than the
// configured edge are oriented and downscaled; anything else the browser
// accepts as image/* is passed through untouched.
func (l *Loader) Encode(data []byte) (domain.EncodedImage, error) {
	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return "", ErrNotImage
	}

	if resized, outType, ok := l.downscale(data, mimeType); ok {
		return domain.NewEncodedImage(outType, resized), nil
	}
	return domain.NewEncodedImage(mimeType, data), nil
}

func (l *Loader) downscale(data []byte, mimeType string) ([]byte, string, bool) {
	if l.maxEdge <= 0 {
		return nil, "", false
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || (cfg.Width <= l.maxEdge && cfg.Height <= l.maxEdge) {
		return nil, "", false
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", false
	}
	img = imaging.Fit(img, l.maxEdge, l.maxEdge, imaging.Lanczos)

	var buf bytes.Buffer
	outType := mimeType
	if format == "jpeg" {
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 92})
	} else {
		outType = "image/png"
		err = png.Encode(&buf, img)
	}
	if err != nil {
		return nil, "", false
	}
	return buf.Bytes(), outType, true
}
