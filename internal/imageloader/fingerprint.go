package imageloader

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"image"

	"github.com/corona10/goimagehash"

	"github.com/basel-ax/archaeo/internal/domain"
)

// Digest identifies the exact content of an image. Two images share a
// digest only when their bytes are equal.
func Digest(img domain.EncodedImage) (string, error) {
	data, err := img.Bytes()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(sum[:]), nil
}

// PerceptualHash returns the perception hash of a decodable image. Visually
// similar images, including distinct photos of one motif, may share a hash,
// so it is a similarity key and never an identity.
func PerceptualHash(img domain.EncodedImage) (string, bool) {
	data, err := img.Bytes()
	if err != nil {
		return "", false
	}
	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", false
	}
	hash, err := goimagehash.PerceptionHash(decoded)
	if err != nil {
		return "", false
	}
	return hash.ToString(), true
}
