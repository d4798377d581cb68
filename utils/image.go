package utils

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
)

const DefaultJpegQuality = 70

// EncodeJpeg re-encodes img as JPEG. When maxSide is positive the image is
// first scaled down so neither side exceeds it.
func EncodeJpeg(img image.Image, quality int, maxSide int) ([]byte, error) {
	if quality < 1 || quality > 100 {
		quality = DefaultJpegQuality
	}

	if maxSide > 0 {
		bounds := img.Bounds()
		if bounds.Dx() > maxSide || bounds.Dy() > maxSide {
			img = imaging.Fit(img, maxSide, maxSide, imaging.Lanczos)
		}
	}

	var jpegBytes bytes.Buffer
	if err := imaging.Encode(&jpegBytes, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, err
	}

	return jpegBytes.Bytes(), nil
}
