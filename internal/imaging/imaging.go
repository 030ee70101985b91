// Package imaging prepares captured photos for storage: decodable images are
// bounded to a maximum dimension and re-encoded as PNG.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"net/http"

	"golang.org/x/image/draw"
)

// DefaultMaxDimension bounds the longer side of a stored photo.
const DefaultMaxDimension = 800

// Normalize scales data down so neither side exceeds maxDim and re-encodes it
// as PNG. Input that is not a decodable image is returned unchanged with its
// sniffed content type.
func Normalize(data []byte, maxDim int) ([]byte, string, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data, http.DetectContentType(data), nil
	}
	if maxDim <= 0 {
		maxDim = DefaultMaxDimension
	}

	dst := src
	b := src.Bounds()
	if w, h := Fit(b.Dx(), b.Dy(), maxDim); w != b.Dx() || h != b.Dy() {
		scaled := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), src, b, draw.Over, nil)
		dst = scaled
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, "", fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), "image/png", nil
}

// Fit returns w×h scaled to fit within maxDim×maxDim, preserving aspect
// ratio. Images already inside the box are left alone.
func Fit(w, h, maxDim int) (int, int) {
	if w <= maxDim && h <= maxDim {
		return w, h
	}
	if w >= h {
		return maxDim, max(1, h*maxDim/w)
	}
	return max(1, w*maxDim/h), maxDim
}
