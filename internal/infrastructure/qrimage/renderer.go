// Package qrimage renders raw authentication challenge strings into
// browser-displayable QR data URIs.
package qrimage

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const defaultSize = 256

// Renderer encodes challenge strings as PNG QR codes wrapped in a
// data:image/png;base64 URI.
type Renderer struct {
	size int
}

// NewRenderer builds a renderer producing images of the given pixel size.
// Non-positive sizes fall back to 256.
func NewRenderer(size int) *Renderer {
	if size <= 0 {
		size = defaultSize
	}
	return &Renderer{size: size}
}

// Render encodes code into a PNG QR image and returns it as a data URI.
func (r *Renderer) Render(code string) (string, error) {
	png, err := qrcode.Encode(code, qrcode.Medium, r.size)
	if err != nil {
		return "", fmt.Errorf("encode qr: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
