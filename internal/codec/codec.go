// Package codec decodes image files and scales them for display.
// Supported formats: png, jpeg, gif and bmp.
package codec

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
)

// Adapter loads images from disk. The zero value is ready to use.
type Adapter struct{}

// NewAdapter creates a new Adapter.
func NewAdapter() *Adapter {
	return &Adapter{}
}

// Decode reads and decodes the image file at path at full size.
func (a *Adapter) Decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return img, nil
}

// DecodeScaled decodes the image file at path and scales it down to fit
// within maxWidth x maxHeight, preserving the aspect ratio. Images that
// already fit the bounding box are returned as decoded.
func (a *Adapter) DecodeScaled(path string, maxWidth, maxHeight int) (image.Image, error) {
	img, err := a.Decode(path)
	if err != nil {
		return nil, err
	}
	return resize.Thumbnail(uint(maxWidth), uint(maxHeight), img, resize.Lanczos3), nil
}
