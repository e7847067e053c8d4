package util

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"go-project-hub/internal/model"
)

const AvatarSize = 256

// NormalizeAvatar decodes an uploaded image, scales it to fit within
// size x size keeping its aspect ratio, and re-encodes it as PNG.
func NormalizeAvatar(r io.Reader, size int) ([]byte, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, model.NewFieldError("avatar", "must be a png, jpeg, gif, webp, bmp or tiff image")
	}

	bounds := src.Bounds()
	width, height := fitWithin(bounds.Dx(), bounds.Dy(), size)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode avatar: %w", err)
	}
	return buf.Bytes(), nil
}

func fitWithin(width int, height int, size int) (int, int) {
	if width <= size && height <= size {
		return max(width, 1), max(height, 1)
	}
	if width >= height {
		return size, max(height*size/width, 1)
	}
	return max(width*size/height, 1), size
}
