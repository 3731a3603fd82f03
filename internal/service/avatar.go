package service

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"

	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const avatarJPEGQuality = 85

// processAvatar decodes an uploaded image, scales it down so the longer
// side is at most maxDim, and re-encodes it as JPEG. Upscaling small
// images is skipped.
func processAvatar(r io.Reader, maxDim int) ([]byte, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode avatar image: %w", err)
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("avatar image has empty bounds")
	}

	if width > maxDim || height > maxDim {
		scale := float64(maxDim) / float64(width)
		if height > width {
			scale = float64(maxDim) / float64(height)
		}

		// Extreme aspect ratios can truncate the short side to zero,
		// which jpeg.Encode rejects; keep at least one pixel.
		dstWidth := max(int(float64(width)*scale), 1)
		dstHeight := max(int(float64(height)*scale), 1)

		dst := image.NewRGBA(image.Rect(0, 0, dstWidth, dstHeight))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		src = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: avatarJPEGQuality}); err != nil {
		return nil, fmt.Errorf("encode avatar: %w", err)
	}

	return buf.Bytes(), nil
}
