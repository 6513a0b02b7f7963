// Package imaging prepares uploaded photos for the marketplace: large
// originals are downscaled and re-encoded as JPEG before being stored.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // decoded, always re-encoded as JPEG

	"golang.org/x/image/draw"
)

const (
	DefaultMaxDim  = 1024
	DefaultQuality = 80
)

// Compress decodes raw, clamps the longer side to maxDim preserving aspect
// ratio, and re-encodes as JPEG at the given quality. Images already within
// bounds keep their dimensions, which makes repeated application a no-op in
// terms of size.
func Compress(raw []byte, maxDim, quality int) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("can't decode image: %w", err)
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	if w > maxDim || h > maxDim {
		if w >= h {
			h = h * maxDim / w
			w = maxDim
		} else {
			w = w * maxDim / h
			h = maxDim
		}
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}

		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
		src = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("can't encode jpeg: %w", err)
	}

	return buf.Bytes(), nil
}

// Dimensions reports the pixel size of an encoded image.
func Dimensions(raw []byte) (w, h int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return 0, 0, fmt.Errorf("can't decode image config: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}
