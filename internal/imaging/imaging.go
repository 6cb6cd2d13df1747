// Package imaging normalizes part photos before they are stored.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Limits for stored photos.
const (
	MaxDimension = 1024
	MaxUpload    = 8 << 20
	JPEGQuality  = 85
)

var accepted = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// ErrUnsupported is returned for anything that is not a JPEG, PNG or WebP.
var ErrUnsupported = errors.New("unsupported image format")

// Photo is a normalized image ready for storage.
type Photo struct {
	Data   []byte
	MIME   string
	Width  int
	Height int
}

// Process sniffs the upload, fits it inside MaxDimension and re-encodes it as
// JPEG on a white background.
func Process(r io.Reader) (*Photo, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUpload+1))
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	if len(data) > MaxUpload {
		return nil, fmt.Errorf("image larger than %d bytes", MaxUpload)
	}

	if mime := http.DetectContentType(data); !accepted[mime] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, mime)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	w, h := fit(src.Bounds().Dx(), src.Bounds().Dy(), MaxDimension)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	// JPEG has no alpha; flatten transparent PNG/WebP onto white.
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}

	return &Photo{Data: buf.Bytes(), MIME: "image/jpeg", Width: w, Height: h}, nil
}

// fit scales w×h down to fit a max×max box, keeping the aspect ratio.
// Smaller images are left as they are.
func fit(w, h, max int) (int, int) {
	if w <= max && h <= max {
		return w, h
	}
	if w >= h {
		return max, clamp(h * max / w)
	}
	return clamp(w * max / h), max
}

func clamp(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
