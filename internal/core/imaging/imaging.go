// Package imaging checks and downsizes uploaded payment receipts.
package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // decoders
	"image/jpeg"
	_ "image/png"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// OutputType is the content type of a re-encoded receipt.
const OutputType = "image/jpeg"

const (
	qualityStep = 10
	minQuality  = 30
)

var (
	// ErrNotImage is returned when the sniffed content is not an image.
	ErrNotImage = errors.New("not an image")
	// ErrTooLarge is returned when the upload exceeds the byte ceiling.
	ErrTooLarge = errors.New("image too large")
	// ErrDecode is returned when the image cannot be decoded.
	ErrDecode = errors.New("image cannot be decoded")
)

// Options bound the accepted upload and the compressed output.
type Options struct {
	MaxBytes int
	MaxWidth int
	Quality  int
}

// Result is a compressed receipt.
type Result struct {
	Data          []byte
	ContentType   string
	Width         int
	Height        int
	OriginalBytes int
	Scaled        bool
}

// Check rejects uploads over MaxBytes and content whose sniffed type is not image/*.
// It returns the detected MIME type.
func Check(data []byte, opts Options) (string, error) {
	if opts.MaxBytes > 0 && len(data) > opts.MaxBytes {
		return "", fmt.Errorf("%w: %d bytes", ErrTooLarge, len(data))
	}
	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return mime.String(), fmt.Errorf("%w: %s", ErrNotImage, mime.String())
	}
	return mime.String(), nil
}

// Compress decodes data, scales it down to MaxWidth keeping the aspect ratio and
// re-encodes it as JPEG at Quality. Images already narrower than MaxWidth keep their size.
// A JPEG that was not scaled is returned unchanged when re-encoding would make it larger.
// A scaled image never comes back larger than data: the quality is lowered step by step
// and, failing that, the upload is returned as is with its own content type.
func Compress(ctx context.Context, data []byte, opts Options) (Result, error) {
	mime, err := Check(data, opts)
	if err != nil {
		return Result{}, err
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	scaled := opts.MaxWidth > 0 && w > opts.MaxWidth
	if scaled {
		h = h * opts.MaxWidth / w
		if h < 1 {
			h = 1
		}
		w = opts.MaxWidth
	}

	// JPEG has no alpha; transparent areas become white instead of black.
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	if scaled {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	} else {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	quality := opts.Quality
	if quality <= 0 || quality > 100 {
		quality = jpeg.DefaultQuality
	}
	out, err := encode(dst, quality)
	if err != nil {
		return Result{}, err
	}

	switch {
	case !scaled && mime == OutputType && len(out) > len(data):
		out = data
	case scaled && len(out) > len(data):
		// Scaled output must not outgrow the upload: lower the quality, else keep the upload.
		for q := quality - qualityStep; q >= minQuality && len(out) > len(data); q -= qualityStep {
			if out, err = encode(dst, q); err != nil {
				return Result{}, err
			}
		}
		if len(out) > len(data) {
			return Result{
				Data:          data,
				ContentType:   mime,
				Width:         b.Dx(),
				Height:        b.Dy(),
				OriginalBytes: len(data),
			}, nil
		}
	}

	return Result{
		Data:          out,
		ContentType:   OutputType,
		Width:         w,
		Height:        h,
		OriginalBytes: len(data),
		Scaled:        scaled,
	}, nil
}

func encode(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension of a receipt content type, ".jpg" when unknown.
func Extension(contentType string) string {
	if m := mimetype.Lookup(contentType); m != nil && m.Extension() != "" {
		if m.Extension() == ".jpeg" {
			return ".jpg"
		}
		return m.Extension()
	}
	return ".jpg"
}

// KB formats a byte count the way the optimisation notice shows it.
func KB(n int) string {
	return fmt.Sprintf("%.0fKB", float64(n)/1024)
}
