package capture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/bryanchriswhite/FocusBridge/internal/screenshot"
	"github.com/bryanchriswhite/FocusBridge/internal/window"
	xdraw "golang.org/x/image/draw"
)

// Capturer defines the interface for window capture backends
type Capturer interface {
	// CaptureWindow captures the viewport of a specific window
	CaptureWindow(ctx context.Context, win *window.Info) (image.Image, error)

	// Name returns a human-readable name for this capturer
	Name() string

	// CanCapture checks if this capturer can capture the given window
	CanCapture(win *window.Info) bool

	// Stop releases resources
	Stop() error
}

// pngEncoder trades compression for latency; the bytes are re-encoded or
// shipped once and then dropped
var pngEncoder = png.Encoder{CompressionLevel: png.BestSpeed}

// EncodeRaw turns a captured image into the lossless working format
func EncodeRaw(img image.Image, backend string) (*screenshot.RawCapture, error) {
	if img == nil {
		return nil, screenshot.CaptureFailed("captured image is nil", nil)
	}
	bounds := img.Bounds()
	if bounds.Dx() < 1 || bounds.Dy() < 1 {
		return nil, screenshot.CaptureFailed(
			fmt.Sprintf("captured image is empty (%dx%d)", bounds.Dx(), bounds.Dy()), nil)
	}

	var buf bytes.Buffer
	if err := pngEncoder.Encode(&buf, img); err != nil {
		return nil, screenshot.CaptureFailed("failed to encode capture as PNG", err)
	}

	return &screenshot.RawCapture{
		PNG:     buf.Bytes(),
		Width:   bounds.Dx(),
		Height:  bounds.Dy(),
		Backend: backend,
	}, nil
}

// Crop copies the part of img inside rect (in img's coordinate space) into a
// new RGBA image anchored at the origin. A rect that does not overlap img
// yields an empty image.
func Crop(img image.Image, rect image.Rectangle) *image.RGBA {
	rect = rect.Intersect(img.Bounds())
	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	xdraw.Draw(dst, dst.Bounds(), img, rect.Min, xdraw.Src)
	return dst
}
