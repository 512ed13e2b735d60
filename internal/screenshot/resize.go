package screenshot

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"
	"strings"

	"github.com/nfnt/resize"
	xdraw "golang.org/x/image/draw"
)

// Filter selects the resampling kernel used when downscaling
type Filter string

const (
	FilterLanczos3   Filter = "lanczos3"
	FilterMitchell   Filter = "mitchell"
	FilterCatmullRom Filter = "catmullrom"
	FilterBilinear   Filter = "bilinear"
)

// DefaultFilter favours edge fidelity over speed; screenshots are taken once,
// not in a hot loop.
const DefaultFilter = FilterLanczos3

// ParseFilter maps a config value to a Filter. Empty selects DefaultFilter.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return DefaultFilter, nil
	case FilterLanczos3, FilterMitchell, FilterCatmullRom, FilterBilinear:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported resample filter: %s", s)
	}
}

// scale resamples img to exactly width x height
func (f Filter) scale(img image.Image, width, height int) image.Image {
	switch f {
	case FilterCatmullRom:
		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
		return dst
	case FilterMitchell:
		return resize.Resize(uint(width), uint(height), img, resize.MitchellNetravali)
	case FilterBilinear:
		return resize.Resize(uint(width), uint(height), img, resize.Bilinear)
	default:
		return resize.Resize(uint(width), uint(height), img, resize.Lanczos3)
	}
}

// ScaledSize returns the dimensions of a width x height image fitted to
// ceiling. The width never grows and the aspect ratio is kept up to rounding.
func ScaledSize(width, height int, ceiling uint32) (int, int) {
	if width <= int(ceiling) {
		return width, height
	}
	scale := float64(ceiling) / float64(width)
	newHeight := int(math.Round(float64(height) * scale))
	if newHeight < 1 {
		newHeight = 1
	}
	return int(ceiling), newHeight
}

// MaybeResize downscales encoded image bytes so the width does not exceed
// ceiling. Input no wider than ceiling is returned as is, byte for
// byte. Resized output is always PNG: format conversion is a later stage.
func MaybeResize(data []byte, ceiling uint32, filter Filter) ([]byte, error) {
	if ceiling < 1 {
		return nil, ResizeFailed("max width must be at least 1", nil)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ResizeFailed("failed to decode image", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() <= int(ceiling) {
		return data, nil
	}

	width, height := ScaledSize(bounds.Dx(), bounds.Dy(), ceiling)
	resized := filter.scale(img, width, height)

	var buf bytes.Buffer
	if err := png.Encode(&buf, resized); err != nil {
		return nil, ResizeFailed("failed to encode PNG", err)
	}
	return buf.Bytes(), nil
}
