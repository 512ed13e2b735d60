package screenshot

import (
	"fmt"
	"strings"
)

// Format is an output image encoding
type Format string

const (
	// FormatPNG is the lossless working format every provider produces
	FormatPNG Format = "png"
	// FormatJPEG is the lossy, quality parameterized output format
	FormatJPEG Format = "jpeg"
)

// ParseFormat accepts "png", "jpeg" and "jpg" case-insensitively. An empty
// string yields PNG.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	default:
		return "", fmt.Errorf("unsupported format: %s (use 'png' or 'jpeg')", s)
	}
}

// MIME returns the media type used in the data URI
func (f Format) MIME() string {
	if f == FormatJPEG {
		return "image/jpeg"
	}
	return "image/png"
}
