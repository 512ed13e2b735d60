package screenshot

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/bryanchriswhite/FocusBridge/internal/window"
	"github.com/stretchr/testify/require"
)

// solidPNG encodes a width x height image filled with c
func solidPNG(t *testing.T, width, height int, c color.Color) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// decodeDataURI splits a data URI into its MIME type and decoded image
func decodeDataURI(t *testing.T, uri string) (string, image.Image, string) {
	t.Helper()

	require.True(t, strings.HasPrefix(uri, "data:"), "not a data URI: %.40s", uri)
	header, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	require.True(t, ok)

	mime, ok := strings.CutSuffix(header, ";base64")
	require.True(t, ok)

	raw, err := base64.StdEncoding.DecodeString(payload)
	require.NoError(t, err)

	img, format, err := image.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	return mime, img, format
}

type fakeProvider struct {
	raw   *RawCapture
	err   error
	calls int
}

func (f *fakeProvider) CaptureViewport(ctx context.Context, win *window.Info) (*RawCapture, error) {
	f.calls++
	return f.raw, f.err
}

func u32(v uint32) *uint32 { return &v }
