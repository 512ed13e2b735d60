package screenshot

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScaledSize(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		ceiling       uint32
		wantW, wantH  int
	}{
		{"narrower than ceiling", 800, 600, 1000, 800, 600},
		{"exactly ceiling", 1000, 600, 1000, 1000, 600},
		{"4:3 halved", 2000, 1500, 1000, 1000, 750},
		{"rounds height", 1920, 1080, 1000, 1000, 563},
		{"very wide strip clamps height", 10000, 1, 10, 10, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := ScaledSize(tt.width, tt.height, tt.ceiling)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestMaybeResize_NoOpReturnsSameBytes(t *testing.T) {
	data := solidPNG(t, 800, 600, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	out, err := MaybeResize(data, 1000, DefaultFilter)
	require.NoError(t, err)
	assert.Equal(t, data, out)

	out, err = MaybeResize(data, 800, DefaultFilter)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestMaybeResize_Downscales(t *testing.T) {
	data := solidPNG(t, 400, 300, color.RGBA{R: 200, A: 255})

	for _, filter := range []Filter{FilterLanczos3, FilterMitchell, FilterCatmullRom, FilterBilinear} {
		t.Run(string(filter), func(t *testing.T) {
			out, err := MaybeResize(data, 100, filter)
			require.NoError(t, err)

			img, format, err := image.Decode(bytes.NewReader(out))
			require.NoError(t, err)
			assert.Equal(t, "png", format)
			assert.Equal(t, 100, img.Bounds().Dx())
			assert.Equal(t, 75, img.Bounds().Dy())
		})
	}
}

func TestMaybeResize_Errors(t *testing.T) {
	_, err := MaybeResize([]byte("not an image"), 100, DefaultFilter)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResizeFailed)

	_, err = MaybeResize(solidPNG(t, 10, 10, color.White), 0, DefaultFilter)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResizeFailed)
	assert.Contains(t, err.Error(), "at least 1")
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("")
	require.NoError(t, err)
	assert.Equal(t, FilterLanczos3, f)

	f, err = ParseFilter(" CatmullRom ")
	require.NoError(t, err)
	assert.Equal(t, FilterCatmullRom, f)

	_, err = ParseFilter("nearest")
	assert.Error(t, err)
}
