package screenshot

import (
	"context"
	"errors"
	"image/color"
	"strings"
	"testing"

	"github.com/bryanchriswhite/FocusBridge/internal/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testWindow = &window.Info{ID: 42, Title: "Test", Class: "test"}

func TestPipeline_DownscaleToJPEG(t *testing.T) {
	provider := &fakeProvider{raw: &RawCapture{
		PNG:    solidPNG(t, 4000, 3000, color.RGBA{R: 30, G: 60, B: 90, A: 255}),
		Width:  4000,
		Height: 3000,
	}}
	p := NewPipeline(provider, StaticSettings(Settings{Filter: FilterBilinear}))

	uri, err := p.Capture(context.Background(), testWindow, Options{
		Format:   FormatJPEG,
		Quality:  85,
		MaxWidth: u32(1000),
	})
	require.NoError(t, err)

	mime, img, format := decodeDataURI(t, uri)
	assert.Equal(t, "image/jpeg", mime)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 1000, img.Bounds().Dx())
	assert.Equal(t, 750, img.Bounds().Dy())
	assert.Equal(t, 1, provider.calls)
}

func TestPipeline_NoResizeIsLossless(t *testing.T) {
	data := solidPNG(t, 800, 600, color.White)
	p := NewPipeline(&fakeProvider{raw: &RawCapture{PNG: data, Width: 800, Height: 600}}, nil)

	uri, err := p.Capture(context.Background(), testWindow, Options{Format: FormatPNG})
	require.NoError(t, err)
	assert.Equal(t, DataURI(FormatPNG, data), uri)

	mime, img, _ := decodeDataURI(t, uri)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, 600, img.Bounds().Dy())
}

func TestPipeline_RequestOverridesDefault(t *testing.T) {
	data := solidPNG(t, 1000, 500, color.Black)
	p := NewPipeline(
		&fakeProvider{raw: &RawCapture{PNG: data, Width: 1000, Height: 500}},
		StaticSettings(Settings{DefaultMaxWidth: 2000, Filter: FilterBilinear}),
	)

	uri, err := p.Capture(context.Background(), testWindow, Options{Format: FormatPNG, MaxWidth: u32(500)})
	require.NoError(t, err)

	_, img, _ := decodeDataURI(t, uri)
	assert.Equal(t, 500, img.Bounds().Dx())
	assert.Equal(t, 250, img.Bounds().Dy())
}

func TestPipeline_DefaultApplies(t *testing.T) {
	data := solidPNG(t, 300, 200, color.Black)
	p := NewPipeline(
		&fakeProvider{raw: &RawCapture{PNG: data, Width: 300, Height: 200}},
		StaticSettings(Settings{DefaultMaxWidth: 150, Filter: FilterBilinear}),
	)

	uri, err := p.Capture(context.Background(), testWindow, Options{Format: FormatPNG})
	require.NoError(t, err)

	_, img, _ := decodeDataURI(t, uri)
	assert.Equal(t, 150, img.Bounds().Dx())
	assert.Equal(t, 100, img.Bounds().Dy())
}

func TestPipeline_SettingsReadPerCall(t *testing.T) {
	data := solidPNG(t, 400, 400, color.Black)
	settings := Settings{Filter: FilterBilinear}
	p := NewPipeline(
		&fakeProvider{raw: &RawCapture{PNG: data, Width: 400, Height: 400}},
		func() Settings { return settings },
	)

	uri, err := p.Capture(context.Background(), testWindow, Options{Format: FormatPNG})
	require.NoError(t, err)
	_, img, _ := decodeDataURI(t, uri)
	assert.Equal(t, 400, img.Bounds().Dx())

	settings.DefaultMaxWidth = 100
	uri, err = p.Capture(context.Background(), testWindow, Options{Format: FormatPNG})
	require.NoError(t, err)
	_, img, _ = decodeDataURI(t, uri)
	assert.Equal(t, 100, img.Bounds().Dx())
}

func TestPipeline_NilProvider(t *testing.T) {
	p := NewPipeline(nil, nil)

	uri, err := p.Capture(context.Background(), testWindow, Options{Format: FormatPNG})
	assert.Empty(t, uri)
	assert.ErrorIs(t, err, ErrPlatformUnsupported)
}

func TestPipeline_ProviderErrors(t *testing.T) {
	t.Run("typed error passes through", func(t *testing.T) {
		want := CaptureFailed("window is minimized", nil)
		p := NewPipeline(&fakeProvider{err: want}, nil)

		_, err := p.Capture(context.Background(), testWindow, Options{Format: FormatPNG})
		assert.Same(t, want, err)
	})

	t.Run("untyped error is wrapped", func(t *testing.T) {
		cause := errors.New("bus closed")
		p := NewPipeline(&fakeProvider{err: cause}, nil)

		_, err := p.Capture(context.Background(), testWindow, Options{Format: FormatPNG})
		assert.ErrorIs(t, err, ErrCaptureFailed)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("empty capture", func(t *testing.T) {
		p := NewPipeline(&fakeProvider{raw: &RawCapture{}}, nil)

		_, err := p.Capture(context.Background(), testWindow, Options{Format: FormatPNG})
		assert.ErrorIs(t, err, ErrCaptureFailed)
	})
}

func TestPipeline_ZeroMaxWidthFails(t *testing.T) {
	data := solidPNG(t, 10, 10, color.Black)
	p := NewPipeline(&fakeProvider{raw: &RawCapture{PNG: data, Width: 10, Height: 10}}, nil)

	_, err := p.Capture(context.Background(), testWindow, Options{Format: FormatPNG, MaxWidth: u32(0)})
	assert.ErrorIs(t, err, ErrResizeFailed)
}

func TestDataURI(t *testing.T) {
	uri := DataURI(FormatJPEG, []byte("abc"))
	assert.Equal(t, "data:image/jpeg;base64,YWJj", uri)
	assert.True(t, strings.HasPrefix(DataURI(FormatPNG, nil), "data:image/png;base64,"))
}
