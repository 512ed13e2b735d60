package bridge

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/bryanchriswhite/FocusBridge/internal/screenshot"
	"github.com/bryanchriswhite/FocusBridge/internal/window"
	"github.com/stretchr/testify/require"
)

type stubBackend struct {
	windows   []*window.Info
	resizable bool
}

func (s *stubBackend) ListWindows() ([]*window.Info, error) { return s.windows, nil }

func (s *stubBackend) GetFocusedWindow() (*window.Info, error) {
	for _, w := range s.windows {
		if w.Focused {
			return w, nil
		}
	}
	return nil, errors.New("no focused window")
}

func (s *stubBackend) GetWindowInfo(id uint32) (*window.Info, error) {
	for _, w := range s.windows {
		if w.ID == id {
			return w, nil
		}
	}
	return nil, window.ErrWindowNotFound
}

func (s *stubBackend) IsResizable(*window.Info) (bool, error)     { return s.resizable, nil }
func (s *stubBackend) SetSize(*window.Info, uint32, uint32) error { return nil }
func (s *stubBackend) Name() string                               { return "stub" }
func (s *stubBackend) Close() error                               { return nil }

type stubProvider struct {
	png   []byte
	delay time.Duration
	err   error
}

func (p *stubProvider) CaptureViewport(ctx context.Context, win *window.Info) (*screenshot.RawCapture, error) {
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	if p.err != nil {
		return nil, p.err
	}
	return &screenshot.RawCapture{PNG: p.png, Width: 1, Height: 1, Backend: "stub"}, nil
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 128, G: 64, B: 32, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type fixture struct {
	backend  *stubBackend
	provider *stubProvider
	defaults Defaults
	handler  *Handler
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		backend: &stubBackend{
			resizable: true,
			windows: []*window.Info{
				{ID: 1, Title: "Editor", Class: "code"},
				{ID: 2, Title: "Bridge Demo", Class: "demo", Focused: true},
			},
		},
		provider: &stubProvider{png: testPNG(t, 200, 100)},
		defaults: Defaults{Format: "png", Quality: 85, RequestTimeout: 5 * time.Second},
	}
	f.handler = NewHandler(
		window.NewManager(f.backend, nil),
		screenshot.NewPipeline(f.provider, screenshot.StaticSettings(screenshot.Settings{Filter: screenshot.FilterBilinear})),
		func() Defaults { return f.defaults },
	)
	return f
}
