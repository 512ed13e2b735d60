//go:build windows || darwin

package capture

import (
	"context"
	"fmt"
	"image"

	"github.com/bryanchriswhite/FocusBridge/internal/screenshot"
	"github.com/bryanchriswhite/FocusBridge/internal/window"
	kbscreenshot "github.com/kbinani/screenshot"
)

// DisplayCapturer captures screen rectangles through the OS screenshot API
type DisplayCapturer struct{}

// NewDisplayCapturer creates a display capturer
func NewDisplayCapturer() *DisplayCapturer {
	return &DisplayCapturer{}
}

// Name returns the capturer name
func (d *DisplayCapturer) Name() string {
	return "display"
}

// CanCapture requires a geometry to capture
func (d *DisplayCapturer) CanCapture(win *window.Info) bool {
	return win.Geometry.Width > 0 && win.Geometry.Height > 0
}

// CaptureWindow captures the window's rectangle of the screen
func (d *DisplayCapturer) CaptureWindow(ctx context.Context, win *window.Info) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := kbscreenshot.CaptureRect(win.Geometry.Rect())
	if err != nil {
		return nil, fmt.Errorf("failed to capture %v: %w", win.Geometry.Rect(), err)
	}
	return img, nil
}

// Stop is a no-op
func (d *DisplayCapturer) Stop() error {
	return nil
}

// NewPlatformProvider builds the capture router for this platform
func NewPlatformProvider() (screenshot.Provider, error) {
	return NewRouter(NewDisplayCapturer()), nil
}
