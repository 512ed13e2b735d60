//go:build windows || darwin

package window

import (
	"fmt"

	"github.com/kbinani/screenshot"
)

// DisplayBackend exposes each active display as a window. It is used where
// no native window enumeration is wired in; the primary display is "main".
type DisplayBackend struct{}

// NewPlatformBackend returns the window backend for this platform. Only
// "auto", "display" and "screen" apply here.
func NewPlatformBackend(preference string) (Backend, error) {
	switch preference {
	case "", BackendAuto, "display":
	case BackendScreen:
		return NewScreenBackend(), nil
	default:
		return nil, fmt.Errorf("window backend %q is not available on this platform", preference)
	}
	if screenshot.NumActiveDisplays() <= 0 {
		return nil, fmt.Errorf("no active display found")
	}
	return &DisplayBackend{}, nil
}

// Name returns the backend name
func (b *DisplayBackend) Name() string {
	return "display"
}

// Close is a no-op
func (b *DisplayBackend) Close() error {
	return nil
}

// ListWindows returns one entry per active display
func (b *DisplayBackend) ListWindows() ([]*Info, error) {
	n := screenshot.NumActiveDisplays()
	if n <= 0 {
		return nil, fmt.Errorf("no active display found")
	}

	windows := make([]*Info, 0, n)
	for i := 0; i < n; i++ {
		windows = append(windows, displayInfo(i))
	}
	return windows, nil
}

// GetFocusedWindow returns the primary display
func (b *DisplayBackend) GetFocusedWindow() (*Info, error) {
	return b.GetWindowInfo(0)
}

// GetWindowInfo returns the display with the given index
func (b *DisplayBackend) GetWindowInfo(id uint32) (*Info, error) {
	if int(id) >= screenshot.NumActiveDisplays() {
		return nil, fmt.Errorf("display %d not found", id)
	}
	return displayInfo(int(id)), nil
}

// IsResizable always fails: displays have no size to set
func (b *DisplayBackend) IsResizable(win *Info) (bool, error) {
	return false, ErrResizeUnsupported
}

// SetSize always fails
func (b *DisplayBackend) SetSize(win *Info, width, height uint32) error {
	return ErrResizeUnsupported
}

func displayInfo(i int) *Info {
	bounds := screenshot.GetDisplayBounds(i)
	return &Info{
		ID:      uint32(i),
		Title:   fmt.Sprintf("Display %d", i),
		Class:   fmt.Sprintf("display-%d", i),
		Focused: i == 0,
		Geometry: Geometry{
			X:      bounds.Min.X,
			Y:      bounds.Min.Y,
			Width:  bounds.Dx(),
			Height: bounds.Dy(),
		},
	}
}
