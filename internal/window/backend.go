package window

import (
	"errors"
	"image"
)

// Info represents information about a window
type Info struct {
	ID       uint32   `json:"id" mapstructure:"id"`
	Title    string   `json:"title" mapstructure:"title"`
	Class    string   `json:"class" mapstructure:"class"`
	PID      int      `json:"pid" mapstructure:"pid"`
	Focused  bool     `json:"focused" mapstructure:"focused"`
	Geometry Geometry `json:"geometry" mapstructure:"geometry"`
	// Wayland marks native Wayland windows, which only the portal can capture
	Wayland bool `json:"wayland,omitempty" mapstructure:"wayland"`
}

// Geometry represents window geometry in physical pixels
type Geometry struct {
	X      int `json:"x" mapstructure:"x"`
	Y      int `json:"y" mapstructure:"y"`
	Width  int `json:"width" mapstructure:"width"`
	Height int `json:"height" mapstructure:"height"`
}

// Rect returns the geometry as an image rectangle
func (g Geometry) Rect() image.Rectangle {
	return image.Rect(g.X, g.Y, g.X+g.Width, g.Y+g.Height)
}

var (
	// ErrUnsupportedPlatform is returned when no window backend exists for the OS
	ErrUnsupportedPlatform = errors.New("window management is not supported on this platform")

	// ErrResizeUnsupported is returned by backends that cannot resize at all
	ErrResizeUnsupported = errors.New("window resizing is not supported by this backend")

	// ErrWindowNotFound is returned when an id names no window
	ErrWindowNotFound = errors.New("window not found")
)

// Backend preferences accepted by NewPlatformBackend
const (
	BackendAuto   = "auto"
	BackendX11    = "x11"
	BackendKWin   = "kwin"
	BackendScreen = "screen"
)

// Backend defines the interface for window discovery and control backends
type Backend interface {
	// ListWindows returns all visible application windows
	ListWindows() ([]*Info, error)

	// GetFocusedWindow returns the currently focused window
	GetFocusedWindow() (*Info, error)

	// GetWindowInfo looks a window up by its native id
	GetWindowInfo(id uint32) (*Info, error)

	// IsResizable reports whether the window accepts size changes
	IsResizable(win *Info) (bool, error)

	// SetSize resizes the window's viewport, in physical pixels
	SetSize(win *Info, width, height uint32) error

	// Name returns the backend name (e.g., "x11", "display")
	Name() string

	// Close releases the connection to the display server
	Close() error
}
