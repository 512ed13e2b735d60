package window

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/bryanchriswhite/FocusBridge/internal/logger"
)

// MainWindowID is the identifier that resolves to the primary window
const MainWindowID = "main"

// Options tunes window resolution and resizing
type Options struct {
	// MainPattern is a regex matched against class and title to pick the
	// primary window. Empty means the focused window.
	MainPattern string
	// ScaleFactor converts logical pixels to physical ones
	ScaleFactor float64
}

// OptionsFunc returns the current options; it is read on every call
type OptionsFunc func() Options

// ResizeParams are the parameters for resizing a window
type ResizeParams struct {
	Width    uint32 `json:"width"`
	Height   uint32 `json:"height"`
	WindowID string `json:"windowId,omitempty"`
	// Logical selects logical (true, the default) or physical pixels
	Logical *bool `json:"logical,omitempty"`
}

// ResizeResult is the outcome of a resize. Failures are reported here rather
// than as errors: a fixed-size window is an expected answer.
type ResizeResult struct {
	Success     bool   `json:"success"`
	WindowLabel string `json:"windowLabel"`
	Width       uint32 `json:"width"`
	Height      uint32 `json:"height"`
	Logical     bool   `json:"logical"`
	Error       string `json:"error,omitempty"`
}

// Manager resolves window identifiers and applies resize requests on top of
// a platform Backend
type Manager struct {
	backend Backend
	options OptionsFunc
}

// NewManager creates a new window manager
func NewManager(backend Backend, options OptionsFunc) *Manager {
	if options == nil {
		options = func() Options { return Options{ScaleFactor: 1} }
	}
	return &Manager{
		backend: backend,
		options: options,
	}
}

// Backend returns the underlying platform backend
func (m *Manager) Backend() Backend {
	return m.backend
}

// Close closes the backend connection
func (m *Manager) Close() error {
	return m.backend.Close()
}

// ListWindows returns all visible windows
func (m *Manager) ListWindows() ([]*Info, error) {
	return m.backend.ListWindows()
}

// Resolve turns an optional identifier into a window. "" and "main" resolve
// to the primary window, numeric ids (decimal or 0x-prefixed hex) are native
// window ids, anything else must equal a window's class or title.
func (m *Manager) Resolve(id string) (*Info, error) {
	id = strings.TrimSpace(id)
	if id == "" || id == MainWindowID {
		return m.resolveMain()
	}

	if n, err := strconv.ParseUint(id, 0, 32); err == nil {
		if info, err := m.backend.GetWindowInfo(uint32(n)); err == nil {
			return info, nil
		}
	}

	windows, err := m.backend.ListWindows()
	if err != nil {
		return nil, fmt.Errorf("failed to list windows: %w", err)
	}
	for _, win := range windows {
		if win.Class == id || win.Title == id {
			return win, nil
		}
	}

	return nil, fmt.Errorf("window not found: %s", id)
}

func (m *Manager) resolveMain() (*Info, error) {
	pattern := m.options().MainPattern
	if pattern == "" {
		win, err := m.backend.GetFocusedWindow()
		if err != nil {
			return nil, fmt.Errorf("failed to get focused window: %w", err)
		}
		return win, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid main window pattern %q: %w", pattern, err)
	}

	windows, err := m.backend.ListWindows()
	if err != nil {
		return nil, fmt.Errorf("failed to list windows: %w", err)
	}
	for _, win := range windows {
		if re.MatchString(win.Class) || re.MatchString(win.Title) {
			return win, nil
		}
	}

	return nil, fmt.Errorf("window not found: no window matches main pattern %q", pattern)
}

// Resize resizes a window. It never returns an error; every failure is
// reported through ResizeResult.Success and ResizeResult.Error.
func (m *Manager) Resize(params ResizeParams) ResizeResult {
	log := logger.WithComponent("window-manager")

	label := params.WindowID
	if label == "" {
		label = MainWindowID
	}
	logical := true
	if params.Logical != nil {
		logical = *params.Logical
	}

	result := ResizeResult{
		WindowLabel: label,
		Width:       params.Width,
		Height:      params.Height,
		Logical:     logical,
	}
	fail := func(msg string) ResizeResult {
		log.Debug().
			Str("window", label).
			Str("error", msg).
			Msg("Resize rejected")
		result.Error = msg
		return result
	}

	if params.Width < 1 || params.Height < 1 {
		return fail("width and height must be at least 1")
	}

	win, err := m.Resolve(params.WindowID)
	if err != nil {
		return fail(err.Error())
	}

	resizable, err := m.backend.IsResizable(win)
	switch {
	case errors.Is(err, ErrResizeUnsupported):
		return fail(err.Error())
	case err != nil:
		// Unknown constraints: let the display server decide
		log.Warn().Err(err).Uint32("window_id", win.ID).Msg("Failed to read size constraints")
		resizable = true
	}
	if !resizable {
		return fail("Window is not resizable")
	}

	width, height := params.Width, params.Height
	if logical {
		width, height = m.toPhysical(width), m.toPhysical(height)
	}

	if err := m.backend.SetSize(win, width, height); err != nil {
		return fail(fmt.Sprintf("Failed to resize window: %v", err))
	}

	log.Info().
		Uint32("window_id", win.ID).
		Uint32("width", width).
		Uint32("height", height).
		Bool("logical", logical).
		Msg("Window resized")

	result.Success = true
	return result
}

func (m *Manager) toPhysical(v uint32) uint32 {
	scale := m.options().ScaleFactor
	if scale <= 0 {
		scale = 1
	}
	p := uint32(math.Round(float64(v) * scale))
	if p < 1 {
		p = 1
	}
	return p
}
