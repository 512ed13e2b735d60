package window

// ScreenBackend exposes the whole screen as a single window. It stands in
// when no window system connection is available, e.g. a Wayland session
// without XWayland, so that screenshots still work through the portal.
type ScreenBackend struct{}

// NewScreenBackend creates a screen backend
func NewScreenBackend() *ScreenBackend {
	return &ScreenBackend{}
}

var screenWindow = Info{
	ID:      0,
	Title:   "Screen",
	Class:   "screen",
	Focused: true,
}

// ListWindows returns the screen pseudo-window
func (s *ScreenBackend) ListWindows() ([]*Info, error) {
	win := screenWindow
	return []*Info{&win}, nil
}

// GetFocusedWindow returns the screen pseudo-window
func (s *ScreenBackend) GetFocusedWindow() (*Info, error) {
	win := screenWindow
	return &win, nil
}

// GetWindowInfo resolves id 0 only
func (s *ScreenBackend) GetWindowInfo(id uint32) (*Info, error) {
	if id != 0 {
		return nil, ErrWindowNotFound
	}
	return s.GetFocusedWindow()
}

func (s *ScreenBackend) IsResizable(*Info) (bool, error) {
	return false, ErrResizeUnsupported
}

func (s *ScreenBackend) SetSize(*Info, uint32, uint32) error {
	return ErrResizeUnsupported
}

func (s *ScreenBackend) Name() string { return "screen" }

func (s *ScreenBackend) Close() error { return nil }
