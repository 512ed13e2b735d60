//go:build !linux && !windows && !darwin

package window

// NewPlatformBackend returns the window backend for this platform
func NewPlatformBackend(preference string) (Backend, error) {
	if preference == BackendScreen {
		return NewScreenBackend(), nil
	}
	return nil, ErrUnsupportedPlatform
}
