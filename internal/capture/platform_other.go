//go:build !linux && !windows && !darwin

package capture

import "github.com/bryanchriswhite/FocusBridge/internal/screenshot"

// NewPlatformProvider returns no provider; every capture reports
// screenshot.ErrPlatformUnsupported
func NewPlatformProvider() (screenshot.Provider, error) {
	return nil, nil
}
