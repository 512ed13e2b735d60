//go:build linux

package capture

import (
	"github.com/bryanchriswhite/FocusBridge/internal/logger"
	"github.com/bryanchriswhite/FocusBridge/internal/screenshot"
)

// NewPlatformProvider builds the capture router for this platform: X11 first,
// then the desktop portal for windows X11 cannot reach
func NewPlatformProvider() (screenshot.Provider, error) {
	log := logger.WithComponent("capture")

	var capturers []Capturer
	if x11, err := NewX11Capturer(); err != nil {
		log.Warn().Err(err).Msg("X11 capture unavailable")
	} else {
		capturers = append(capturers, x11)
	}

	if portal, err := NewPortalCapturer(); err != nil {
		log.Warn().Err(err).Msg("Portal capture unavailable")
	} else {
		capturers = append(capturers, portal)
	}

	return routerOrNil(capturers), nil
}
