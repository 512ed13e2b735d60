package commands

import (
	"errors"
	"fmt"

	"github.com/bryanchriswhite/FocusBridge/internal/bridge"
	"github.com/bryanchriswhite/FocusBridge/internal/capture"
	"github.com/bryanchriswhite/FocusBridge/internal/config"
	"github.com/bryanchriswhite/FocusBridge/internal/logger"
	"github.com/bryanchriswhite/FocusBridge/internal/screenshot"
	"github.com/bryanchriswhite/FocusBridge/internal/window"
)

// app wires the platform backends to the command handler
type app struct {
	windows  *window.Manager
	provider screenshot.Provider
	handler  *bridge.Handler
}

func newApp(configMgr *config.Manager) (*app, error) {
	log := logger.WithComponent("app")

	backend, err := window.NewPlatformBackend(configMgr.Get().Window.Backend)
	switch {
	case errors.Is(err, window.ErrUnsupportedPlatform):
		// Captures then report platform_unsupported instead of failing here
		log.Warn().Err(err).Msg("Using whole-screen window backend")
		backend = window.NewScreenBackend()
	case err != nil:
		return nil, fmt.Errorf("failed to initialize window backend: %w", err)
	}
	windows := window.NewManager(backend, configMgr.WindowOptions)

	provider, err := capture.NewPlatformProvider()
	if err != nil {
		windows.Close()
		return nil, fmt.Errorf("failed to initialize capture: %w", err)
	}
	if provider == nil {
		log.Warn().Msg("No screenshot provider for this platform; captures will fail")
	}

	pipeline := screenshot.NewPipeline(provider, configMgr.ScreenshotSettings)
	handler := bridge.NewHandler(windows, pipeline, func() bridge.Defaults {
		cfg := configMgr.Get()
		return bridge.Defaults{
			Format:         cfg.Screenshot.Format,
			Quality:        cfg.Screenshot.Quality,
			RequestTimeout: cfg.Server.RequestTimeout,
		}
	})

	log.Debug().
		Str("window_backend", backend.Name()).
		Msg("Backends initialized")

	return &app{
		windows:  windows,
		provider: provider,
		handler:  handler,
	}, nil
}

func (r *app) Close() {
	if router, ok := r.provider.(*capture.Router); ok {
		router.Stop()
	}
	r.windows.Close()
}
