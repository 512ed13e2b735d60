package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bryanchriswhite/FocusBridge/internal/logger"
	"github.com/bryanchriswhite/FocusBridge/internal/screenshot"
	"github.com/bryanchriswhite/FocusBridge/internal/window"
)

// Router routes capture requests to the first capturer able to handle the
// window. It implements screenshot.Provider.
type Router struct {
	capturers []Capturer
	mu        sync.RWMutex
}

// NewRouter creates a capture router; capturers are tried in order
func NewRouter(capturers ...Capturer) *Router {
	return &Router{capturers: capturers}
}

// routerOrNil returns nil when there is nothing to route to, so the pipeline
// reports the platform as unsupported instead of failing every capture
func routerOrNil(capturers []Capturer) screenshot.Provider {
	if len(capturers) == 0 {
		return nil
	}
	return NewRouter(capturers...)
}

// Capturers returns the names of the registered capturers
func (r *Router) Capturers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.capturers))
	for _, c := range r.capturers {
		names = append(names, c.Name())
	}
	return names
}

// CaptureViewport captures the window with the first capturer that accepts
// it. There is no fallback to later capturers on failure.
func (r *Router) CaptureViewport(ctx context.Context, win *window.Info) (*screenshot.RawCapture, error) {
	if win == nil {
		return nil, screenshot.CaptureFailed("no window given", nil)
	}

	r.mu.RLock()
	capturers := r.capturers
	r.mu.RUnlock()

	log := logger.WithComponent("capture-router")

	for _, c := range capturers {
		if !c.CanCapture(win) {
			continue
		}

		log.Debug().
			Uint32("id", win.ID).
			Str("class", win.Class).
			Str("capturer", c.Name()).
			Msg("Capturing window")

		img, err := c.CaptureWindow(ctx, win)
		if err != nil {
			var typed *screenshot.Error
			if errors.As(err, &typed) {
				return nil, err
			}
			return nil, screenshot.CaptureFailed(c.Name(), err)
		}
		return EncodeRaw(img, c.Name())
	}

	return nil, screenshot.CaptureFailed(
		fmt.Sprintf("no capturer available for window %s (id=%d)", win.Class, win.ID), nil)
}

// Stop stops all capturers
func (r *Router) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for _, c := range r.capturers {
		if err := c.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.Name(), err))
		}
	}
	r.capturers = nil
	return errors.Join(errs...)
}
