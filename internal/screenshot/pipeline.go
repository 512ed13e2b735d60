package screenshot

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/bryanchriswhite/FocusBridge/internal/logger"
	"github.com/bryanchriswhite/FocusBridge/internal/window"
)

// RawCapture is a lossless PNG encoding of a window viewport. Providers
// guarantee Width and Height are at least 1.
type RawCapture struct {
	PNG     []byte
	Width   int
	Height  int
	Backend string
}

// Provider captures the current viewport of a window. Each platform compiles
// in exactly one implementation.
type Provider interface {
	CaptureViewport(ctx context.Context, win *window.Info) (*RawCapture, error)
}

// Options describes the artifact a caller wants back
type Options struct {
	Format Format
	// Quality is only used for FormatJPEG
	Quality int
	// MaxWidth overrides the configured default when non-nil
	MaxWidth *uint32
}

// Pipeline turns a platform capture into a data URI: capture, optional
// downscale, transcode, base64 packaging. Stages run strictly in order.
type Pipeline struct {
	provider Provider
	settings SettingsFunc
}

// NewPipeline creates a pipeline. A nil provider makes every capture fail with
// ErrPlatformUnsupported.
func NewPipeline(provider Provider, settings SettingsFunc) *Pipeline {
	if settings == nil {
		settings = StaticSettings(Settings{Filter: DefaultFilter})
	}
	return &Pipeline{
		provider: provider,
		settings: settings,
	}
}

// Capture runs the whole pipeline for win and returns
// data:<mime>;base64,<payload>. Failures are *Error values.
func (p *Pipeline) Capture(ctx context.Context, win *window.Info, opts Options) (string, error) {
	log := logger.WithComponent("screenshot")

	if p.provider == nil {
		return "", ErrPlatformUnsupported
	}

	raw, err := p.provider.CaptureViewport(ctx, win)
	if err != nil {
		var typed *Error
		if errors.As(err, &typed) {
			return "", err
		}
		return "", CaptureFailed("provider error", err)
	}
	if raw == nil || len(raw.PNG) == 0 {
		return "", CaptureFailed("provider returned no data", nil)
	}

	log.Debug().
		Str("backend", raw.Backend).
		Int("width", raw.Width).
		Int("height", raw.Height).
		Int("bytes", len(raw.PNG)).
		Msg("Viewport captured")

	settings := p.settings()
	data := raw.PNG

	if ceiling, ok := ResolveMaxWidth(opts.MaxWidth, settings.DefaultMaxWidth); ok {
		data, err = MaybeResize(data, ceiling, settings.Filter)
		if err != nil {
			return "", err
		}
		log.Debug().
			Uint32("max_width", ceiling).
			Str("filter", string(settings.Filter)).
			Int("bytes", len(data)).
			Msg("Resize stage complete")
	}

	data, err = Convert(data, opts.Format, opts.Quality)
	if err != nil {
		return "", err
	}

	return DataURI(opts.Format, data), nil
}

// DataURI packages already-encoded bytes with the MIME type of format
func DataURI(format Format, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", format.MIME(), base64.StdEncoding.EncodeToString(data))
}
