//go:build linux

package capture

import (
	"context"
	"fmt"
	"image"
	_ "image/png"
	"net/url"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bryanchriswhite/FocusBridge/internal/logger"
	"github.com/bryanchriswhite/FocusBridge/internal/window"
	"github.com/godbus/dbus/v5"
)

// Portal D-Bus constants
const (
	portalService   = "org.freedesktop.portal.Desktop"
	portalPath      = "/org/freedesktop/portal/desktop"
	screenshotIface = "org.freedesktop.portal.Screenshot"
	requestIface    = "org.freedesktop.portal.Request"
)

var requestCounter atomic.Uint64

// PortalCapturer captures the screen through xdg-desktop-portal and crops it
// to the window geometry. It serves Wayland sessions where the compositor
// does not expose window contents to X11 clients.
type PortalCapturer struct {
	conn *dbus.Conn
	mu   sync.Mutex
}

// NewPortalCapturer connects to the session bus
func NewPortalCapturer() (*PortalCapturer, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &PortalCapturer{conn: conn}, nil
}

// Name returns the capturer name
func (p *PortalCapturer) Name() string {
	return "portal"
}

// CanCapture reports true for every window; the portal sees the whole screen
func (p *PortalCapturer) CanCapture(win *window.Info) bool {
	return true
}

// Stop closes the bus connection
func (p *PortalCapturer) Stop() error {
	return p.conn.Close()
}

// CaptureWindow takes a non-interactive screenshot and crops it to the
// window's geometry. A window without geometry gets the full screen.
func (p *PortalCapturer) CaptureWindow(ctx context.Context, win *window.Info) (image.Image, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	path, err := p.screenshot(ctx)
	if err != nil {
		return nil, err
	}
	// The portal writes a file on our behalf; it is not the user's
	defer os.Remove(path)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open portal screenshot: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode portal screenshot: %w", err)
	}

	if win.Geometry.Width < 1 || win.Geometry.Height < 1 {
		return img, nil
	}
	return Crop(img, win.Geometry.Rect().Add(img.Bounds().Min)), nil
}

// screenshot calls Screenshot.Screenshot and waits for the Request's
// Response signal, returning the local path of the image. If ctx ends first
// the response is still awaited in the background so the file the portal
// writes gets removed.
func (p *PortalCapturer) screenshot(ctx context.Context) (string, error) {
	log := logger.WithComponent("portal")
	obj := p.conn.Object(portalService, portalPath)

	token := fmt.Sprintf("focusbridge%d_%d", os.Getpid(), requestCounter.Add(1))
	options := map[string]dbus.Variant{
		"handle_token": dbus.MakeVariant(token),
		"interactive":  dbus.MakeVariant(false),
	}

	// Set up response channel BEFORE making the call
	responseChan := make(chan *dbus.Signal, 10)

	matchRule := fmt.Sprintf("type='signal',interface='%s',member='Response'", requestIface)
	if err := p.conn.BusObject().Call("org.freedesktop.DBus.AddMatch", 0, matchRule).Err; err != nil {
		log.Warn().Err(err).Msg("Failed to add match rule")
	}
	p.conn.Signal(responseChan)

	cleanup := func() {
		p.conn.RemoveSignal(responseChan)
		p.conn.BusObject().Call("org.freedesktop.DBus.RemoveMatch", 0, matchRule)
	}

	// The portal derives the request path from our unique name and the token
	var requestPath dbus.ObjectPath
	if names := p.conn.Names(); len(names) > 0 {
		requestPath = requestPathFor(names[0], token)
	}

	var returned dbus.ObjectPath
	if err := obj.CallWithContext(ctx, screenshotIface+".Screenshot", 0, "", options).Store(&returned); err != nil {
		if ctx.Err() != nil && requestPath != "" {
			go discardResponse(requestPath, responseChan, drainTimeout, cleanup)
		} else {
			cleanup()
		}
		return "", fmt.Errorf("Screenshot call failed: %w", err)
	}
	if returned != "" {
		requestPath = returned
	}

	log.Debug().Str("request_path", string(requestPath)).Msg("Waiting for Screenshot response")

	for {
		select {
		case <-ctx.Done():
			go discardResponse(requestPath, responseChan, drainTimeout, cleanup)
			return "", ctx.Err()
		case sig := <-responseChan:
			if sig.Path != requestPath || sig.Name != requestIface+".Response" {
				continue
			}
			cleanup()
			return parseScreenshotResponse(sig.Body)
		}
	}
}

// drainTimeout bounds how long an abandoned request is awaited
const drainTimeout = time.Minute

// discardResponse waits for the Response of an abandoned request and removes
// the screenshot it points at, then runs cleanup
func discardResponse(requestPath dbus.ObjectPath, signals <-chan *dbus.Signal, timeout time.Duration, cleanup func()) {
	defer cleanup()
	log := logger.WithComponent("portal")

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			log.Warn().Str("request_path", string(requestPath)).Msg("No response for abandoned screenshot request")
			return
		case sig := <-signals:
			if sig.Path != requestPath || sig.Name != requestIface+".Response" {
				continue
			}
			path, err := parseScreenshotResponse(sig.Body)
			if err != nil {
				return
			}
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				log.Warn().Err(err).Str("path", path).Msg("Failed to remove abandoned screenshot")
			}
			return
		}
	}
}

// requestPathFor builds the Request object path the portal uses for a
// sender's unique name and handle token
func requestPathFor(uniqueName, token string) dbus.ObjectPath {
	sender := strings.ReplaceAll(strings.TrimPrefix(uniqueName, ":"), ".", "_")
	return dbus.ObjectPath(portalPath + "/request/" + sender + "/" + token)
}

// parseScreenshotResponse extracts the file path from a Response body
// (response code, results dict)
func parseScreenshotResponse(body []interface{}) (string, error) {
	if len(body) < 2 {
		return "", fmt.Errorf("invalid response")
	}

	response, ok := body[0].(uint32)
	if !ok {
		return "", fmt.Errorf("unexpected response code type: %T", body[0])
	}
	if response != 0 {
		return "", fmt.Errorf("portal request denied (code %d)", response)
	}

	results, ok := body[1].(map[string]dbus.Variant)
	if !ok {
		return "", fmt.Errorf("unexpected results type: %T", body[1])
	}

	v, ok := results["uri"]
	if !ok {
		return "", fmt.Errorf("no uri in response")
	}
	raw, ok := v.Value().(string)
	if !ok {
		return "", fmt.Errorf("unexpected uri type: %T", v.Value())
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid screenshot uri %q: %w", raw, err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("unsupported screenshot uri scheme %q", u.Scheme)
	}
	return u.Path, nil
}
