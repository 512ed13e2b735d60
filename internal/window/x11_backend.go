//go:build linux

package window

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/bryanchriswhite/FocusBridge/internal/logger"
)

// WM_SIZE_HINTS flags, see ICCCM 4.1.2.3
const (
	sizeHintPMinSize = 1 << 4
	sizeHintPMaxSize = 1 << 5
	sizeHintsLength  = 18
)

// X11Backend implements the Backend interface using X11
type X11Backend struct {
	conn   *xgb.Conn
	root   xproto.Window
	screen *xproto.ScreenInfo
	mu     sync.Mutex
	atoms  map[string]xproto.Atom
}

// NewPlatformBackend returns the window backend for this platform. With
// "auto" X11 is tried first; a Wayland session without an X server gets
// KWin when it is on the bus and the screen backend otherwise.
func NewPlatformBackend(preference string) (Backend, error) {
	log := logger.WithComponent("window")

	switch preference {
	case BackendX11:
		return NewX11Backend()
	case BackendKWin:
		return NewKWinBackend()
	case BackendScreen:
		return NewScreenBackend(), nil
	case "", BackendAuto:
	default:
		return nil, fmt.Errorf("unknown window backend %q", preference)
	}

	b, err := NewX11Backend()
	if err == nil {
		return b, nil
	}
	if os.Getenv("WAYLAND_DISPLAY") == "" {
		return nil, err
	}

	log.Debug().Err(err).Msg("No X server reachable")
	if kwin, kerr := NewKWinBackend(); kerr == nil {
		log.Info().Msg("Using KWin window backend")
		return kwin, nil
	}

	log.Warn().Msg("No window backend reachable, falling back to whole-screen capture")
	return NewScreenBackend(), nil
}

// NewX11Backend creates a new X11 backend
func NewX11Backend() (*X11Backend, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	setup := xproto.Setup(conn)
	screen := setup.DefaultScreen(conn)

	return &X11Backend{
		conn:   conn,
		root:   screen.Root,
		screen: screen,
		atoms:  make(map[string]xproto.Atom),
	}, nil
}

// Close closes the X11 connection
func (b *X11Backend) Close() error {
	b.conn.Close()
	return nil
}

// Name returns the backend name
func (b *X11Backend) Name() string {
	return "x11"
}

// Conn returns the X11 connection so the capturer can share it
func (b *X11Backend) Conn() *xgb.Conn {
	return b.conn
}

// ListWindows returns all visible windows using EWMH _NET_CLIENT_LIST with QueryTree fallback
func (b *X11Backend) ListWindows() ([]*Info, error) {
	log := logger.WithComponent("x11-backend")

	windows, err := b.listWindowsEWMH()
	if err == nil && len(windows) > 0 {
		log.Debug().Int("count", len(windows)).Msg("ListWindows: using EWMH _NET_CLIENT_LIST")
		return windows, nil
	}
	if err != nil {
		log.Debug().Err(err).Msg("ListWindows: EWMH failed, falling back to QueryTree")
	}

	windows, err = b.listWindowsQueryTree()
	if err != nil {
		return nil, err
	}
	log.Debug().Int("count", len(windows)).Msg("ListWindows: using QueryTree fallback")
	return windows, nil
}

// listWindowsEWMH gets windows from _NET_CLIENT_LIST (EWMH standard)
func (b *X11Backend) listWindowsEWMH() ([]*Info, error) {
	clientListAtom, err := b.getAtom("_NET_CLIENT_LIST")
	if err != nil {
		return nil, fmt.Errorf("failed to get _NET_CLIENT_LIST atom: %w", err)
	}

	reply, err := xproto.GetProperty(
		b.conn,
		false,
		b.root,
		clientListAtom,
		xproto.GetPropertyTypeAny,
		0,
		(1<<32)-1,
	).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get _NET_CLIENT_LIST property: %w", err)
	}
	if reply.ValueLen == 0 {
		return nil, fmt.Errorf("_NET_CLIENT_LIST is empty")
	}

	focused := b.activeWindow()
	windows := make([]*Info, 0, len(reply.Value)/4)
	for i := 0; i+4 <= len(reply.Value); i += 4 {
		winID := xproto.Window(xgb.Get32(reply.Value[i:]))

		info, err := b.getWindowInfo(winID)
		if err != nil {
			continue
		}
		if info.Title == "" && info.Class == "" {
			continue
		}

		info.Focused = winID == focused
		windows = append(windows, info)
	}

	return windows, nil
}

// listWindowsQueryTree gets windows by querying root window children
func (b *X11Backend) listWindowsQueryTree() ([]*Info, error) {
	tree, err := xproto.QueryTree(b.conn, b.root).Reply()
	if err != nil {
		return nil, err
	}

	focused := b.activeWindow()
	windows := make([]*Info, 0)
	for _, child := range tree.Children {
		info, err := b.getWindowInfo(child)
		if err != nil {
			continue
		}
		if info.Title == "" && info.Class == "" {
			continue
		}

		info.Focused = child == focused
		windows = append(windows, info)
	}

	return windows, nil
}

// GetFocusedWindow returns the currently focused window. _NET_ACTIVE_WINDOW
// names the client window; the input focus may be one of its children.
func (b *X11Backend) GetFocusedWindow() (*Info, error) {
	if active := b.activeWindow(); active != 0 {
		if info, err := b.getWindowInfo(active); err == nil {
			info.Focused = true
			return info, nil
		}
	}

	focusReply, err := xproto.GetInputFocus(b.conn).Reply()
	if err != nil {
		return nil, err
	}

	info, err := b.getWindowInfo(focusReply.Focus)
	if err != nil {
		return nil, err
	}
	info.Focused = true
	return info, nil
}

// GetWindowInfo looks a window up by its X11 id
func (b *X11Backend) GetWindowInfo(id uint32) (*Info, error) {
	return b.getWindowInfo(xproto.Window(id))
}

// IsResizable reads WM_NORMAL_HINTS; equal min and max sizes mean the
// client asked for a fixed size
func (b *X11Backend) IsResizable(win *Info) (bool, error) {
	reply, err := xproto.GetProperty(
		b.conn,
		false,
		xproto.Window(win.ID),
		xproto.AtomWmNormalHints,
		xproto.AtomWmSizeHints,
		0,
		sizeHintsLength,
	).Reply()
	if err != nil {
		return false, fmt.Errorf("failed to get WM_NORMAL_HINTS: %w", err)
	}

	if len(reply.Value) < 9*4 {
		// No hints: the window manager imposes no constraint
		return true, nil
	}

	hint := func(i int) uint32 { return xgb.Get32(reply.Value[i*4:]) }
	flags := hint(0)
	if flags&sizeHintPMinSize == 0 || flags&sizeHintPMaxSize == 0 {
		return true, nil
	}

	minW, minH, maxW, maxH := hint(5), hint(6), hint(7), hint(8)
	fixed := maxW > 0 && maxH > 0 && minW == maxW && minH == maxH
	return !fixed, nil
}

// SetSize asks the window manager to resize the client window
func (b *X11Backend) SetSize(win *Info, width, height uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	err := xproto.ConfigureWindowChecked(
		b.conn,
		xproto.Window(win.ID),
		xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{width, height},
	).Check()
	if err != nil {
		return fmt.Errorf("ConfigureWindow failed: %w", err)
	}
	return nil
}

// activeWindow reads _NET_ACTIVE_WINDOW from the root window, 0 if unset
func (b *X11Backend) activeWindow() xproto.Window {
	atom, err := b.getAtom("_NET_ACTIVE_WINDOW")
	if err != nil {
		return 0
	}

	reply, err := xproto.GetProperty(
		b.conn,
		false,
		b.root,
		atom,
		xproto.AtomWindow,
		0,
		1,
	).Reply()
	if err != nil || len(reply.Value) < 4 {
		return 0
	}
	return xproto.Window(xgb.Get32(reply.Value))
}

// getWindowInfo retrieves information about a window. A window whose geometry
// cannot be read does not exist (anymore).
func (b *X11Backend) getWindowInfo(win xproto.Window) (*Info, error) {
	geom, err := xproto.GetGeometry(b.conn, xproto.Drawable(win)).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get geometry of window %d: %w", win, err)
	}

	info := &Info{
		ID: uint32(win),
		Geometry: Geometry{
			X:      int(geom.X),
			Y:      int(geom.Y),
			Width:  int(geom.Width),
			Height: int(geom.Height),
		},
	}

	// Root-relative position; GetGeometry is relative to the parent (the
	// window manager frame for reparented clients)
	if coords, err := xproto.TranslateCoordinates(b.conn, win, b.root, 0, 0).Reply(); err == nil {
		info.Geometry.X = int(coords.DstX)
		info.Geometry.Y = int(coords.DstY)
	}

	if title, err := b.getProperty(win, "_NET_WM_NAME"); err == nil {
		info.Title = title
	}
	if info.Title == "" {
		if title, err := b.getProperty(win, "WM_NAME"); err == nil {
			info.Title = title
		}
	}

	// WM_CLASS format is: instance\0class\0 (two null-terminated strings)
	if classRaw, err := b.getProperty(win, "WM_CLASS"); err == nil {
		parts := strings.Split(classRaw, "\x00")
		if len(parts) >= 2 && parts[1] != "" {
			info.Class = parts[1]
		} else if len(parts) >= 1 && parts[0] != "" {
			info.Class = parts[0]
		}
	}

	if pidAtom, err := b.getAtom("_NET_WM_PID"); err == nil {
		pidReply, err := xproto.GetProperty(
			b.conn,
			false,
			win,
			pidAtom,
			xproto.AtomCardinal,
			0,
			1,
		).Reply()
		if err == nil && len(pidReply.Value) >= 4 {
			info.PID = int(xgb.Get32(pidReply.Value))
		}
	}

	return info, nil
}

// getAtom gets an atom ID by name, caching the answer
func (b *X11Backend) getAtom(name string) (xproto.Atom, error) {
	b.mu.Lock()
	atom, ok := b.atoms[name]
	b.mu.Unlock()
	if ok {
		return atom, nil
	}

	reply, err := xproto.InternAtom(b.conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, err
	}

	b.mu.Lock()
	b.atoms[name] = reply.Atom
	b.mu.Unlock()
	return reply.Atom, nil
}

// getProperty gets a property value as a string
func (b *X11Backend) getProperty(win xproto.Window, name string) (string, error) {
	atom, err := b.getAtom(name)
	if err != nil {
		return "", err
	}

	reply, err := xproto.GetProperty(
		b.conn,
		false,
		win,
		atom,
		xproto.GetPropertyTypeAny,
		0,
		(1<<32)-1,
	).Reply()
	if err != nil {
		return "", err
	}

	if reply.ValueLen == 0 {
		return "", fmt.Errorf("empty property")
	}

	return string(reply.Value), nil
}
