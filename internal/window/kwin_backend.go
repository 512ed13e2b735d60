//go:build linux

package window

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/bryanchriswhite/FocusBridge/internal/logger"
	"github.com/godbus/dbus/v5"
)

// KWin D-Bus constants
const (
	kwinService       = "org.kde.KWin"
	kwinPath          = "/KWin"
	kwinInterface     = "org.kde.KWin"
	windowsRunnerPath = "/WindowsRunner"
	krunnerInterface  = "org.kde.krunner1"
)

// ErrFocusUnknown is returned by backends that cannot tell which window has
// focus; "main" then needs window.main_pattern
var ErrFocusUnknown = errors.New("focused window is not exposed by this backend; set window.main_pattern")

// KWinBackend lists native Wayland windows on KDE Plasma through KWin's
// D-Bus interface. Windows carry KWin geometry so the portal capturer can
// crop them out of a screen capture.
type KWinBackend struct {
	conn *dbus.Conn

	mu    sync.RWMutex
	uuids map[uint32]string
}

// NewKWinBackend connects to the session bus and checks that KWin is on it
func NewKWinBackend() (*KWinBackend, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	var hasOwner bool
	if err := conn.BusObject().Call("org.freedesktop.DBus.NameHasOwner", 0, kwinService).Store(&hasOwner); err != nil || !hasOwner {
		conn.Close()
		return nil, fmt.Errorf("%s is not on the session bus", kwinService)
	}

	return &KWinBackend{
		conn:  conn,
		uuids: make(map[uint32]string),
	}, nil
}

// Name returns the backend name
func (b *KWinBackend) Name() string {
	return "kwin"
}

// Close closes the bus connection
func (b *KWinBackend) Close() error {
	return b.conn.Close()
}

// ListWindows enumerates windows with the KRunner WindowsRunner plugin
func (b *KWinBackend) ListWindows() ([]*Info, error) {
	log := logger.WithComponent("kwin-backend")

	// Match returns a(sssida{sv}): id, text, iconName, type, relevance, properties
	var matches [][]interface{}
	obj := b.conn.Object(kwinService, windowsRunnerPath)
	if err := obj.Call(krunnerInterface+".Match", 0, "").Store(&matches); err != nil {
		return nil, fmt.Errorf("failed to call Match: %w", err)
	}

	uuids := make(map[uint32]string)
	windows := make([]*Info, 0, len(matches))
	for _, match := range matches {
		if len(match) < 3 {
			continue
		}
		rawID, _ := match[0].(string)
		uuid := extractUUID(rawID)
		if uuid == "" {
			continue
		}

		info, err := b.windowInfo(uuid)
		if err != nil {
			log.Debug().Err(err).Str("uuid", uuid).Msg("Skipping window")
			continue
		}
		if info.Title == "" {
			info.Title, _ = match[1].(string)
		}
		if info.Class == "" {
			info.Class, _ = match[2].(string)
		}
		if info.Title == "" && info.Class == "" {
			continue
		}

		uuids[info.ID] = uuid
		windows = append(windows, info)
	}

	b.mu.Lock()
	b.uuids = uuids
	b.mu.Unlock()

	return windows, nil
}

// GetFocusedWindow is not supported: KWin 6 does not expose the active
// window over D-Bus
func (b *KWinBackend) GetFocusedWindow() (*Info, error) {
	return nil, ErrFocusUnknown
}

// GetWindowInfo looks a window up by the id ListWindows assigned it
func (b *KWinBackend) GetWindowInfo(id uint32) (*Info, error) {
	b.mu.RLock()
	uuid, ok := b.uuids[id]
	b.mu.RUnlock()
	if !ok {
		// Ids are only known after a listing
		if _, err := b.ListWindows(); err != nil {
			return nil, err
		}
		b.mu.RLock()
		uuid, ok = b.uuids[id]
		b.mu.RUnlock()
		if !ok {
			return nil, ErrWindowNotFound
		}
	}
	return b.windowInfo(uuid)
}

// IsResizable reports that KWin windows cannot be resized from here
func (b *KWinBackend) IsResizable(*Info) (bool, error) {
	return false, ErrResizeUnsupported
}

// SetSize always fails
func (b *KWinBackend) SetSize(*Info, uint32, uint32) error {
	return ErrResizeUnsupported
}

// windowInfo calls KWin.getWindowInfo for a window uuid
func (b *KWinBackend) windowInfo(uuid string) (*Info, error) {
	var props map[string]dbus.Variant
	obj := b.conn.Object(kwinService, kwinPath)
	if err := obj.Call(kwinInterface+".getWindowInfo", 0, uuid).Store(&props); err != nil {
		return nil, fmt.Errorf("getWindowInfo failed: %w", err)
	}
	if len(props) == 0 {
		return nil, ErrWindowNotFound
	}
	return kwinInfo(uuid, props), nil
}

// kwinInfo converts a getWindowInfo result
func kwinInfo(uuid string, props map[string]dbus.Variant) *Info {
	info := &Info{
		ID:      hashStringToUint32(uuid),
		Wayland: true,
		Geometry: Geometry{
			X:      variantInt(props["x"]),
			Y:      variantInt(props["y"]),
			Width:  variantInt(props["width"]),
			Height: variantInt(props["height"]),
		},
	}
	info.Title, _ = props["caption"].Value().(string)
	info.Class, _ = props["resourceClass"].Value().(string)
	if info.Class == "" {
		info.Class, _ = props["resourceName"].Value().(string)
	}
	return info
}

// extractUUID pulls the window uuid out of a runner match id such as
// "0_{dc80ff04-3245-4d9b-b9a8-1582640d39e1}"
func extractUUID(rawID string) string {
	start := strings.Index(rawID, "{")
	end := strings.Index(rawID, "}")
	if start < 0 || end <= start {
		return ""
	}
	return rawID[start : end+1]
}

// variantInt reads a numeric variant; KWin reports geometry as doubles
func variantInt(v dbus.Variant) int {
	switch n := v.Value().(type) {
	case float64:
		return int(n)
	case int32:
		return int(n)
	case uint32:
		return int(n)
	case int64:
		return int(n)
	default:
		return 0
	}
}

// hashStringToUint32 maps a uuid to a stable numeric window id (djb2)
func hashStringToUint32(s string) uint32 {
	var hash uint32 = 5381
	for i := 0; i < len(s); i++ {
		hash = ((hash << 5) + hash) + uint32(s[i])
	}
	return hash
}
