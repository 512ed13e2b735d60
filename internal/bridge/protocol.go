// Package bridge exposes the screenshot pipeline and window control to
// automation clients over a WebSocket command channel with a REST mirror.
package bridge

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Command names accepted on the wire
const (
	CommandPing              = "ping"
	CommandListWindows       = "list_windows"
	CommandCaptureScreenshot = "capture_screenshot"
	CommandResizeWindow      = "resize_window"
)

// Error kinds reported in Response.ErrorKind besides the screenshot kinds
const (
	KindInvalidRequest = "invalid_request"
	KindUnknownCommand = "unknown_command"
	KindWindowNotFound = "window_not_found"
	KindInternal       = "internal"
)

// Request is a single command sent by a client
type Request struct {
	ID      string              `json:"id"`
	Command string              `json:"command"`
	Args    jsoniter.RawMessage `json:"args,omitempty"`
}

// Response answers exactly one Request, matched by ID
type Response struct {
	ID        string      `json:"id"`
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	ErrorKind string      `json:"errorKind,omitempty"`
}

// CaptureArgs are the arguments of capture_screenshot. Omitted fields fall
// back to the configured defaults.
type CaptureArgs struct {
	WindowID string  `json:"windowId,omitempty"`
	Format   string  `json:"format,omitempty" validate:"omitempty,oneof=png jpeg jpg PNG JPEG JPG"`
	Quality  *int    `json:"quality,omitempty" validate:"omitempty,min=0,max=100"`
	MaxWidth *uint32 `json:"maxWidth,omitempty" validate:"omitempty,min=1"`
}

// CaptureResult is the data of a successful capture_screenshot
type CaptureResult struct {
	DataURI string `json:"dataUri"`
	Format  string `json:"format"`
	Window  uint32 `json:"windowId"`
}

// PingResult is the data of ping
type PingResult struct {
	Pong    bool   `json:"pong"`
	Version string `json:"version"`
}
