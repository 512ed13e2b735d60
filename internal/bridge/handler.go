package bridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bryanchriswhite/FocusBridge/internal/logger"
	"github.com/bryanchriswhite/FocusBridge/internal/screenshot"
	"github.com/bryanchriswhite/FocusBridge/internal/window"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Version is reported by ping
var Version = "dev"

// Defaults are the request defaults taken from configuration
type Defaults struct {
	Format         string
	Quality        int
	RequestTimeout time.Duration
}

// DefaultsFunc returns the current defaults; it is read per request
type DefaultsFunc func() Defaults

// Handler executes bridge commands. It is shared by the WebSocket and REST
// front ends.
type Handler struct {
	windows  *window.Manager
	pipeline *screenshot.Pipeline
	defaults DefaultsFunc
	validate *validator.Validate
}

// NewHandler creates a command handler
func NewHandler(windows *window.Manager, pipeline *screenshot.Pipeline, defaults DefaultsFunc) *Handler {
	if defaults == nil {
		defaults = func() Defaults {
			return Defaults{Format: "png", Quality: 85, RequestTimeout: 30 * time.Second}
		}
	}
	return &Handler{
		windows:  windows,
		pipeline: pipeline,
		defaults: defaults,
		validate: validator.New(),
	}
}

// commandError carries the wire error kind of a failed command
type commandError struct {
	kind string
	err  error
}

func (e *commandError) Error() string { return e.err.Error() }
func (e *commandError) Unwrap() error { return e.err }

func invalidRequest(format string, args ...interface{}) error {
	return &commandError{kind: KindInvalidRequest, err: fmt.Errorf(format, args...)}
}

// Handle runs one request under the configured deadline and always returns a
// response carrying the request's id
func (h *Handler) Handle(ctx context.Context, req Request) Response {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	log := logger.WithComponent("bridge")

	timeout := h.defaults().RequestTimeout
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	data, err := h.runWithDeadline(ctx, req)

	event := log.Debug()
	if err != nil {
		event = log.Warn().Err(err)
	}
	event.
		Str("id", req.ID).
		Str("command", req.Command).
		Dur("elapsed", time.Since(start)).
		Msg("Command handled")

	if err != nil {
		return Response{
			ID:        req.ID,
			Success:   false,
			Error:     err.Error(),
			ErrorKind: errorKind(err),
		}
	}
	return Response{ID: req.ID, Success: true, Data: data}
}

// Call runs command with args encoded the way the wire carries them
func (h *Handler) Call(ctx context.Context, command string, args interface{}) Response {
	raw, err := json.Marshal(args)
	if err != nil {
		return Response{ID: uuid.NewString(), Error: err.Error(), ErrorKind: KindInvalidRequest}
	}
	return h.Handle(ctx, Request{Command: command, Args: raw})
}

// runWithDeadline dispatches the command and gives up when ctx expires. The
// pipeline itself is not cancellable, so a late result is dropped.
func (h *Handler) runWithDeadline(ctx context.Context, req Request) (interface{}, error) {
	type result struct {
		data interface{}
		err  error
	}
	done := make(chan result, 1)

	go func() {
		data, err := h.dispatch(ctx, req)
		done <- result{data, err}
	}()

	select {
	case r := <-done:
		return r.data, r.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, screenshot.Timeout(ctx.Err())
		}
		return nil, &commandError{kind: KindInternal, err: ctx.Err()}
	}
}

func (h *Handler) dispatch(ctx context.Context, req Request) (interface{}, error) {
	switch req.Command {
	case CommandPing:
		return PingResult{Pong: true, Version: Version}, nil
	case CommandListWindows:
		return h.ListWindows()
	case CommandCaptureScreenshot:
		var args CaptureArgs
		if err := decodeArgs(req.Args, &args); err != nil {
			return nil, err
		}
		return h.Capture(ctx, args)
	case CommandResizeWindow:
		var params window.ResizeParams
		if err := decodeArgs(req.Args, &params); err != nil {
			return nil, err
		}
		return h.Resize(params), nil
	case "":
		return nil, invalidRequest("missing command")
	default:
		return nil, &commandError{kind: KindUnknownCommand, err: fmt.Errorf("unknown command: %s", req.Command)}
	}
}

func decodeArgs(raw []byte, v interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return invalidRequest("invalid args: %v", err)
	}
	return nil
}

// ListWindows lists the visible windows
func (h *Handler) ListWindows() ([]*window.Info, error) {
	windows, err := h.windows.ListWindows()
	if err != nil {
		return nil, &commandError{kind: KindInternal, err: fmt.Errorf("failed to list windows: %w", err)}
	}
	return windows, nil
}

// Capture resolves the window and runs the screenshot pipeline
func (h *Handler) Capture(ctx context.Context, args CaptureArgs) (*CaptureResult, error) {
	if err := h.validate.Struct(args); err != nil {
		return nil, invalidRequest("invalid args: %v", err)
	}

	defaults := h.defaults()
	formatName := args.Format
	if formatName == "" {
		formatName = defaults.Format
	}
	format, err := screenshot.ParseFormat(formatName)
	if err != nil {
		return nil, invalidRequest("%v", err)
	}
	quality := defaults.Quality
	if args.Quality != nil {
		quality = *args.Quality
	}

	win, err := h.windows.Resolve(args.WindowID)
	if err != nil {
		return nil, &commandError{kind: KindWindowNotFound, err: err}
	}

	uri, err := h.pipeline.Capture(ctx, win, screenshot.Options{
		Format:   format,
		Quality:  quality,
		MaxWidth: args.MaxWidth,
	})
	if err != nil {
		return nil, err
	}

	return &CaptureResult{
		DataURI: uri,
		Format:  string(format),
		Window:  win.ID,
	}, nil
}

// Resize resizes a window; failures are part of the result
func (h *Handler) Resize(params window.ResizeParams) window.ResizeResult {
	return h.windows.Resize(params)
}

func errorKind(err error) string {
	if kind := screenshot.KindOf(err); kind != "" {
		return string(kind)
	}
	var cmdErr *commandError
	if errors.As(err, &cmdErr) {
		return cmdErr.kind
	}
	return KindInternal
}
