package bridge

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/bryanchriswhite/FocusBridge/internal/logger"
	"github.com/bryanchriswhite/FocusBridge/internal/screenshot"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// maxMessageSize bounds a single inbound WebSocket message
const maxMessageSize = 1 << 20

// Server represents the bridge HTTP/WebSocket server
type Server struct {
	router   *mux.Router
	handler  *Handler
	upgrader websocket.Upgrader
	http     *http.Server
}

// NewServer creates a new bridge server
func NewServer(handler *Handler) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		handler: handler,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins
			},
		},
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures the routes
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/ws", s.handleWebSocket)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods("GET")
	api.HandleFunc("/windows", s.handleListWindows).Methods("GET")
	api.HandleFunc("/windows/resize", s.handleResize).Methods("POST")
	api.HandleFunc("/screenshot", s.handleScreenshot).Methods("POST")
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.enableCORS(s.router)
}

// Serve accepts connections on ln until Shutdown is called
func (s *Server) Serve(ln net.Listener) error {
	s.http = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.WithComponent("bridge").Info().
		Str("addr", ln.Addr().String()).
		Msg("Bridge server listening")

	if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// enableCORS adds CORS headers
func (s *Server) enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// handleWebSocket serves the command channel. Requests on one connection run
// concurrently; responses are matched by id.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	log := logger.WithComponent("bridge")

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	log.Debug().Str("remote", r.RemoteAddr).Msg("Client connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	var (
		writeMu sync.Mutex
		wg      sync.WaitGroup
	)
	send := func(resp Response) {
		writeMu.Lock()
		defer writeMu.Unlock()
		data, err := json.Marshal(resp)
		if err != nil {
			log.Error().Err(err).Str("id", resp.ID).Msg("Failed to encode response")
			return
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Debug().Err(err).Str("id", resp.ID).Msg("WebSocket write failed")
		}
	}

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Msg("WebSocket read failed")
			}
			break
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var req Request
		if err := json.Unmarshal(data, &req); err != nil {
			send(Response{
				Success:   false,
				Error:     "invalid message: " + err.Error(),
				ErrorKind: KindInvalidRequest,
			})
			continue
		}

		wg.Add(1)
		go func(req Request) {
			defer wg.Done()
			send(s.handler.Handle(ctx, req))
		}(req)
	}

	cancel()
	wg.Wait()
	log.Debug().Str("remote", r.RemoteAddr).Msg("Client disconnected")
}

// REST mirror. Each endpoint runs the same command the WebSocket would.

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeResponse(w, s.handler.Handle(r.Context(), Request{Command: CommandPing}))
}

func (s *Server) handleListWindows(w http.ResponseWriter, r *http.Request) {
	s.writeResponse(w, s.handler.Handle(r.Context(), Request{Command: CommandListWindows}))
}

func (s *Server) handleScreenshot(w http.ResponseWriter, r *http.Request) {
	s.handleBody(w, r, CommandCaptureScreenshot)
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	s.handleBody(w, r, CommandResizeWindow)
}

func (s *Server) handleBody(w http.ResponseWriter, r *http.Request, command string) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxMessageSize))
	if err != nil {
		s.writeResponse(w, Response{Error: err.Error(), ErrorKind: KindInvalidRequest})
		return
	}
	req := Request{
		ID:      r.Header.Get("X-Request-ID"),
		Command: command,
		Args:    body,
	}
	s.writeResponse(w, s.handler.Handle(r.Context(), req))
}

func (s *Server) writeResponse(w http.ResponseWriter, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusFor(resp))
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.WithComponent("bridge").Debug().Err(err).Msg("Failed to write response")
	}
}

// statusFor maps a response to an HTTP status. Soft resize failures are
// successful requests.
func statusFor(resp Response) int {
	if resp.Success {
		return http.StatusOK
	}
	switch resp.ErrorKind {
	case KindInvalidRequest:
		return http.StatusBadRequest
	case KindUnknownCommand, KindWindowNotFound:
		return http.StatusNotFound
	case string(screenshot.KindPlatformUnsupported):
		return http.StatusNotImplemented
	case string(screenshot.KindTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
