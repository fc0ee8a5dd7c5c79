// Package ws exposes the realtime engine over a websocket endpoint.
// The transport is deliberately thin: it decodes frames, feeds the
// service, and writes back whatever lands in the connection's sink.
package ws

import (
	"devhub/domain"
	"devhub/services"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type Server struct {
	log        *slog.Logger
	service    services.IRealtimeService
	upgrader   websocket.Upgrader
	validate   *validator.Validate
	bufferSize int
}

func NewServer(log *slog.Logger, service services.IRealtimeService, connectionBufferSize int) *Server {
	return &Server{
		log:     log,
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Clients live on other origins (editor served separately).
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		validate:   validator.New(),
		bufferSize: connectionBufferSize,
	}
}

// Handler returns the HTTP surface of the realtime layer.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleSocket)
	return mux
}

// handleSocket upgrades the connection and runs its pumps. The
// connection starts unbound: until a join frame arrives, room-scoped
// events from it are discarded by the engine.
func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	id := domain.ConnectionID(uuid.NewString())
	c := newClient(id, conn, NewConnSink(s.bufferSize), s.service, s.validate, s.log)
	s.log.Debug("connection opened", "connection_id", id, "remote", r.RemoteAddr)

	go c.writePump()
	c.readPump()
}
