package ws

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Server upgrades HTTP requests into feed subscriptions.
type Server struct {
	hub          *Hub
	logger       *zap.Logger
	pingInterval time.Duration
	writeTimeout time.Duration
	upgrader     websocket.Upgrader
}

// NewServer builds ws server. checkOrigin may be nil to accept any origin.
func NewServer(hub *Hub, pingInterval, writeTimeout time.Duration, checkOrigin func(*http.Request) bool, logger *zap.Logger) *Server {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Server{
		hub:          hub,
		logger:       logger,
		pingInterval: pingInterval,
		writeTimeout: writeTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

// ServeHTTP handles GET /api/ws/calculations.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := NewClient(uuid.NewString(), conn, s.pingInterval, s.writeTimeout, s.logger, s.hub.Remove)
	s.hub.Add(client)
	s.logger.Info("feed subscriber connected", zap.String("client_id", client.ID()))

	go client.Start()
}
