package analytics

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const wsIdlePingInterval = 30 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server exposes Hub over HTTP: a liveness check, a JSON stats snapshot,
// and a websocket feed of solve events as they complete.
type Server struct {
	hub    *Hub
	router chi.Router
}

// NewServer builds the router. It does not start listening; call
// ListenAndServe (or use Handler with your own http.Server) to do that.
func NewServer(hub *Hub) *Server {
	s := &Server{hub: hub, router: chi.NewRouter()}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/api/stats", s.handleStats)
	s.router.Get("/ws/solve", s.handleWS)

	return s
}

// Handler returns the server's http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe blocks serving HTTP on addr until the server errors out
// or the process is killed.
func (s *Server) ListenAndServe(addr string) error {
	log.Info().Str("addr", addr).Msg("analytics server listening")
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.hub.Snapshot())
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("analytics websocket upgrade failed")
		return
	}
	c := &client{send: make(chan []byte, 16)}
	s.hub.register(c)
	defer s.hub.unregister(c)

	// Drain inbound frames (pings/close) on their own goroutine so a
	// client disconnect is noticed promptly; this connection never reads
	// application messages from the client.
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				conn.Close()
				return
			}
		}
	}()

	if err := writeWithHeartbeat(conn, c.send); err != nil {
		log.Debug().Err(err).Msg("analytics websocket closed")
	}
}

// writeWithHeartbeat drains send to conn, injecting an idle ping whenever
// nothing has been written for wsIdlePingInterval so proxies between the
// driver and a subscriber don't time out a quiet connection.
func writeWithHeartbeat(conn *websocket.Conn, send <-chan []byte) error {
	ticker := time.NewTicker(wsIdlePingInterval)
	defer ticker.Stop()
	lastWrite := time.Now()
	ping, _ := json.Marshal(wsMessage{Type: "ping"})

	for {
		select {
		case msg, ok := <-send:
			if !ok {
				return nil
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}
			lastWrite = time.Now()
		case <-ticker.C:
			if time.Since(lastWrite) < wsIdlePingInterval {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, ping); err != nil {
				return err
			}
			lastWrite = time.Now()
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
