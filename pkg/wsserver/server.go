package wsserver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"

	"github.com/gorilla/websocket"
)

// ConnHandler handles one upgraded websocket connection. It is invoked on
// the connection's own goroutine and owns the connection's lifetime.
type ConnHandler func(conn *websocket.Conn)

// Server wraps the websocket listener lifecycle.
type Server struct {
	Addr string

	upgrader websocket.Upgrader
	logger   *log.Logger
}

// New creates a Server listening on addr.
func New(addr string, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		Addr: addr,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Loopback tool; lock the origin down before exposing it.
			},
		},
		logger: logger,
	}
}

// ListenAndServe accepts and upgrades connections until the context is
// cancelled or an error prevents further accepts. A failed upgrade only
// affects that connection.
func (s *Server) ListenAndServe(ctx context.Context, handler ConnHandler) error {
	if handler == nil {
		return errors.New("wsserver: connection handler required")
	}

	listener, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("wsserver: listen %q: %w", s.Addr, err)
	}

	httpServer := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			conn, err := s.upgrader.Upgrade(w, r, nil)
			if err != nil {
				s.logger.Printf("wsserver: upgrade from %s failed: %v", r.RemoteAddr, err)
				return
			}
			s.logger.Printf("wsserver: new connection from %s", conn.RemoteAddr())
			handler(conn)
		}),
	}

	shutdown := make(chan struct{})
	defer close(shutdown)

	go func() {
		select {
		case <-ctx.Done():
			if err := httpServer.Close(); err != nil {
				s.logger.Printf("wsserver: close error: %v", err)
			}
		case <-shutdown:
		}
	}()

	s.logger.Printf("wsserver: listening on %s", listener.Addr())

	err = httpServer.Serve(listener)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
