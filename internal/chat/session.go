package chat

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Wire is the minimal surface of a websocket connection a session needs.
// *websocket.Conn satisfies it.
type Wire interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// HandleSession owns one accepted connection: it performs the display-name
// handshake, registers the session with the hub, and runs the read and write
// loops until the connection dies. It returns when the session is closed.
func HandleSession(hub *Hub, wire Wire, logger *log.Logger) {
	newSession(hub, wire, logger).run()
}

// Session is the server-side state for one accepted connection. It moves
// from unbound to bound when the handshake supplies a display name, and to
// closed on the first read or write failure.
type Session struct {
	id   uuid.UUID
	name string

	wire   Wire
	hub    *Hub
	logger *log.Logger

	outbox chan Envelope
	done   chan struct{}

	workers sync.WaitGroup
	cleanup sync.Once
}

func newSession(hub *Hub, wire Wire, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.Default()
	}
	return &Session{
		id:     uuid.New(),
		wire:   wire,
		hub:    hub,
		logger: logger,
		outbox: make(chan Envelope, hub.queueDepth),
		done:   make(chan struct{}),
	}
}

func (s *Session) run() {
	defer s.teardown()

	name, err := s.handshake()
	if err != nil {
		s.logger.Printf("chat: rejecting connection: %v", err)
		return
	}
	s.name = name

	if err := s.hub.Register(s); err != nil {
		s.logger.Printf("chat: register %q: %v", name, err)
		return
	}
	s.startWriter()

	if err := s.readLoop(); err != nil && !isExpectedClose(err) {
		s.logger.Printf("chat: session %q: %v", s.name, err)
	}
}

// handshake interprets the first inbound frame as the requested display
// name. Nothing has been sent to the peer yet and nothing is broadcast when
// the name is unusable.
func (s *Session) handshake() (string, error) {
	_, frame, err := s.wire.ReadMessage()
	if err != nil {
		return "", fmt.Errorf("handshake read: %w", err)
	}
	name := strings.TrimSpace(string(frame))
	if name == "" {
		return "", ErrInvalidHandshake
	}
	return name, nil
}

// readLoop decodes inbound frames as message envelopes, re-stamps them with
// this session's name and the relay clock, and hands them to the hub for
// fan-out. The sender never receives an echo of its own message; the client
// renders its submission locally.
func (s *Session) readLoop() error {
	for {
		_, frame, err := s.wire.ReadMessage()
		if err != nil {
			return err
		}

		env, err := DecodeEnvelope(frame)
		if err != nil {
			return err
		}
		if env.Kind != KindMessage {
			return fmt.Errorf("%w: unexpected %q frame from client", ErrMalformedEnvelope, string(env.Kind))
		}

		s.hub.Broadcast(s.hub.Stamp(s.name, env.Body), s.id)
	}
}

// startWriter drains the outbound queue onto the connection. A write failure
// closes the connection so the read loop unwinds through the same teardown.
func (s *Session) startWriter() {
	s.workers.Add(1)
	go func() {
		defer s.workers.Done()
		defer s.abort()

		for {
			select {
			case env := <-s.outbox:
				frame, err := EncodeEnvelope(env)
				if err != nil {
					s.logger.Printf("chat: encode for %q: %v", s.name, err)
					continue
				}
				if err := s.wire.WriteMessage(websocket.TextMessage, frame); err != nil {
					return
				}
			case <-s.done:
				return
			}
		}
	}()
}

// enqueue places an envelope onto the outbound queue without blocking.
// It reports false when the queue is full.
func (s *Session) enqueue(env Envelope) bool {
	select {
	case s.outbox <- env:
		return true
	default:
		return false
	}
}

// abort closes the underlying connection only. It is safe to call while the
// hub lock is held; deregistration happens on the session's own teardown.
func (s *Session) abort() {
	_ = s.wire.Close()
}

// teardown transitions the session to closed exactly once, even when the
// read and write paths fail concurrently: deregistration broadcasts a single
// Leave to the remaining sessions.
func (s *Session) teardown() {
	s.cleanup.Do(func() {
		close(s.done)
		_ = s.wire.Close()
		s.hub.Deregister(s.id)
		s.workers.Wait()
	})
}

func isExpectedClose(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, net.ErrClosed) ||
		websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure)
}
