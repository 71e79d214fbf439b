// Package client maintains the terminal client's duplex connection to the
// relay: a send path for locally composed messages and a receive path that
// decodes the broadcast stream into envelope events.
package client

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"github.com/oPisiti/Chatey/internal/chat"
)

// ErrDisconnected reports that the relay connection was lost. The client
// surfaces it as a status line instead of terminating, so the user keeps
// their scrollback.
var ErrDisconnected = errors.New("client: disconnected from relay")

// Event is one item of the receive path: either a decoded envelope or a
// terminal error. After an Event with Err set, no further events follow.
type Event struct {
	Envelope chat.Envelope
	Err      error
}

// Conn is the client-side connection handle.
type Conn struct {
	ws     *websocket.Conn
	events chan Event
	logger *log.Logger
	name   string
}

// Dial connects to the relay at url and starts the receive path.
func Dial(url string, logger *log.Logger) (*Conn, error) {
	if logger == nil {
		logger = log.Default()
	}

	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("client: dial %q: %w", url, err)
	}

	c := &Conn{
		ws:     ws,
		events: make(chan Event, 32),
		logger: logger,
	}
	go c.readLoop()
	return c, nil
}

// Announce sends the display name as the handshake frame. It must be called
// exactly once, before any Send.
func (c *Conn) Announce(name string) error {
	if err := c.ws.WriteMessage(websocket.TextMessage, []byte(name)); err != nil {
		return fmt.Errorf("client: announce: %w", err)
	}
	c.name = name
	c.logger.Printf("client: announced as %q", name)
	return nil
}

// Send wraps locally composed text as a message envelope and transmits it.
// The relay overwrites sender and timestamp before fan-out.
func (c *Conn) Send(text string) error {
	sender := c.name
	if sender == "" {
		sender = "local"
	}
	frame, err := chat.EncodeEnvelope(chat.NewMessage(sender, text, time.Now().UTC()))
	if err != nil {
		return err
	}
	if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("client: send: %w", err)
	}
	return nil
}

// Events returns the receive path. The channel is closed after the
// ErrDisconnected event.
func (c *Conn) Events() <-chan Event {
	return c.events
}

// Close releases the connection. The receive path reports ErrDisconnected
// and stops.
func (c *Conn) Close() error {
	return c.ws.Close()
}

// readLoop publishes decoded envelopes until the connection dies.
// Undecodable frames are logged and skipped; connection loss is surfaced as
// a single terminal event rather than a crash.
func (c *Conn) readLoop() {
	defer close(c.events)

	for {
		_, frame, err := c.ws.ReadMessage()
		if err != nil {
			c.logger.Printf("client: connection lost: %v", err)
			c.events <- Event{Err: ErrDisconnected}
			return
		}

		env, err := chat.DecodeEnvelope(frame)
		if err != nil {
			c.logger.Printf("client: skipping frame: %v", err)
			continue
		}
		c.events <- Event{Envelope: env}
	}
}
