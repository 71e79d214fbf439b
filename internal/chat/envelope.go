package chat

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Kind discriminates the three envelope variants on the wire.
type Kind string

const (
	KindMessage Kind = "message"
	KindJoin    Kind = "join"
	KindLeave   Kind = "leave"
)

// Envelope is one unit of chat protocol data exchanged between relay and
// client. Sender and Timestamp are authoritative only once the relay has
// stamped them; Body is meaningful for KindMessage only.
type Envelope struct {
	Kind      Kind      `json:"kind"`
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"ts"`
	Body      string    `json:"body,omitempty"`
}

// NewMessage builds a relay-stamped message envelope.
func NewMessage(sender, body string, at time.Time) Envelope {
	return Envelope{Kind: KindMessage, Sender: sender, Timestamp: at, Body: body}
}

// NewJoin builds a presence envelope announcing sender's arrival.
func NewJoin(sender string, at time.Time) Envelope {
	return Envelope{Kind: KindJoin, Sender: sender, Timestamp: at}
}

// NewLeave builds a presence envelope announcing sender's departure.
func NewLeave(sender string, at time.Time) Envelope {
	return Envelope{Kind: KindLeave, Sender: sender, Timestamp: at}
}

func (e Envelope) validate() error {
	switch e.Kind {
	case KindMessage:
		if e.Body == "" {
			return fmt.Errorf("%w: message without body", ErrMalformedEnvelope)
		}
	case KindJoin, KindLeave:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrMalformedEnvelope, string(e.Kind))
	}
	if strings.TrimSpace(e.Sender) == "" {
		return fmt.Errorf("%w: missing sender", ErrMalformedEnvelope)
	}
	return nil
}

// EncodeEnvelope serializes a well-formed envelope for transmission.
// The websocket frame layer delimits messages, so the body may contain any
// text without corrupting framing.
func EncodeEnvelope(e Envelope) ([]byte, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	return data, nil
}

// DecodeEnvelope parses a received frame back into an envelope. It fails
// with ErrMalformedEnvelope when the payload is not one of the three kinds
// or a required field is absent.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if err := e.validate(); err != nil {
		return Envelope{}, err
	}
	return e, nil
}
