package chat

import "errors"

var (
	// ErrMalformedEnvelope - the frame could not be parsed into a
	// well-formed envelope. Wire-level corruption is not recoverable
	// per-message, so a session producing it is closed.
	ErrMalformedEnvelope = errors.New("chat: malformed envelope")

	// ErrInvalidHandshake - the first frame of a connection did not carry a
	// usable display name. The connection is closed without registration.
	ErrInvalidHandshake = errors.New("chat: invalid handshake")

	// ErrSessionRegistered - an identity was registered twice. This is a
	// programming defect, not a runtime condition to recover from.
	ErrSessionRegistered = errors.New("chat: session already registered")
)
