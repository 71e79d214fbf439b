package chat

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const defaultQueueDepth = 64

// HubOption customizes hub construction.
type HubOption func(h *Hub)

// WithClock replaces the timestamp source. The hub clock is the single
// ordering authority for everything it fans out.
func WithClock(clock func() time.Time) HubOption {
	return func(h *Hub) {
		if clock != nil {
			h.clock = clock
		}
	}
}

// WithQueueDepth sets the per-session outbound queue capacity.
func WithQueueDepth(depth int) HubOption {
	return func(h *Hub) {
		if depth > 0 {
			h.queueDepth = depth
		}
	}
}

// Hub is the process-wide session registry and broadcaster. One mutex guards
// registration, removal, and fan-out iteration, so a broadcast never observes
// a half-removed session and a removal plus its Leave announcement are atomic
// with respect to any concurrent broadcast.
type Hub struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session

	clock      func() time.Time
	queueDepth int
	logger     *log.Logger
}

// NewHub constructs an empty hub.
func NewHub(logger *log.Logger, options ...HubOption) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	h := &Hub{
		sessions:   make(map[uuid.UUID]*Session),
		clock:      time.Now,
		queueDepth: defaultQueueDepth,
		logger:     logger,
	}
	for _, option := range options {
		if option != nil {
			option(h)
		}
	}
	return h
}

// Register inserts a bound session and announces its arrival to every other
// registered session. The new session does not receive its own Join.
// Registering the same identity twice is a programming error.
func (h *Hub) Register(s *Session) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.sessions[s.id]; ok {
		return ErrSessionRegistered
	}
	join := NewJoin(s.name, h.clock().UTC())
	h.fanOut(join, s.id)
	h.sessions[s.id] = s

	h.logger.Printf("chat: %s joined (%d online)", s.name, len(h.sessions))
	return nil
}

// Deregister removes the session if present and announces its departure to
// the remaining sessions. Calling it for an absent identity is a no-op since
// close can race with itself.
func (h *Hub) Deregister(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.sessions[id]
	if !ok {
		return
	}
	delete(h.sessions, id)
	h.fanOut(NewLeave(s.name, h.clock().UTC()), id)

	h.logger.Printf("chat: %s left (%d online)", s.name, len(h.sessions))
}

// Broadcast delivers the envelope to every registered session except exclude.
func (h *Hub) Broadcast(env Envelope, exclude uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fanOut(env, exclude)
}

// Stamp timestamps a message body received from the named session.
func (h *Hub) Stamp(sender, body string) Envelope {
	return NewMessage(sender, body, h.clock().UTC())
}

// fanOut enqueues the envelope onto each target's outbound queue without
// waiting for network transmission. A session whose queue is full is aborted:
// its connection is closed and the usual teardown produces the Leave.
// Callers must hold h.mu.
func (h *Hub) fanOut(env Envelope, exclude uuid.UUID) {
	for id, s := range h.sessions {
		if id == exclude {
			continue
		}
		if !s.enqueue(env) {
			h.logger.Printf("chat: dropping %s, outbound queue overflow", s.name)
			s.abort()
		}
	}
}

// Names returns the display names of the currently bound sessions, sorted.
func (h *Hub) Names() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	names := lo.MapToSlice(h.sessions, func(_ uuid.UUID, s *Session) string {
		return s.name
	})
	sort.Strings(names)
	return names
}

// Len reports how many sessions are currently bound.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}
