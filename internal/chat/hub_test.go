package chat

import (
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testLogger = log.New(io.Discard, "", 0)

func boundSession(hub *Hub, name string) *Session {
	s := newSession(hub, newFakeWire(), testLogger)
	s.name = name
	return s
}

func receiveEnvelope(t *testing.T, s *Session) Envelope {
	t.Helper()
	select {
	case env := <-s.outbox:
		return env
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timed out waiting for enqueued envelope")
		return Envelope{}
	}
}

func requireNoEnvelope(t *testing.T, s *Session) {
	t.Helper()
	select {
	case env := <-s.outbox:
		t.Fatalf("unexpected envelope enqueued: %+v", env)
	default:
	}
}

func drainOutbox(s *Session) {
	for {
		select {
		case <-s.outbox:
		default:
			return
		}
	}
}

func TestHubRegisterAnnouncesJoinToOthersOnly(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	hub := NewHub(testLogger, WithClock(func() time.Time { return at }))

	alice := boundSession(hub, "alice")
	require.NoError(t, hub.Register(alice))
	requireNoEnvelope(t, alice)

	bob := boundSession(hub, "bob")
	require.NoError(t, hub.Register(bob))

	join := receiveEnvelope(t, alice)
	require.Equal(t, KindJoin, join.Kind)
	require.Equal(t, "bob", join.Sender)
	require.True(t, at.Equal(join.Timestamp))

	// The new session does not receive its own Join.
	requireNoEnvelope(t, bob)
}

func TestHubRegisterDuplicateIdentityFails(t *testing.T) {
	hub := NewHub(testLogger)
	alice := boundSession(hub, "alice")

	require.NoError(t, hub.Register(alice))
	require.ErrorIs(t, hub.Register(alice), ErrSessionRegistered)
}

func TestHubBroadcastExcludesOrigin(t *testing.T) {
	hub := NewHub(testLogger)
	alice := boundSession(hub, "alice")
	bob := boundSession(hub, "bob")
	carol := boundSession(hub, "carol")
	for _, s := range []*Session{alice, bob, carol} {
		require.NoError(t, hub.Register(s))
		drainOutbox(alice)
		drainOutbox(bob)
	}

	msg := hub.Stamp("alice", "hello world")
	hub.Broadcast(msg, alice.id)

	for _, target := range []*Session{bob, carol} {
		got := receiveEnvelope(t, target)
		require.Equal(t, KindMessage, got.Kind)
		require.Equal(t, "alice", got.Sender)
		require.Equal(t, "hello world", got.Body)
	}
	requireNoEnvelope(t, alice)
}

func TestHubBroadcastPreservesPerOriginOrder(t *testing.T) {
	hub := NewHub(testLogger)
	alice := boundSession(hub, "alice")
	bob := boundSession(hub, "bob")
	require.NoError(t, hub.Register(alice))
	require.NoError(t, hub.Register(bob))
	drainOutbox(alice)

	hub.Broadcast(hub.Stamp("alice", "first"), alice.id)
	hub.Broadcast(hub.Stamp("alice", "second"), alice.id)

	require.Equal(t, "first", receiveEnvelope(t, bob).Body)
	require.Equal(t, "second", receiveEnvelope(t, bob).Body)
}

func TestHubDeregisterAnnouncesLeaveExactlyOnce(t *testing.T) {
	hub := NewHub(testLogger)
	alice := boundSession(hub, "alice")
	bob := boundSession(hub, "bob")
	require.NoError(t, hub.Register(alice))
	require.NoError(t, hub.Register(bob))
	drainOutbox(alice)

	hub.Deregister(bob.id)
	hub.Deregister(bob.id) // close can race with itself; second call is a no-op

	leave := receiveEnvelope(t, alice)
	require.Equal(t, KindLeave, leave.Kind)
	require.Equal(t, "bob", leave.Sender)
	requireNoEnvelope(t, alice)
	require.Equal(t, []string{"alice"}, hub.Names())
}

func TestHubOverflowAbortsSlowSession(t *testing.T) {
	hub := NewHub(testLogger, WithQueueDepth(1))
	alice := boundSession(hub, "alice")
	stalled := boundSession(hub, "stalled")
	require.NoError(t, hub.Register(alice))
	require.NoError(t, hub.Register(stalled))
	drainOutbox(alice)

	hub.Broadcast(hub.Stamp("alice", "fills the queue"), alice.id)
	hub.Broadcast(hub.Stamp("alice", "overflows"), alice.id)

	wire := stalled.wire.(*fakeWire)
	select {
	case <-wire.closed:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("expected the stalled session's connection to be closed")
	}
}

func TestHubNamesSnapshot(t *testing.T) {
	hub := NewHub(testLogger)
	for _, name := range []string{"carol", "alice", "bob"} {
		require.NoError(t, hub.Register(boundSession(hub, name)))
	}

	require.Equal(t, []string{"alice", "bob", "carol"}, hub.Names())
	require.Equal(t, 3, hub.Len())
}
