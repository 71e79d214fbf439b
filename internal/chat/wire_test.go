package chat

import (
	"net"
	"sync"

	"github.com/gorilla/websocket"
)

// fakeWire scripts inbound frames and records outbound ones. Close unblocks
// a pending read with net.ErrClosed, mimicking a dropped connection.
type fakeWire struct {
	inbound chan []byte
	wrote   chan []byte

	mu       sync.Mutex
	writeErr error

	closeOnce sync.Once
	closed    chan struct{}
}

func newFakeWire() *fakeWire {
	return &fakeWire{
		inbound: make(chan []byte, 16),
		wrote:   make(chan []byte, 16),
		closed:  make(chan struct{}),
	}
}

func (w *fakeWire) push(frame string) {
	w.inbound <- []byte(frame)
}

func (w *fakeWire) failWrites(err error) {
	w.mu.Lock()
	w.writeErr = err
	w.mu.Unlock()
}

func (w *fakeWire) ReadMessage() (int, []byte, error) {
	select {
	case frame := <-w.inbound:
		return websocket.TextMessage, frame, nil
	case <-w.closed:
		return 0, nil, net.ErrClosed
	}
}

func (w *fakeWire) WriteMessage(_ int, data []byte) error {
	w.mu.Lock()
	err := w.writeErr
	w.mu.Unlock()
	if err != nil {
		return err
	}

	select {
	case w.wrote <- append([]byte(nil), data...):
	case <-w.closed:
		return net.ErrClosed
	}
	return nil
}

func (w *fakeWire) Close() error {
	w.closeOnce.Do(func() { close(w.closed) })
	return nil
}
