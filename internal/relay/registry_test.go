package relay

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type fakeConn struct {
	mu       sync.Mutex
	written  [][]byte
	writeErr error
	closed   bool
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return c.writeErr
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	c.written = append(c.written, buf)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) messages() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.written...)
}

type memMailbox struct {
	mu       sync.Mutex
	queues   map[string][][]byte
	failNext error
}

func newMemMailbox() *memMailbox {
	return &memMailbox{queues: make(map[string][][]byte)}
}

func (m *memMailbox) Enqueue(ctx context.Context, userID string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	buf := make([]byte, len(payload))
	copy(buf, payload)
	m.queues[userID] = append(m.queues[userID], buf)
	return nil
}

func (m *memMailbox) DrainAll(ctx context.Context, userID string) ([][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return nil, err
	}
	pending := m.queues[userID]
	delete(m.queues, userID)
	return pending, nil
}

func (m *memMailbox) depth(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queues[userID])
}

func TestRegistryLastRegistrationWins(t *testing.T) {
	r := NewRegistry()
	first := &fakeConn{}
	second := &fakeConn{}

	r.Register("user-1", first)
	r.Register("user-1", second)

	conn, ok := r.Lookup("user-1")
	if !ok {
		t.Fatal("expected a registered connection")
	}
	if conn != second {
		t.Error("lookup returned the replaced connection")
	}
}

func TestRegistryRegisterReturnsDisplacedHandle(t *testing.T) {
	r := NewRegistry()
	first := &fakeConn{}
	second := &fakeConn{}

	if displaced := r.Register("user-1", first); displaced != nil {
		t.Errorf("first registration displaced %v, want nil", displaced)
	}
	displaced := r.Register("user-1", second)
	if displaced != first {
		t.Fatal("replacement must hand back the old connection for closing")
	}
}

func TestRegistryStaleUnregisterKeepsNewConnection(t *testing.T) {
	r := NewRegistry()
	stale := &fakeConn{}
	fresh := &fakeConn{}

	r.Register("user-1", stale)
	r.Register("user-1", fresh)

	// The close handler of the replaced connection fires late.
	r.Unregister("user-1", stale)

	conn, ok := r.Lookup("user-1")
	if !ok {
		t.Fatal("fresh connection was removed by a stale unregister")
	}
	if conn != fresh {
		t.Error("expected the fresh connection to survive")
	}
}

func TestRegistryUnregisterRemovesOwnConnection(t *testing.T) {
	r := NewRegistry()
	conn := &fakeConn{}

	r.Register("user-1", conn)
	r.Unregister("user-1", conn)

	if _, ok := r.Lookup("user-1"); ok {
		t.Error("connection still registered after unregister")
	}
}

func TestRegistryLookupUnknownUser(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Lookup("nobody"); ok {
		t.Error("lookup of unknown user reported a connection")
	}
}

var errBoom = errors.New("boom")
