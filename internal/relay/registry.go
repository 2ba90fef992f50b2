package relay

import (
	"context"
	"sync"

	"github.com/coursehub/coursehub-backend/internal/metrics"
)

// Conn is the transport handle the registry tracks. *websocket.Conn
// satisfies it; tests substitute fakes.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Mailbox is the durable per-user queue the relay falls back to while a
// user has no live connection.
type Mailbox interface {
	Enqueue(ctx context.Context, userID string, payload []byte) error
	DrainAll(ctx context.Context, userID string) ([][]byte, error)
}

// Registry maps a user ID to its single live connection. One connection per
// user: a new registration replaces the previous one (last wins, no
// multi-tab fan-out). Scoped to the process; construct one at startup and
// inject it wherever it is needed.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]Conn
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]Conn)}
}

// Register stores conn for userID and returns the handle it displaced, if
// any. The registry never closes connections itself; the caller that
// replaced the old handle owns closing it.
func (r *Registry) Register(userID string, conn Conn) Conn {
	r.mu.Lock()
	displaced := r.conns[userID]
	if displaced == nil {
		metrics.ActiveConnections.Inc()
	}
	r.conns[userID] = conn
	r.mu.Unlock()
	return displaced
}

// Unregister removes the mapping only if it still points at conn. A late
// close event from a stale connection must not clobber a newer
// registration for the same user.
func (r *Registry) Unregister(userID string, conn Conn) {
	r.mu.Lock()
	if current, ok := r.conns[userID]; ok && current == conn {
		delete(r.conns, userID)
		metrics.ActiveConnections.Dec()
	}
	r.mu.Unlock()
}

// Lookup returns the current connection for userID, if any.
func (r *Registry) Lookup(userID string) (Conn, bool) {
	r.mu.RLock()
	conn, ok := r.conns[userID]
	r.mu.RUnlock()
	return conn, ok
}
