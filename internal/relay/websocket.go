package relay

import (
	"net/http"
	"sync"

	"github.com/coursehub/coursehub-backend/internal/metrics"
	"github.com/coursehub/coursehub-backend/pkg/logger"
	"github.com/gorilla/websocket"
)

// syncConn serializes writes to a connection. gorilla/websocket allows at
// most one concurrent writer, but both the dispatcher and the drain loop
// below write to a registered connection, so every handle that enters the
// registry goes through this guard. A mutex rather than a send channel:
// the dispatcher needs the write error synchronously to decide on its
// mailbox fallback.
type syncConn struct {
	mu   sync.Mutex
	conn Conn
}

func newSyncConn(conn Conn) *syncConn {
	return &syncConn{conn: conn}
}

func (c *syncConn) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(messageType, data)
}

func (c *syncConn) Close() error {
	return c.conn.Close()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Origin checking is handled by the CORS layer in front of us.
		return true
	},
}

// Handler owns the connection lifecycle: upgrade, register, drain the
// user's mailbox, then read until the peer goes away.
type Handler struct {
	registry *Registry
	mailbox  Mailbox
}

func NewHandler(registry *Registry, mailbox Mailbox) *Handler {
	return &Handler{registry: registry, mailbox: mailbox}
}

// HandleWebSocket upgrades the request and hands the connection to the
// registry. The client identifies itself with a userId query parameter;
// without one the request is rejected before the upgrade.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId query parameter is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Logger.Error("WebSocket upgrade failed",
			"user_id", userID,
			"error", err.Error(),
		)
		return
	}

	logger.Logger.Info("Client connected", "user_id", userID)
	registered := newSyncConn(conn)
	if displaced := h.registry.Register(userID, registered); displaced != nil {
		// Replacing a registration makes this handler the owner of the old
		// handle; close it so the superseded peer does not linger.
		displaced.Close()
	}

	// Deliver anything that accumulated while the user was offline,
	// oldest first. Messages enqueued after this snapshot ride the normal
	// direct path. If the connection dies mid-drain the remainder of the
	// snapshot is lost; there is no per-message ack to re-enqueue against.
	pending, err := h.mailbox.DrainAll(r.Context(), userID)
	if err != nil {
		logger.Logger.Error("Mailbox drain failed, closing connection",
			"user_id", userID,
			"error", err.Error(),
		)
		h.registry.Unregister(userID, registered)
		registered.Close()
		return
	}
	if len(pending) > 0 {
		logger.Logger.Info("Draining mailbox",
			"user_id", userID,
			"pending", len(pending),
		)
		for _, payload := range pending {
			if err := registered.WriteMessage(websocket.TextMessage, payload); err != nil {
				logger.Logger.Warn("Drain delivery interrupted",
					"user_id", userID,
					"error", err.Error(),
				)
				break
			}
			metrics.MailboxDrainedTotal.Inc()
		}
	}

	go h.readLoop(userID, conn, registered)
}

// readLoop consumes control/close frames until the peer disconnects, then
// deregisters. Unregister is identity-checked, so a stale loop from a
// replaced connection cannot remove its successor.
func (h *Handler) readLoop(userID string, conn *websocket.Conn, registered Conn) {
	defer func() {
		h.registry.Unregister(userID, registered)
		conn.Close()
		logger.Logger.Info("Client disconnected", "user_id", userID)
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logger.Logger.Warn("WebSocket read error",
					"user_id", userID,
					"error", err.Error(),
				)
			}
			return
		}
	}
}
