package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"dayguard/internal/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true }, // bound to loopback by the server address, not CORS
}

// WebSocketBackend pushes notifications to every currently-connected
// dashboard client over a persistent websocket connection, for live desktop
// delivery alongside Telegram's store-and-forward messaging.
type WebSocketBackend struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func NewWebSocketBackend() *WebSocketBackend {
	return &WebSocketBackend{conns: make(map[*websocket.Conn]struct{})}
}

func (b *WebSocketBackend) Name() string { return "websocket" }

// Upgrade promotes an HTTP request to a websocket connection and registers
// it for future Deliver broadcasts, wired as a gin handler in internal/api.
func (b *WebSocketBackend) Upgrade(w http.ResponseWriter, r *http.Request) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.conns[conn] = struct{}{}
	b.mu.Unlock()

	go b.readUntilClose(conn)
	return nil
}

// readUntilClose drains (and discards) client frames so the connection's
// read deadline doesn't trip, and deregisters the connection once the
// client disconnects.
func (b *WebSocketBackend) readUntilClose(conn *websocket.Conn) {
	defer func() {
		b.mu.Lock()
		delete(b.conns, conn)
		b.mu.Unlock()
		conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (b *WebSocketBackend) Deliver(ctx context.Context, n domain.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for conn := range b.conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			conn.Close()
			delete(b.conns, conn)
		}
	}
	return nil
}
