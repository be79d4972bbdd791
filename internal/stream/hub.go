// Package stream 负责把每个 tick 的角色快照推送给 websocket 观察者
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	uuid "github.com/satori/go.uuid"

	"github.com/Versifine/strafe/internal/character"
)

const (
	DefaultBufferSize = 16
	writeWait         = 2 * time.Second
	shutdownWait      = 2 * time.Second
)

// Message is the JSON frame sent to watchers after every world tick.
type Message struct {
	Type       string               `json:"type"`
	Tick       uint64               `json:"tick"`
	Characters []character.Snapshot `json:"characters"`
}

type watcher struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub fans tick snapshots out to websocket watchers. A watcher whose send
// buffer is full when a tick arrives is disconnected.
type Hub struct {
	mu         sync.Mutex
	watchers   map[*watcher]struct{}
	bufferSize int
	upgrader   websocket.Upgrader
}

func NewHub(bufferSize int) *Hub {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Hub{
		watchers:   make(map[*watcher]struct{}),
		bufferSize: bufferSize,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.ServeWS)
	return mux
}

func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	wt := &watcher{
		id:   uuid.NewV4().String(),
		conn: conn,
		send: make(chan []byte, h.bufferSize),
	}
	h.mu.Lock()
	h.watchers[wt] = struct{}{}
	count := len(h.watchers)
	h.mu.Unlock()
	slog.Info("Watcher connected", "watcher", wt.id, "remote", r.RemoteAddr, "watchers", count)

	go h.writeLoop(wt)
	h.readLoop(wt)
}

// Broadcast sends one tick to every watcher. Its signature matches
// world.Observer.
func (h *Hub) Broadcast(tick uint64, snapshots []character.Snapshot) {
	data, err := json.Marshal(Message{Type: "tick", Tick: tick, Characters: snapshots})
	if err != nil {
		slog.Error("Encode tick message failed", "tick", tick, "error", err)
		return
	}

	var slow []*watcher
	h.mu.Lock()
	for wt := range h.watchers {
		select {
		case wt.send <- data:
		default:
			slow = append(slow, wt)
		}
	}
	h.mu.Unlock()

	for _, wt := range slow {
		slog.Warn("Dropping slow watcher", "watcher", wt.id, "tick", tick)
		h.remove(wt)
	}
}

func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.watchers)
}

// Close disconnects every watcher.
func (h *Hub) Close() {
	h.mu.Lock()
	all := make([]*watcher, 0, len(h.watchers))
	for wt := range h.watchers {
		all = append(all, wt)
	}
	h.mu.Unlock()

	for _, wt := range all {
		h.remove(wt)
	}
}

// Serve listens on addr until ctx ends.
func (h *Hub) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: h.Handler()}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	slog.Info("Stream listening", "addr", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	h.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWait)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// readLoop discards inbound frames; it only notices the peer going away.
func (h *Hub) readLoop(wt *watcher) {
	defer h.remove(wt)
	for {
		if _, _, err := wt.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(wt *watcher) {
	for data := range wt.send {
		_ = wt.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := wt.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			slog.Debug("Watcher write failed", "watcher", wt.id, "error", err)
			h.remove(wt)
			return
		}
	}
}

func (h *Hub) remove(wt *watcher) {
	h.mu.Lock()
	_, ok := h.watchers[wt]
	if ok {
		delete(h.watchers, wt)
		close(wt.send)
	}
	count := len(h.watchers)
	h.mu.Unlock()
	if !ok {
		return
	}

	if wt.conn != nil {
		_ = wt.conn.Close()
	}
	slog.Info("Watcher disconnected", "watcher", wt.id, "watchers", count)
}
