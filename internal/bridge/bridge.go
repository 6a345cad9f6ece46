package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zantac/OSN/internal/logging"
	"github.com/zantac/OSN/internal/playback"
	"github.com/zantac/OSN/internal/subtitle"
)

// Player is the command surface the bridge drives.
type Player interface {
	Load(ctx context.Context, src string, enc subtitle.Encoding) <-chan error
	StartPlayback() error
	Stop() error
	Pause() error
	Resume() error
	TogglePause() error
	Seek(target time.Duration) error
	Nudge(delta time.Duration) error
	JumpCue(forward bool) error
	SeekToCue(index int) error
	BeginScrub() error
	EndScrub() error
	Cues() []subtitle.Cue
	Status() playback.Status
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type client struct {
	id   string
	conn *websocket.Conn
}

// Hub relays playback events to every connected client and turns client
// messages into player commands.
type Hub struct {
	player   Player
	encoding subtitle.Encoding
	logger   *logging.Logger

	// in-flight loads are cancelled by Close
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	clients map[*client]struct{}

	// gorilla/websocket connections are not safe for concurrent writes
	writeMu sync.Mutex
}

// New creates a hub. enc is used for load commands that name no encoding.
func New(player Player, enc subtitle.Encoding, logger *logging.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	if enc == "" {
		enc = subtitle.EncodingAuto
	}
	return &Hub{
		player:   player,
		encoding: enc,
		logger:   logging.OrNop(logger).Named("bridge"),
		ctx:      ctx,
		cancel:   cancel,
		clients:  make(map[*client]struct{}),
	}
}

// Handler serves /ws and /health.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.handleWS)
	mux.HandleFunc("/health", h.handleHealth)
	return mux
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully.
func (h *Hub) Start(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           h.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		h.logger.Infow("Starting bridge", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err, ok := <-errc:
		if ok {
			return fmt.Errorf("bridge server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	h.logger.Infow("Shutting down bridge")
	h.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// Close cancels in-flight loads and disconnects every client.
func (h *Hub) Close() {
	h.cancel()

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		_ = c.conn.Close()
		delete(h.clients, c)
	}
}

// Publish broadcasts a playback event. It is meant to be the controller's
// event sink.
func (h *Hub) Publish(ev playback.Event) {
	h.broadcast(encodeEvent(ev))
}

func (h *Hub) broadcast(msg map[string]any) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Errorw("Failed to marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	for c := range h.clients {
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Debugw("Broadcast write error", "client", c.id, "error", err)
		}
	}
}

func (h *Hub) send(c *client, msg map[string]any) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Errorw("Failed to marshal reply", "error", err)
		return
	}

	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		h.logger.Debugw("Reply write error", "client", c.id, "error", err)
	}
}

func (h *Hub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnw("WebSocket upgrade failed", "error", err)
		return
	}

	c := &client{id: uuid.NewString(), conn: conn}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()
	h.logger.Infow("Client connected", "client", c.id, "clients", count)

	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
		_ = conn.Close()
		h.logger.Infow("Client disconnected", "client", c.id)
	}()

	h.send(c, map[string]any{
		"type":   "hello",
		"id":     c.id,
		"status": encodeStatus(h.player.Status()),
	})

	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if mt != websocket.TextMessage {
			h.send(c, errorReply("", errors.New("only text messages are accepted")))
			continue
		}
		if reply := h.handleMessage(data); reply != nil {
			h.send(c, reply)
		}
	}
}

func (h *Hub) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	count := len(h.clients)
	h.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"clients": count,
		"state":   h.player.Status().State.String(),
	})
}
