// Package feed serves world snapshots to presentation clients over
// websocket and accepts movement commands from them.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/l1jgo/gridwalk/internal/config"
	"github.com/l1jgo/gridwalk/internal/world"
)

// Hub accepts websocket clients and fans snapshots out to them. Inbound
// commands are pushed onto a bounded channel drained by the game loop.
type Hub struct {
	cfg      config.FeedConfig
	upgrader websocket.Upgrader
	commands chan<- world.Command

	mu      sync.Mutex
	clients map[uint64]*Client
	nextID  atomic.Uint64

	listener net.Listener
	srv      *http.Server
	log      *zap.Logger
}

func NewHub(cfg config.FeedConfig, commands chan<- world.Command, log *zap.Logger) *Hub {
	if cfg.OutQueueSize <= 0 {
		cfg.OutQueueSize = 64
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	h := &Hub{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // presentation clients are local tools
			},
		},
		commands: commands,
		clients:  make(map[uint64]*Client),
		log:      log,
	}
	return h
}

// Handler serves /ws and /healthz.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.ServeWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"status": "ok", "clients": h.Len()})
	})
	return mux
}

// ServeWS upgrades the request and registers the client.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("feed: upgrade failed", zap.Error(err))
		return
	}
	c := newClient(h, conn, h.nextID.Add(1))

	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()

	h.log.Info("feed: client connected",
		zap.Uint64("client", c.ID), zap.String("remote", r.RemoteAddr))
	c.start()
}

// Listen binds the configured address. Serve must be called to accept.
func (h *Hub) Listen() error {
	ln, err := net.Listen("tcp", h.cfg.BindAddress)
	if err != nil {
		return err
	}
	h.listener = ln
	h.srv = &http.Server{Handler: h.Handler()}
	return nil
}

// Serve runs in its own goroutine until Shutdown.
func (h *Hub) Serve() {
	if err := h.srv.Serve(h.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		h.log.Error("feed: serve failed", zap.Error(err))
	}
}

// Addr returns the listener's address.
func (h *Hub) Addr() net.Addr {
	return h.listener.Addr()
}

// Shutdown stops accepting connections and closes every client.
func (h *Hub) Shutdown(ctx context.Context) error {
	var err error
	if h.srv != nil {
		err = h.srv.Shutdown(ctx)
	}
	for _, c := range h.snapshotClients() {
		c.Close()
	}
	return err
}

// Clients returns the connected clients in id order.
func (h *Hub) Clients() []*Client {
	return h.snapshotClients()
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) snapshotClients() []*Client {
	h.mu.Lock()
	out := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		out = append(out, c)
	}
	h.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (h *Hub) remove(id uint64) {
	h.mu.Lock()
	_, ok := h.clients[id]
	delete(h.clients, id)
	h.mu.Unlock()
	if ok {
		h.log.Info("feed: client disconnected", zap.Uint64("client", id))
	}
}

// push hands a command to the game loop without blocking the reader.
func (h *Hub) push(cmd world.Command) {
	select {
	case h.commands <- cmd:
	default:
		h.log.Warn("feed: command queue full, dropping command",
			zap.Stringer("kind", cmd.Kind), zap.String("name", cmd.Name))
	}
}
