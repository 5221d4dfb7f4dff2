// Package websocket connects 3D viewers. Each connection owns a session;
// moves completed by one viewer are replayed into every other.
package websocket

import (
	"context"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/xelth-com/eckwms3d/internal/logger"
	"github.com/xelth-com/eckwms3d/internal/models"
	"github.com/xelth-com/eckwms3d/internal/placement"
	"github.com/xelth-com/eckwms3d/internal/session"
)

// Backend is the warehouse service as seen by the viewers.
type Backend interface {
	Dataset(ctx context.Context) (*models.Dataset, error)
	PersistAsync(sessionID string, rec placement.MoveRecord)
	UpdateProduct(ctx context.Context, code string, p models.ProductRecord) error
}

// Hub maintains the set of active clients and fans out moves.
type Hub struct {
	backend  Backend
	opts     session.Options
	log      *logrus.Logger
	validate *validator.Validate

	// Registered clients map: session ID -> Client
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once

	// Mutex for thread-safe access to clients map
	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub(backend Backend, opts session.Options) *Hub {
	return &Hub{
		backend:    backend,
		opts:       opts,
		log:        logger.GetLogger("ws"),
		validate:   validator.New(),
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID()] = client
			n := len(h.clients)
			h.mu.Unlock()
			h.log.WithFields(logrus.Fields{"session": client.ID(), "clients": n}).Info("📡 Viewer connected")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID()]; ok {
				delete(h.clients, client.ID())
				close(client.send)
				h.log.WithField("session", client.ID()).Info("📴 Viewer disconnected")
			}
			h.mu.Unlock()

		case <-h.done:
			// clients see done and close their own connections
			return
		}
	}
}

// Stop ends Run and disconnects every viewer.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// SetZones changes the zone grid given to viewers connecting from now on.
func (h *Hub) SetZones(specs []placement.ZoneSpec) {
	h.mu.Lock()
	h.opts.Zones = specs
	h.mu.Unlock()
}

func (h *Hub) options() session.Options {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.opts
}

// Count returns the number of connected viewers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// persister stores a finished move and replays it to every other viewer.
func (h *Hub) persister() session.Persister {
	return func(sessionID string, rec placement.MoveRecord) {
		if h.backend != nil {
			h.backend.PersistAsync(sessionID, rec)
		}
		h.BroadcastMove(sessionID, rec)
	}
}

// BroadcastMove replays a completed move in every viewer except the session
// from. Moves stored through the REST API pass the caller's session, if any.
func (h *Hub) BroadcastMove(from string, rec placement.MoveRecord) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, client := range h.clients {
		if id == from {
			continue
		}
		select {
		case client.remote <- rec:
		default:
			h.log.WithField("session", id).Warn("⚠️ Viewer too slow, move not replayed")
		}
	}
}
