package realtime

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MAximeXX/AIEval/internal/observability"
	"github.com/MAximeXX/AIEval/internal/platform/logger"
)

var ErrHubClosed = errors.New("realtime hub closed")

type Client struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Outbound chan Event

	scopes    map[Scope]bool
	done      chan struct{}
	closeOnce sync.Once
}

// Done is closed once the hub has dropped the client.
func (c *Client) Done() <-chan struct{} { return c.done }

type HubOptions struct {
	Buffer    int
	Heartbeat time.Duration
}

// Hub is the process-local registry of live subscribers. It is created once
// by the app and handed to every component that publishes or serves streams.
type Hub struct {
	mu            sync.RWMutex
	log           *logger.Logger
	subscriptions map[Scope]map[*Client]bool
	clients       map[*Client]bool
	closed        bool

	buffer    int
	heartbeat time.Duration
}

func NewHub(log *logger.Logger, opts HubOptions) *Hub {
	if opts.Buffer <= 0 {
		opts.Buffer = 16
	}
	if opts.Heartbeat <= 0 {
		opts.Heartbeat = 15 * time.Second
	}
	return &Hub{
		log:           log.With("component", "RealtimeHub"),
		subscriptions: make(map[Scope]map[*Client]bool),
		clients:       make(map[*Client]bool),
		buffer:        opts.Buffer,
		heartbeat:     opts.Heartbeat,
	}
}

func (h *Hub) NewClient(userID uuid.UUID) (*Client, error) {
	c := &Client{
		ID:       uuid.New(),
		UserID:   userID,
		Outbound: make(chan Event, h.buffer),
		scopes:   make(map[Scope]bool),
		done:     make(chan struct{}),
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrHubClosed
	}
	h.clients[c] = true
	observability.Current().RealtimeClients(1)
	return c, nil
}

func (h *Hub) Subscribe(c *Client, scope Scope) error {
	if strings.TrimSpace(string(scope)) == "" {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed || !h.clients[c] {
		return ErrHubClosed
	}
	c.scopes[scope] = true
	subs, ok := h.subscriptions[scope]
	if !ok {
		subs = make(map[*Client]bool)
		h.subscriptions[scope] = subs
	}
	subs[c] = true
	h.log.Debug("Realtime client subscribed", "client_id", c.ID, "scope", scope)
	return nil
}

func (h *Hub) Unsubscribe(c *Client, scope Scope) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.detach(c, scope)
}

func (h *Hub) detach(c *Client, scope Scope) {
	delete(c.scopes, scope)
	if subs, ok := h.subscriptions[scope]; ok {
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.subscriptions, scope)
		}
	}
}

// Publish fans ev out to every subscriber of scope without blocking. A
// subscriber whose buffer is full misses the event. Returns the number of
// clients the event was queued for.
func (h *Hub) Publish(scope Scope, ev Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for c := range h.subscriptions[scope] {
		select {
		case c.Outbound <- ev:
			delivered++
		default:
			observability.Current().IncRealtimeDropped()
			h.log.Warn("Dropping realtime event; outbound buffer full", "client_id", c.ID, "scope", scope, "event", ev.Kind)
		}
	}
	return delivered
}

// Send queues ev for a single client, used for connect-time snapshots.
func (h *Hub) Send(c *Client, ev Event) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.clients[c] {
		return false
	}
	select {
	case c.Outbound <- ev:
		return true
	default:
		observability.Current().IncRealtimeDropped()
		h.log.Warn("Dropping realtime event; outbound buffer full", "client_id", c.ID, "event", ev.Kind)
		return false
	}
}

// Close removes c from every scope and closes its channels. Safe to call
// more than once.
func (h *Hub) Close(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closeLocked(c)
}

func (h *Hub) closeLocked(c *Client) {
	for scope := range c.scopes {
		h.detach(c, scope)
	}
	if h.clients[c] {
		delete(h.clients, c)
		observability.Current().RealtimeClients(-1)
	}
	c.closeOnce.Do(func() {
		close(c.done)
		close(c.Outbound)
	})
}

// Drain disconnects every client and refuses new ones. Used at shutdown.
func (h *Hub) Drain() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	n := len(h.clients)
	for c := range h.clients {
		h.closeLocked(c)
	}
	h.log.Info("Realtime hub drained", "clients", n)
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) SubscriberCount(scope Scope) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscriptions[scope])
}

func (h *Hub) Heartbeat() time.Duration { return h.heartbeat }

func newTicker(d time.Duration) *time.Ticker {
	if d <= 0 {
		d = 15 * time.Second
	}
	return time.NewTicker(d)
}
