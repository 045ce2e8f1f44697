// Package events publishes entity change notifications. Renderers subscribe
// over a WebSocket and refetch when an entity they show changes; in-process
// listeners (the query cache) react synchronously before Notify returns.
package events

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"ventas-backend/internal/metrics"
)

// Entity names used in change notifications and cache prefixes.
const (
	EntityCustomers    = "customers"
	EntityProducts     = "products"
	EntitySales        = "sales"
	EntitySaleItems    = "saleItems"
	EntityInstallments = "installments"
	EntityInvoices     = "invoices"
	EntityPayments     = "payments"
	EntityCalendar     = "calendar"
	EntityPreferences  = "preferences"
)

// Change is the message sent to subscribers.
type Change struct {
	Entity string    `json:"entity"`
	At     time.Time `json:"at"`
}

// Listener is called synchronously for every change.
type Listener func(ctx context.Context, c Change)

// Notifier is what services depend on.
type Notifier interface {
	Notify(ctx context.Context, entity string)
}

var upgrader = websocket.Upgrader{
	// The renderer is served from app:// or localhost; the API is bound locally.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Hub struct {
	log       zerolog.Logger
	listeners []Listener
	lmu       sync.RWMutex

	clients    map[*websocket.Conn]bool
	clientsMux sync.Mutex
	broadcast  chan Change
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		log:       log,
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan Change, 64),
	}
}

// Subscribe registers an in-process listener.
func (h *Hub) Subscribe(l Listener) {
	h.lmu.Lock()
	h.listeners = append(h.listeners, l)
	h.lmu.Unlock()
}

// Notify runs listeners and queues the change for WebSocket clients.
func (h *Hub) Notify(ctx context.Context, entity string) {
	c := Change{Entity: entity, At: time.Now()}
	metrics.ChangeNotifications.WithLabelValues(entity).Inc()

	h.lmu.RLock()
	listeners := h.listeners
	h.lmu.RUnlock()
	for _, l := range listeners {
		l(ctx, c)
	}

	select {
	case h.broadcast <- c:
	default:
		h.log.Warn().Str("entity", entity).Msg("change buffer full, dropping websocket notification")
	}
}

// Run delivers queued changes to WebSocket clients until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case c := <-h.broadcast:
			h.clientsMux.Lock()
			for client := range h.clients {
				if err := client.WriteJSON(c); err != nil {
					client.Close()
					delete(h.clients, client)
				}
			}
			h.clientsMux.Unlock()
		}
	}
}

// ServeWS upgrades the request and keeps the client until it disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	h.clientsMux.Lock()
	h.clients[conn] = true
	h.clientsMux.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.clientsMux.Lock()
			delete(h.clients, conn)
			h.clientsMux.Unlock()
			return
		}
	}
}

// ClientCount returns the number of connected WebSocket clients.
func (h *Hub) ClientCount() int {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()
	return len(h.clients)
}

func (h *Hub) closeAll() {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()
	for client := range h.clients {
		client.Close()
		delete(h.clients, client)
	}
}
