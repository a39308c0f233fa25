package guiws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/nickserkes/bond-pipeline/internal/bond"
	"github.com/nickserkes/bond-pipeline/internal/svc"
)

// Hub registers dashboard clients and broadcasts every price update it
// receives from the GUI service to all of them.
type Hub struct {
	mu         sync.RWMutex
	clients    map[uint64]*Client
	bufferSize int
}

// NewHub creates a Hub and subscribes it to gui for price updates. gui is
// typically *gui.Service.
func NewHub(bufferSize int, gui interface{ AddListener(svc.Listener[bond.Price]) }) *Hub {
	h := &Hub{clients: make(map[uint64]*Client), bufferSize: bufferSize}
	gui.AddListener(priceListener{h})
	return h
}

type priceListener struct{ h *Hub }

func (l priceListener) ProcessAdd(p bond.Price)    { l.h.broadcast(p) }
func (l priceListener) ProcessRemove(bond.Price)   {}
func (l priceListener) ProcessUpdate(p bond.Price) { l.h.broadcast(p) }

// Register adds a new client.
func (h *Hub) Register(conn *websocket.Conn) *Client {
	c := NewClient(conn, h.bufferSize)
	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()
	log.Printf("guiws: client %d connected (%s)", c.ID, conn.RemoteAddr())
	return c
}

// Unregister removes a client and closes its connection.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c.ID)
	h.mu.Unlock()
	c.Close()
	log.Printf("guiws: client %d disconnected", c.ID)
}

// ClientCount returns the number of connected dashboard clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) broadcast(p bond.Price) {
	data, err := json.Marshal(p)
	if err != nil {
		log.Printf("guiws: encode price: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		c.Send(data)
	}
}
